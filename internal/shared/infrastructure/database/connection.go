package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config selects and configures the backend.
type Config struct {
	// Driver may be empty to pick from URL.
	Driver Driver
	// URL is the PostgreSQL connection string.
	URL string
	// SQLitePath defaults to ~/.starfocus/data.db.
	SQLitePath string
	// MaxConns caps the PostgreSQL pool.
	MaxConns int
}

// Opener builds a connection for one driver.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

// Driver packages register from init so binaries link only what they import.
var openers = map[Driver]Opener{}

// Register installs the opener for driver.
func Register(driver Driver, open Opener) {
	openers[driver] = open
}

// NewConnection opens the configured backend.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver, err := ParseDriver(string(cfg.Driver), cfg.URL)
	if err != nil {
		return nil, err
	}
	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("%s driver not registered", driver)
	}
	if driver == DriverSQLite && cfg.SQLitePath == "" {
		cfg.SQLitePath = strings.TrimPrefix(strings.TrimPrefix(cfg.URL, "sqlite://"), "file:")
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath is the database file of a local install.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".starfocus", "data.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	return nil
}
