package database

import (
	"fmt"
	"strings"
)

// Driver names a database backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// IsValid reports whether d is a supported backend.
func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

// ParseDriver resolves a configured driver name. An empty or "auto" name
// picks PostgreSQL when a URL is set and the local SQLite file otherwise.
func ParseDriver(name, url string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		if url == "" || strings.HasPrefix(url, "sqlite://") || strings.HasPrefix(url, "file:") {
			return DriverSQLite, nil
		}
		return DriverPostgres, nil
	case "postgres", "postgresql", "pgx":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", name)
	}
}
