// Package security guards the files StarFocus writes on behalf of the user.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidOutputPath is returned for export targets that cannot be written safely.
var ErrInvalidOutputPath = errors.New("invalid output path")

// shell metacharacters never appear in a legitimate export file name
var dangerousChars = []string{";", "&", "|", "$", "`", "<", ">", "\n", "\r"}

// ResolveOutputPath cleans path into an absolute path whose parent directory
// exists. Symlinks are resolved so an existing link is written through, and
// directories are refused.
func ResolveOutputPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: path cannot be empty", ErrInvalidOutputPath)
	}
	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return "", fmt.Errorf("%w: forbidden character %q", ErrInvalidOutputPath, char)
		}
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOutputPath, err)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %v", ErrInvalidOutputPath, err)
	}

	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrInvalidOutputPath, path)
	}
	parent, err := os.Stat(filepath.Dir(abs))
	if err != nil || !parent.IsDir() {
		return "", fmt.Errorf("%w: directory of %s does not exist", ErrInvalidOutputPath, path)
	}
	return abs, nil
}

// CreateOutputFile opens path for writing with owner-only permissions,
// truncating any previous export.
func CreateOutputFile(path string) (*os.File, error) {
	clean, err := ResolveOutputPath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	return os.OpenFile(clean, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
}
