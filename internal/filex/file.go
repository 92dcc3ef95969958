// Package filex contains file helpers for the CLI: preparing the local
// session database location and reading avatar files from disk.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/hrmis/internal/common"
)

// EnsureParentDir creates the directory that will hold path, so that a
// database file can be opened there.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ReadLimited reads the file at path, refusing files larger than maxBytes.
// It returns the content and the lower-cased extension without the dot.
func ReadLimited(path string, maxBytes int64) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, "", common.NewValidationError(fmt.Sprintf("file is larger than %d bytes", maxBytes))
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return data, ext, nil
}
