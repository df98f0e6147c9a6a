package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ErrAlreadyRan is returned when the completion marker of a previous run exists
var ErrAlreadyRan = errors.New("already ran, completion marker present")

// FileGuard keeps the completion marker in a file holding the completion time
type FileGuard struct {
	Path string
}

// NewFileGuard makes a guard for the marker file
func NewFileGuard(path string) *FileGuard {
	return &FileGuard{Path: path}
}

// Check returns ErrAlreadyRan if the marker exists
func (g *FileGuard) Check() error {
	_, err := os.Stat(g.Path)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyRan, g.Path)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("check marker %s: %w", g.Path, err)
}

// Mark writes the marker with the completion time
func (g *FileGuard) Mark(ts time.Time) error {
	if dir := filepath.Dir(g.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create marker directory: %w", err)
		}
	}
	if err := os.WriteFile(g.Path, []byte(ts.UTC().Format(time.RFC3339)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write marker %s: %w", g.Path, err)
	}
	return nil
}
