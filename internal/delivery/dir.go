package delivery

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir writes payloads into a local download directory, creating it on
// first use.
type Dir struct {
	Path string
}

func NewDir(path string) *Dir {
	return &Dir{Path: path}
}

func (d *Dir) Deliver(data []byte, filename string) error {
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return fmt.Errorf("delivery: create dir %s: %w", d.Path, err)
	}
	dest := filepath.Join(d.Path, filename)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("delivery: write %s: %w", dest, err)
	}
	return nil
}
