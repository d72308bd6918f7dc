package irpack

import (
	"fmt"
	"os"
	"path/filepath"

	"spvlower/internal/ir"
)

// WriteFile encodes prog to path, replacing any existing file
// atomically so readers never observe a half-written payload.
func WriteFile(path string, prog *ir.Program) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// The temp file only survives on an early-return path.
		_ = os.Remove(f.Name())
	}()

	if err := Encode(f, prog); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile decodes a program from path.
func ReadFile(path string) (*ir.Program, error) {
	// #nosec G304 -- path comes from command-line arguments
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			_ = closeErr
		}
	}()
	prog, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}
