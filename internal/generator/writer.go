package generator

import (
	"fmt"
	"os"
	"path/filepath"
)

// prepareOutputRoot creates dir and proves it is writable. Any failure is a
// setup error and stops the run before per-header work begins.
func prepareOutputRoot(dir string) error {
	if dir == "" {
		return newError(KindSetup, dir, fmt.Errorf("output directory is required"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newError(KindSetup, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".bridgegen-check-*")
	if err != nil {
		return newError(KindSetup, dir, fmt.Errorf("output directory not writable: %w", err))
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)
	return nil
}

// ensureDir creates dir and its parents. Concurrent callers creating the same
// directory all succeed.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		// another worker may have won the race
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return nil
		}
		return err
	}
	return nil
}

// writeFileAtomic writes content to a temp file beside path and renames it
// into place, so readers never observe a partial file.
func writeFileAtomic(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write content: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to atomic rename: %w", err)
	}
	return nil
}
