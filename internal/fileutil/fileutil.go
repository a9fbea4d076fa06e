package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicFile stages writes in a sibling temp file and renames it over the
// destination on Commit, so readers never observe a partial file.
type AtomicFile struct {
	*os.File
	dest string
	mode os.FileMode
	done bool
}

// CreateAtomic opens a temp file next to dest. The caller must call Commit
// or Abort.
func CreateAtomic(dest string, mode os.FileMode) (*AtomicFile, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create parent of %s: %w", dest, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp for %s: %w", dest, err)
	}
	return &AtomicFile{File: tmp, dest: dest, mode: mode}, nil
}

// Commit flushes the temp file and renames it over the destination.
func (f *AtomicFile) Commit() error {
	if f.done {
		return fmt.Errorf("commit %s: already finished", f.dest)
	}
	f.done = true
	tmpName := f.Name()
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, f.mode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.dest); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", f.dest, err)
	}
	return nil
}

// Abort discards the temp file. Safe to call after Commit.
func (f *AtomicFile) Abort() {
	if f.done {
		return
	}
	f.done = true
	_ = f.Close()
	_ = os.Remove(f.Name())
}

// WriteFileAtomic writes data to path through an AtomicFile.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	f, err := CreateAtomic(path, mode)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Abort()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Commit()
}
