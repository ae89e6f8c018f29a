// Package filekv implements kv.Store with one JSON file per key.
package filekv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"syscall"

	"locktodo/internal/kv"
)

// lockFile is taken exclusively around every read and write.
const lockFile = ".lock"

// Store keeps each key in <dir>/<escaped key>.json.
// No caching: every call goes to disk, and a flock on a sibling lock file
// keeps concurrent processes from interleaving.
type Store struct {
	dir string
}

// New creates the directory (mode 0700) and returns a store rooted at it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the file that holds key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

// Get implements kv.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.withLock(ctx, func() error {
		var err error
		data, err = os.ReadFile(s.Path(key))
		if errors.Is(err, fs.ErrNotExist) {
			return kv.ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set implements kv.Store. The value is written to a temp file and renamed
// into place so readers never observe a partial document.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.withLock(ctx, func() error {
		tmp, err := os.CreateTemp(s.dir, ".tmp-*")
		if err != nil {
			return fmt.Errorf("failed to create temp file: %w", err)
		}
		tmpName := tmp.Name()
		defer os.Remove(tmpName)

		if _, err := tmp.Write(value); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write temp file: %w", err)
		}
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to sync temp file: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("failed to close temp file: %w", err)
		}
		if err := os.Chmod(tmpName, 0600); err != nil {
			return fmt.Errorf("failed to chmod temp file: %w", err)
		}
		if err := os.Rename(tmpName, s.Path(key)); err != nil {
			return fmt.Errorf("failed to replace %s: %w", key, err)
		}
		return nil
	})
}

// Delete implements kv.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.withLock(ctx, func() error {
		err := os.Remove(s.Path(key))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		return nil
	})
}

// Close implements kv.Store. The file store holds no open handles.
func (s *Store) Close() error {
	return nil
}

// withLock executes fn with the directory lock held.
func (s *Store) withLock(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.dir, lockFile), os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("failed to lock data directory: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	return fn()
}
