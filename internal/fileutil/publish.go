package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created in a destination directory while Publish renames
// into it.
const LockFileName = ".scenecraft.lock"

// Publish writes dst atomically. fill receives a temporary file in dst's
// directory; only when it returns nil is the file synced and renamed over
// dst. Concurrent publishers targeting the same directory are serialized by
// an advisory lock so a reader never observes a half-written archive.
func Publish(dst string, fill func(w io.Writer) error) (err error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary output: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err = fill(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temporary output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temporary output: %w", err)
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	if err = lock.Lock(); err != nil {
		return fmt.Errorf("lock output directory: %w", err)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("unlock output directory: %w", unlockErr)
		}
	}()

	if info, statErr := os.Stat(dst); statErr == nil && info.IsDir() {
		return fmt.Errorf("publish %s: destination is a directory", dst)
	} else if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return fmt.Errorf("stat destination: %w", statErr)
	}
	if err = os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("publish %s: %w", dst, err)
	}
	return nil
}
