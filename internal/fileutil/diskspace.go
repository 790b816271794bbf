package fileutil

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FreeBytes reports the bytes available to unprivileged users on the
// filesystem holding dir.
func FreeBytes(dir string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", dir, err)
	}
	return st.Bavail * uint64(st.Bsize), nil
}

// EnsureFreeSpace fails when dir's filesystem has fewer than need bytes free.
// A statfs failure is returned as-is so callers can decide whether to proceed.
func EnsureFreeSpace(dir string, need int64) error {
	if need <= 0 {
		return nil
	}
	free, err := FreeBytes(dir)
	if err != nil {
		return err
	}
	if free < uint64(need) {
		return fmt.Errorf("insufficient disk space in %s: need %d bytes, have %d", dir, need, free)
	}
	return nil
}
