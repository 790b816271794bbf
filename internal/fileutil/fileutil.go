// Package fileutil holds the filesystem primitives scenecraft relies on for
// all-or-nothing output: verified copies, atomic publication guarded by a
// lock file, and free-space preflight checks.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// CopyFileVerified streams src to dst with SHA256 + size integrity verification
// and returns the number of bytes copied. Removes dst on mismatch.
func CopyFileVerified(src, dst string) (int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if srcInfo.IsDir() {
		return 0, fmt.Errorf("copy %s: source is a directory", src)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		_ = os.Remove(dst)
		return 0, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return 0, err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return 0, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return 0, fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return written, nil
}
