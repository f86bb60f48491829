// Package filex snapshots files into the local attachments directory so that
// queued uploads never depend on the user's original file.
package filex

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EnsureDir creates dir (and parents) if needed and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// Snapshot is the result of copying a file.
type Snapshot struct {
	Path   string
	Size   int64
	SHA256 string
}

// CopyFile copies src to dst, creating dst's directory, and reports the size
// and hex SHA-256 of the bytes written. A partially written dst is removed.
func CopyFile(src, dst string) (Snapshot, error) {
	in, err := os.Open(src)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	if _, err := EnsureDir(filepath.Dir(dst)); err != nil {
		return Snapshot{}, err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return Snapshot{}, fmt.Errorf("create %s: %w", dst, err)
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(out, h), in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return Snapshot{}, fmt.Errorf("copy %s: %w", src, err)
	}

	return Snapshot{Path: dst, Size: n, SHA256: hex.EncodeToString(h.Sum(nil))}, nil
}
