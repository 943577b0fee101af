package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// ErrSourceRemove reports that a cross-volume move copied the file into place
// but could not remove the source. The destination is complete; callers should
// log the leftover source rather than fail the move.
var ErrSourceRemove = errors.New("source removal failed after copy")

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
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
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}

// UniquePath returns a free path for name inside dir. When the name is taken
// it appends _1, _2, ... before the extension until a free slot is found, so
// "report.pdf" becomes "report_1.pdf".
func UniquePath(dir, name string) (string, error) {
	const maxAttempts = 10000
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		base, ext = name, ""
	}
	candidate := filepath.Join(dir, name)
	for attempt := 0; attempt <= maxAttempts; attempt++ {
		if attempt > 0 {
			candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, attempt, ext))
		}
		_, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return candidate, nil
			}
			return "", err
		}
	}
	return "", fmt.Errorf("exhausted filename slots for %s in %s", name, dir)
}

// Move renames src to dst, falling back to copy-and-delete when the rename
// crosses a filesystem boundary. The copy lands under a temporary name, is
// synced, and only then renamed to dst, so dst never holds a partial file.
// The source is removed last; if that removal fails the returned error wraps
// ErrSourceRemove and dst is complete.
func Move(src, dst string) error {
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(renameErr, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return renameErr
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".move-*")
	if err != nil {
		return fmt.Errorf("stage cross-volume copy: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	if err := CopyFileVerified(src, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("cross-volume copy: %w", err)
	}
	if err := os.Chmod(tmpPath, srcInfo.Mode().Perm()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("cross-volume copy: %w", err)
	}
	if err := syncFile(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("cross-volume copy: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("finalize cross-volume copy: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return errors.Join(ErrSourceRemove, err)
	}
	return nil
}

// MoveFile moves src into dir under name, creating dir as needed and resolving
// name collisions via UniquePath. It returns the final path. When the returned
// error wraps ErrSourceRemove the move itself succeeded and the path is valid.
func MoveFile(src, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create destination %q: %w", dir, err)
	}
	target, err := UniquePath(dir, name)
	if err != nil {
		return "", err
	}
	moveErr := Move(src, target)
	if moveErr != nil && errors.Is(moveErr, os.ErrExist) {
		// Lost a race for the slot; pick again once.
		target, err = UniquePath(dir, name)
		if err != nil {
			return "", err
		}
		moveErr = Move(src, target)
	}
	if moveErr != nil {
		if errors.Is(moveErr, ErrSourceRemove) {
			return target, moveErr
		}
		return "", moveErr
	}
	return target, nil
}

func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
