package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// WriteFileAtomic writes content to dst through a temporary file and rename,
// so dst never holds a partial write. The temporary file lives in scratchDir
// when set, otherwise alongside dst. When verify is non-nil it runs against
// the temporary file before publication; on any failure dst is left untouched
// and the temporary file is removed. Returns the number of bytes written.
func WriteFileAtomic(dst, scratchDir string, content io.Reader, verify func(string) error) (int64, error) {
	destDir := filepath.Dir(dst)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("create destination directory: %w", err)
	}

	tmpDir := scratchDir
	if tmpDir == "" {
		tmpDir = destDir
	}

	tmp, err := os.CreateTemp(tmpDir, tempPattern(dst))
	if err != nil {
		return 0, fmt.Errorf("create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, content)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("write temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("set temporary file mode: %w", err)
	}

	if verify != nil {
		if err := verify(tmpPath); err != nil {
			_ = os.Remove(tmpPath)
			return 0, err
		}
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			_ = os.Remove(tmpPath)
			return 0, fmt.Errorf("publish %s: %w", dst, err)
		}
		if err := publishAcrossFilesystems(tmpPath, dst); err != nil {
			_ = os.Remove(tmpPath)
			return 0, err
		}
	}

	return written, nil
}

// publishAcrossFilesystems stages a copy of src next to dst so the final
// rename stays on one filesystem. Used when the scratch directory lives on a
// different device than the destination.
func publishAcrossFilesystems(src, dst string) error {
	staged, err := os.CreateTemp(filepath.Dir(dst), tempPattern(dst))
	if err != nil {
		return fmt.Errorf("stage cross-device publish: %w", err)
	}
	stagedPath := staged.Name()
	if err := staged.Close(); err != nil {
		_ = os.Remove(stagedPath)
		return fmt.Errorf("stage cross-device publish: %w", err)
	}

	if err := CopyFileMode(src, stagedPath, 0o644); err != nil {
		_ = os.Remove(stagedPath)
		return fmt.Errorf("stage cross-device publish: %w", err)
	}
	if err := os.Rename(stagedPath, dst); err != nil {
		_ = os.Remove(stagedPath)
		return fmt.Errorf("publish %s: %w", dst, err)
	}
	_ = os.Remove(src)
	return nil
}

func tempPattern(dst string) string {
	return "." + filepath.Base(dst) + ".*.tmp"
}
