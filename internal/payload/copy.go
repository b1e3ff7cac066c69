package payload

import (
	"fmt"
	"io"
	"io/fs"
	"os"
)

// CopyFile copies src to dst byte for byte, truncating any existing file at
// dst. When mode is non-zero its permission bits are applied to the
// destination.
func CopyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	perm := mode
	if perm == 0 {
		perm = 0644
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	if mode != 0 {
		// OpenFile's perm is masked by umask; make the recorded bits stick.
		if err := out.Chmod(mode); err != nil {
			out.Close()
			return fmt.Errorf("failed to set mode on %s: %w", dst, err)
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}

// EnsureDir creates a directory, tolerating one that already exists.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
