// Package integrity fingerprints regular files so the uninstall path can
// tell recorded content from local modification. MD5 is a tamper-evidence
// fingerprint here, not a security primitive.
package integrity

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashFile returns the 32-character lowercase hex MD5 of the file's content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Matches reports whether the file's current content hashes to expected.
func Matches(path, expected string) (bool, error) {
	actual, err := HashFile(path)
	if err != nil {
		return false, err
	}
	return actual == expected, nil
}
