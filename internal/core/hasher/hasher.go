// Package hasher computes the integrity hashes recorded in the install lockfile.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prefix marks a sha256 integrity string.
const Prefix = "sha256:"

// HashFile streams the file at path through SHA256 and returns the
// "sha256:<hex_hash>" form.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return Prefix + hex.EncodeToString(hasher.Sum(nil)), nil
}

// Matches reports whether the file at path still hashes to want.
// A missing file or a malformed want never matches.
func Matches(path, want string) bool {
	if !strings.HasPrefix(want, Prefix) {
		return false
	}
	got, err := HashFile(path)
	if err != nil {
		return false
	}
	return got == want
}
