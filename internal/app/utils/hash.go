package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Fingerprint calculates the SHA256 hash of everything r holds. The read
// cursor is put back where it was so the same handle can be read again.
func Fingerprint(r io.ReadSeeker) (string, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", fmt.Errorf("failed to get read position: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind: %w", err)
	}

	hash := sha256.New()
	_, copyErr := io.Copy(hash, r)

	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to restore read position: %w", err)
	}
	if copyErr != nil {
		return "", fmt.Errorf("failed to read content: %w", copyErr)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// FingerprintBytes calculates the SHA256 hash of b
func FingerprintBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
