package pack

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/huonw/jump/internal/manifest"
)

// FileFingerprint computes the sha256 manifest fingerprint of the file
// at path and returns it together with the file's byte size, ready to
// fill a size locator.
func FileFingerprint(path string) (manifest.Fingerprint, uint64, error) {
	source, err := os.Open(path)
	if err != nil {
		return manifest.Fingerprint{}, 0, fmt.Errorf("open %s for fingerprinting: %w", path, err)
	}

	defer func() {
		_ = source.Close()
	}()

	digest := sha256.New()

	size, err := io.Copy(digest, source)
	if err != nil {
		return manifest.Fingerprint{}, 0, fmt.Errorf("fingerprint %s: %w", path, err)
	}

	fingerprint := manifest.Fingerprint{
		Algorithm: manifest.HashAlgorithmSHA256,
		Hash:      hex.EncodeToString(digest.Sum(nil)),
	}

	return fingerprint, uint64(size), nil
}
