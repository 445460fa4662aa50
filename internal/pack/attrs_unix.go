//go:build unix

package pack

import (
	"archive/zip"
	"io/fs"
)

// applyFileMode stores the entry's unix mode bits in the zip header so
// permissions round-trip on extraction.
func applyFileMode(header *zip.FileHeader, mode fs.FileMode) {
	header.SetMode(mode)
}
