//go:build !unix

package pack

import (
	"archive/zip"
	"io/fs"
)

// applyFileMode is a no-op where unix permission semantics do not exist;
// entries keep the archive library's default attributes.
func applyFileMode(_ *zip.FileHeader, _ fs.FileMode) {}
