package manifest

import (
	"encoding/json"
	"fmt"
)

// Compression enumerates the stream compressions a tar archive may be
// wrapped in.
type Compression string

// Supported tar compressions.
const (
	Bzip2 Compression = "bzip2"
	Gzip  Compression = "gzip"
	Lzma  Compression = "lzma"
	Xz    Compression = "xz"
	Zlib  Compression = "zlib"
	Zstd  Compression = "zstd"
)

// archiveKind discriminates the ArchiveType variants.
type archiveKind uint8

const (
	kindZip archiveKind = iota
	kindTar
	kindCompressedTar
)

// ArchiveType identifies the container format of a packed directory:
// zip, plain tar, or tar wrapped in one of the supported compressions.
// The zero value is Zip.
//
// Its string form follows the `-a` extension tokens recognized by GNU tar.
// Several short aliases are accepted on decode (tgz, tbz2, ...), but encode
// always emits the canonical long form.
type ArchiveType struct {
	compression Compression
	kind        archiveKind
}

// Zip and Tar are the uncompressed archive types.
var (
	Zip = ArchiveType{kind: kindZip}
	Tar = ArchiveType{kind: kindTar}
)

// CompressedTar returns the archive type for a tar compressed with c.
func CompressedTar(c Compression) ArchiveType {
	return ArchiveType{kind: kindCompressedTar, compression: c}
}

// CompressedWith reports the compression of a compressed tar archive type.
// It returns false for Zip and Tar.
func (t ArchiveType) CompressedWith() (Compression, bool) {
	return t.compression, t.kind == kindCompressedTar
}

// extensionByType maps each archive type to its canonical extension.
var extensionByType = map[ArchiveType]string{
	Zip:                  "zip",
	Tar:                  "tar",
	CompressedTar(Bzip2): "tar.bz2",
	CompressedTar(Gzip):  "tar.gz",
	CompressedTar(Lzma):  "tar.lzma",
	CompressedTar(Xz):    "tar.xz",
	CompressedTar(Zlib):  "tar.Z",
	CompressedTar(Zstd):  "tar.zst",
}

// archiveTypeByAlias maps every accepted extension token to its archive
// type. The alias set is fixed; decode must not grow lenient over time.
var archiveTypeByAlias = map[string]ArchiveType{
	"zip":      Zip,
	"tar":      Tar,
	"tbz2":     CompressedTar(Bzip2),
	"tar.bz2":  CompressedTar(Bzip2),
	"tgz":      CompressedTar(Gzip),
	"tar.gz":   CompressedTar(Gzip),
	"tlz":      CompressedTar(Lzma),
	"tar.lzma": CompressedTar(Lzma),
	"tar.xz":   CompressedTar(Xz),
	"tar.Z":    CompressedTar(Zlib),
	"tzst":     CompressedTar(Zstd),
	"tar.zst":  CompressedTar(Zstd),
}

// knownArchiveTypeTokens lists the accepted tokens for error messages,
// short aliases alongside their long forms.
const knownArchiveTypeTokens = "zip, tar, tbz2, tar.bz2, tgz, tar.gz, tlz, tar.lzma, tar.xz, tar.Z, tzst or tar.zst"

// Extension returns the canonical extension for the archive type,
// e.g. "zip" or "tar.gz".
func (t ArchiveType) Extension() string {
	return extensionByType[t]
}

// String implements fmt.Stringer using the canonical extension.
func (t ArchiveType) String() string {
	return t.Extension()
}

// ParseArchiveType resolves an extension token (canonical or short alias)
// to its archive type.
func ParseArchiveType(value string) (ArchiveType, error) {
	archiveType, ok := archiveTypeByAlias[value]
	if !ok {
		return ArchiveType{}, fmt.Errorf(
			"invalid archive type %q, expected one of: %s", value, knownArchiveTypeTokens,
		)
	}

	return archiveType, nil
}

// MarshalJSON encodes the archive type as its canonical extension string.
func (t ArchiveType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Extension())
}

// UnmarshalJSON decodes an extension token, accepting short aliases.
func (t *ArchiveType) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	archiveType, err := ParseArchiveType(value)
	if err != nil {
		return err
	}

	*t = archiveType

	return nil
}
