package trailer

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/huonw/jump/internal/manifest"
)

// Zip format facts used here come from "4.3.6 Overall .ZIP file format:"
// and "4.3.16 End of central directory record:" in
// https://pkware.cachefly.net/webdocs/casestudies/APPNOTE.TXT.
const (
	// MaximumConfigSize bounds the manifest JSON accepted by Load. It
	// matches the maximum zip comment length: the manifest is expected to
	// be small, and the bound keeps the EOCD scan cost fixed.
	MaximumConfigSize = 0xFFFF

	// eocdFixedSize is the fixed EOCD record width: the 4-byte signature
	// followed by disk number, central directory disk number, per-disk
	// record count, total record count (16-bit each), central directory
	// size and offset (32-bit each) and the comment length (16-bit), all
	// little-endian.
	eocdFixedSize = 22

	// maximumCommentSize is the largest comment an EOCD record can carry.
	maximumCommentSize = 0xFFFF

	// commentSizeOffset is where the comment length field sits relative
	// to the signature.
	commentSizeOffset = 20
)

// eocdSignature is the EOCD record magic.
var eocdSignature = []byte{0x50, 0x4b, 0x05, 0x06}

// EndOfZip returns the offset at which data appended after the zip in
// data begins, i.e. the offset one past the zip's EOCD record and its
// comment. The scan runs backward from the end of the buffer and is
// bounded by the fixed record size, the maximum comment size and
// maximumTrailerSize, so cost does not grow with archive size.
//
// Scanning in reverse and taking the first hit resolves signature
// look-alikes inside the appended data or the comment in favor of the
// occurrence closest to the end of the file, which in a well-formed
// payload is the true EOCD. A comment crafted to contain the signature
// byte run could still defeat this; that fragility is inherent to
// appending data after a zip and is accepted here.
func EndOfZip(data []byte, maximumTrailerSize int) (int, error) {
	maxScan := eocdFixedSize + maximumCommentSize + maximumTrailerSize

	limit := len(data) - maxScan
	if limit < 0 {
		limit = 0
	}

	signatureAt := -1

	for i := len(data) - len(eocdSignature); i >= limit; i-- {
		if data[i] == eocdSignature[0] &&
			data[i+1] == eocdSignature[1] &&
			data[i+2] == eocdSignature[2] &&
			data[i+3] == eocdSignature[3] {
			signatureAt = i
			break
		}
	}

	if signatureAt < 0 {
		return 0, fmt.Errorf(
			"failed to find application zip end of central directory record within the last "+
				"%d bytes of the file, invalid NCE", maxScan,
		)
	}

	if signatureAt+eocdFixedSize > len(data) {
		return 0, fmt.Errorf(
			"application zip end of central directory record at offset %d is truncated",
			signatureAt,
		)
	}

	// Only the comment length matters for locating the trailer; the other
	// fixed fields belong to the zip's own structure.
	commentSize := binary.LittleEndian.Uint16(
		data[signatureAt+commentSizeOffset : signatureAt+commentSizeOffset+2],
	)

	return signatureAt + eocdFixedSize + int(commentSize), nil
}

// Load locates the manifest appended after the zip in data and decodes
// it. The returned config is pure descriptive data; callers must not
// mutate it.
func Load(data []byte) (*manifest.Config, error) {
	endOfZip, err := EndOfZip(data, MaximumConfigSize)
	if err != nil {
		return nil, err
	}

	if endOfZip > len(data) {
		return nil, fmt.Errorf(
			"application zip claims a comment running %d bytes past the end of the file",
			endOfZip-len(data),
		)
	}

	var config manifest.Config
	if err = json.Unmarshal(data[endOfZip:], &config); err != nil {
		return nil, fmt.Errorf("decode scie manifest at offset %d: %w", endOfZip, err)
	}

	return &config, nil
}
