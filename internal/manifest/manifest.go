package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
)

// HashAlgorithm names the digest algorithm of a Fingerprint.
// Only sha256 is defined today; the enum is closed on decode so that a
// manifest produced by a newer toolchain fails loudly instead of being
// silently misread.
type HashAlgorithm string

// HashAlgorithmSHA256 is the only supported fingerprint algorithm.
const HashAlgorithmSHA256 HashAlgorithm = "sha256"

// UnmarshalJSON rejects algorithm tokens this version does not know.
func (a *HashAlgorithm) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	if HashAlgorithm(value) != HashAlgorithmSHA256 {
		return fmt.Errorf("invalid hash algorithm %q, expected one of: sha256", value)
	}

	*a = HashAlgorithm(value)

	return nil
}

// Fingerprint is the expected content digest of a referenced file. The
// hash representation is opaque to this package (hex for sha256).
type Fingerprint struct {
	// Algorithm names the digest algorithm.
	Algorithm HashAlgorithm `json:"algorithm"`
	// Hash is the digest value.
	Hash string `json:"hash"`
}

// locatorKind discriminates the Locator variants.
type locatorKind uint8

const (
	locatorUnset locatorKind = iota
	locatorSize
	locatorEntry
)

// Locator describes how the runtime finds a referenced file's bytes:
// either the next Size bytes of the trailer region (placement follows
// manifest order) or an already existing relative path.
//
// In JSON a locator is not an object of its own: its single "size" or
// "entry" key appears as a sibling of the containing file's fields.
type Locator struct {
	kind  locatorKind
	size  uint64
	entry string
}

// SizeLocator returns a locator for the next byteCount trailer bytes.
func SizeLocator(byteCount uint64) Locator {
	return Locator{kind: locatorSize, size: byteCount}
}

// EntryLocator returns a locator for an existing relative path.
func EntryLocator(path string) Locator {
	return Locator{kind: locatorEntry, entry: path}
}

// Size reports the byte count of a size locator.
func (l Locator) Size() (uint64, bool) {
	return l.size, l.kind == locatorSize
}

// Entry reports the relative path of an entry locator.
func (l Locator) Entry() (string, bool) {
	return l.entry, l.kind == locatorEntry
}

// errLocatorRequired is returned when a file object carries neither a
// "size" nor an "entry" key, or both.
var errLocatorRequired = errors.New(`expected exactly one of "size" or "entry"`)

// rawLocator is the flattened JSON shape of a Locator.
type rawLocator struct {
	Size  *uint64 `json:"size,omitempty"`
	Entry *string `json:"entry,omitempty"`
}

// toRaw converts a locator into its flattened JSON fields.
func (l Locator) toRaw() (rawLocator, error) {
	switch l.kind {
	case locatorSize:
		size := l.size
		return rawLocator{Size: &size}, nil
	case locatorEntry:
		entry := l.entry
		return rawLocator{Entry: &entry}, nil
	default:
		return rawLocator{}, errLocatorRequired
	}
}

// toLocator validates the flattened fields and rebuilds the Locator.
func (r rawLocator) toLocator() (Locator, error) {
	switch {
	case r.Size != nil && r.Entry == nil:
		return SizeLocator(*r.Size), nil
	case r.Entry != nil && r.Size == nil:
		return EntryLocator(*r.Entry), nil
	default:
		return Locator{}, errLocatorRequired
	}
}

// Blob is a referenced opaque file carried by the payload.
type Blob struct {
	// Locator tells the runtime where the blob's bytes live.
	Locator Locator `json:"-"`
	// Fingerprint is the expected digest of those bytes.
	Fingerprint Fingerprint `json:"fingerprint"`
	// Name is the file name the blob materializes under.
	Name string `json:"name"`
	// AlwaysExtract forces extraction even when the file is already present.
	AlwaysExtract bool `json:"always_extract"`
}

// rawBlob mirrors Blob with the locator fields flattened in.
type rawBlob struct {
	rawLocator
	Fingerprint   Fingerprint `json:"fingerprint"`
	Name          string      `json:"name"`
	AlwaysExtract bool        `json:"always_extract"`
}

// MarshalJSON flattens the locator into the blob object.
func (b Blob) MarshalJSON() ([]byte, error) {
	raw, err := b.Locator.toRaw()
	if err != nil {
		return nil, fmt.Errorf("blob %q: %w", b.Name, err)
	}

	return json.Marshal(rawBlob{
		rawLocator:    raw,
		Fingerprint:   b.Fingerprint,
		Name:          b.Name,
		AlwaysExtract: b.AlwaysExtract,
	})
}

// UnmarshalJSON rebuilds the locator from the flattened fields.
func (b *Blob) UnmarshalJSON(data []byte) error {
	var raw rawBlob
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	locator, err := raw.toLocator()
	if err != nil {
		return fmt.Errorf("blob %q: %w", raw.Name, err)
	}

	*b = Blob{
		Locator:       locator,
		Fingerprint:   raw.Fingerprint,
		Name:          raw.Name,
		AlwaysExtract: raw.AlwaysExtract,
	}

	return nil
}

// Archive is a referenced packed directory carried by the payload.
type Archive struct {
	// Locator tells the runtime where the archive's bytes live.
	Locator Locator `json:"-"`
	// Fingerprint is the expected digest of those bytes.
	Fingerprint Fingerprint `json:"fingerprint"`
	// ArchiveType is the container format of the packed bytes.
	ArchiveType ArchiveType `json:"archive_type"`
	// Name optionally names the directory the archive unpacks under.
	Name *string `json:"name"`
	// AlwaysExtract forces extraction even when already unpacked.
	AlwaysExtract bool `json:"always_extract"`
}

// rawArchive mirrors Archive with the locator fields flattened in.
// ArchiveType is a pointer so a missing key is distinguishable from zip.
type rawArchive struct {
	rawLocator
	Fingerprint   Fingerprint  `json:"fingerprint"`
	ArchiveType   *ArchiveType `json:"archive_type"`
	Name          *string      `json:"name"`
	AlwaysExtract bool         `json:"always_extract"`
}

// MarshalJSON flattens the locator into the archive object.
func (a Archive) MarshalJSON() ([]byte, error) {
	raw, err := a.Locator.toRaw()
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}

	archiveType := a.ArchiveType

	return json.Marshal(rawArchive{
		rawLocator:    raw,
		Fingerprint:   a.Fingerprint,
		ArchiveType:   &archiveType,
		Name:          a.Name,
		AlwaysExtract: a.AlwaysExtract,
	})
}

// UnmarshalJSON rebuilds the locator from the flattened fields.
func (a *Archive) UnmarshalJSON(data []byte) error {
	var raw rawArchive
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	locator, err := raw.toLocator()
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	if raw.ArchiveType == nil {
		return errors.New(`archive: missing "archive_type"`)
	}

	*a = Archive{
		Locator:       locator,
		Fingerprint:   raw.Fingerprint,
		ArchiveType:   *raw.ArchiveType,
		Name:          raw.Name,
		AlwaysExtract: raw.AlwaysExtract,
	}

	return nil
}

// File tag values.
const (
	fileTagArchive = "archive"
	fileTagBlob    = "blob"
)

// File is a payload file entry: either an Archive or a Blob. On the wire
// the variant is discriminated by a lowercase "type" key flattened into
// the entry object.
type File interface {
	fileTag() string
}

func (Archive) fileTag() string { return fileTagArchive }
func (Blob) fileTag() string    { return fileTagBlob }

// Files is an ordered list of file entries. Order is meaningful: size
// locators consume trailer bytes in declared order, and consumers may
// apply entries sequentially. Order survives the JSON round trip.
type Files []File

// MarshalJSON emits each entry with its "type" tag merged into the
// entry's own fields.
func (fs Files) MarshalJSON() ([]byte, error) {
	entries := make([]json.RawMessage, 0, len(fs))

	for i, file := range fs {
		body, err := json.Marshal(file)
		if err != nil {
			return nil, err
		}

		var fields map[string]json.RawMessage
		if err = json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("file %d: %w", i, err)
		}

		fields["type"], err = json.Marshal(file.fileTag())
		if err != nil {
			return nil, err
		}

		tagged, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}

		entries = append(entries, tagged)
	}

	return json.Marshal(entries)
}

// UnmarshalJSON dispatches each entry on its "type" tag.
func (fs *Files) UnmarshalJSON(data []byte) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	files := make(Files, 0, len(entries))

	for i, entry := range entries {
		var tagged struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(entry, &tagged); err != nil {
			return fmt.Errorf("file %d: %w", i, err)
		}

		switch tagged.Type {
		case fileTagArchive:
			var archive Archive
			if err := json.Unmarshal(entry, &archive); err != nil {
				return fmt.Errorf("file %d: %w", i, err)
			}

			files = append(files, archive)
		case fileTagBlob:
			var blob Blob
			if err := json.Unmarshal(entry, &blob); err != nil {
				return fmt.Errorf("file %d: %w", i, err)
			}

			files = append(files, blob)
		default:
			return fmt.Errorf(
				"file %d: invalid file type %q, expected one of: archive or blob", i, tagged.Type,
			)
		}
	}

	if len(files) == 0 {
		files = nil
	}

	*fs = files

	return nil
}

// Cmd describes a bootable command: the executable to launch, its
// arguments and environment, and any extra files it needs materialized.
type Cmd struct {
	Exe             string            `json:"exe"`
	Args            []string          `json:"args"`
	Env             map[string]string `json:"env"`
	AdditionalFiles []string          `json:"additional_files"`
}

// rawCmd strips Cmd's methods for plain field (un)marshalling.
type rawCmd Cmd

// MarshalJSON emits empty collections as [] and {}, never null: the
// runtime's decoder applies defaults only to missing keys and rejects
// null values.
func (c Cmd) MarshalJSON() ([]byte, error) {
	raw := rawCmd(c)

	if raw.Args == nil {
		raw.Args = []string{}
	}

	if raw.Env == nil {
		raw.Env = map[string]string{}
	}

	if raw.AdditionalFiles == nil {
		raw.AdditionalFiles = []string{}
	}

	return json.Marshal(raw)
}

// UnmarshalJSON folds empty collections back to nil so a command
// compares equal whether the producer wrote [] or omitted the key.
func (c *Cmd) UnmarshalJSON(data []byte) error {
	var raw rawCmd
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if len(raw.Args) == 0 {
		raw.Args = nil
	}

	if len(raw.Env) == 0 {
		raw.Env = nil
	}

	if len(raw.AdditionalFiles) == 0 {
		raw.AdditionalFiles = nil
	}

	*c = Cmd(raw)

	return nil
}

// Scie carries payload-level metadata.
type Scie struct {
	// Version is the manifest schema version.
	Version string `json:"version"`
	// Root is the base directory the runtime extracts files under.
	Root string `json:"root"`
}

// Config is the root manifest appended after the payload's zip archive.
// It is built once on the producer side, serialized into the trailer, and
// reconstructed read-only on the consumer side.
type Config struct {
	Scie               Scie           `json:"scie"`
	Files              Files          `json:"files"`
	Command            Cmd            `json:"command"`
	AdditionalCommands map[string]Cmd `json:"additional_commands"`
}

// rawConfig strips Config's methods for plain field (un)marshalling.
type rawConfig Config

// MarshalJSON emits an empty additional_commands map as {}, never null.
func (c Config) MarshalJSON() ([]byte, error) {
	raw := rawConfig(c)

	if raw.AdditionalCommands == nil {
		raw.AdditionalCommands = map[string]Cmd{}
	}

	return json.Marshal(raw)
}

// UnmarshalJSON folds an empty additional_commands map back to nil,
// mirroring Cmd's handling of empty collections.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if len(raw.AdditionalCommands) == 0 {
		raw.AdditionalCommands = nil
	}

	*c = Config(raw)

	return nil
}
