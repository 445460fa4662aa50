package manifest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// sampleConfig builds a manifest exercising both file variants and both
// locator variants.
func sampleConfig() *Config {
	name := "python"

	return &Config{
		Scie: Scie{
			Version: "0.1.0",
			Root:    "~/.nce",
		},
		Files: Files{
			Blob{
				Locator: SizeLocator(1137),
				Fingerprint: Fingerprint{
					Algorithm: HashAlgorithmSHA256,
					Hash:      "abc",
				},
				Name:          "pants-client",
				AlwaysExtract: true,
			},
			Archive{
				Locator: SizeLocator(123),
				Fingerprint: Fingerprint{
					Algorithm: HashAlgorithmSHA256,
					Hash:      "345",
				},
				ArchiveType: CompressedTar(Zstd),
				Name:        &name,
			},
			Archive{
				Locator: EntryLocator("lib/app.zip"),
				Fingerprint: Fingerprint{
					Algorithm: HashAlgorithmSHA256,
					Hash:      "def",
				},
				ArchiveType: Zip,
			},
		},
		Command: Cmd{
			Exe:  "{python}/bin/python",
			Args: []string{"{app}"},
			Env:  map[string]string{"PEX_VERBOSE": "1"},
		},
		AdditionalCommands: map[string]Cmd{
			"repl": {Exe: "{python}/bin/python"},
		},
	}
}

// TestConfigRoundTrip checks that a full manifest survives the JSON round
// trip, including file entry order.
func TestConfigRoundTrip(t *testing.T) {
	t.Parallel()

	original := sampleConfig()

	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Config

	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.Equal(t, original, &decoded)
}

// TestLocatorFlattening checks that a locator's key appears as a sibling
// of the containing file's own fields, not nested under a "locator" key.
func TestLocatorFlattening(t *testing.T) {
	t.Parallel()

	blob := Blob{
		Locator:     SizeLocator(42),
		Fingerprint: Fingerprint{Algorithm: HashAlgorithmSHA256, Hash: "abc"},
		Name:        "lib",
	}

	encoded, err := json.Marshal(blob)
	require.NoError(t, err)

	var fields map[string]json.RawMessage

	require.NoError(t, json.Unmarshal(encoded, &fields))
	require.Contains(t, fields, "size")
	require.Contains(t, fields, "fingerprint")
	require.NotContains(t, fields, "locator")
	require.NotContains(t, fields, "entry")

	entry := Archive{
		Locator:     EntryLocator("lib/app.zip"),
		Fingerprint: Fingerprint{Algorithm: HashAlgorithmSHA256, Hash: "def"},
		ArchiveType: Zip,
	}

	encoded, err = json.Marshal(entry)
	require.NoError(t, err)

	fields = nil

	require.NoError(t, json.Unmarshal(encoded, &fields))
	require.Contains(t, fields, "entry")
	require.Contains(t, fields, "archive_type")
	require.NotContains(t, fields, "size")
}

// TestLocatorExactlyOne checks that a file object must carry exactly one
// locator key.
func TestLocatorExactlyOne(t *testing.T) {
	t.Parallel()

	missing := []byte(`{
		"name": "lib",
		"fingerprint": {"algorithm": "sha256", "hash": "abc"}
	}`)

	var blob Blob

	err := json.Unmarshal(missing, &blob)
	require.ErrorIs(t, err, errLocatorRequired)

	both := []byte(`{
		"name": "lib",
		"size": 1,
		"entry": "lib/app.zip",
		"fingerprint": {"algorithm": "sha256", "hash": "abc"}
	}`)

	err = json.Unmarshal(both, &blob)
	require.ErrorIs(t, err, errLocatorRequired)
}

// TestFileTagDispatch checks that file entries decode by their "type" tag
// and unknown tags are rejected.
func TestFileTagDispatch(t *testing.T) {
	t.Parallel()

	encoded := []byte(`[
		{
			"type": "blob",
			"name": "pants-client",
			"size": 1,
			"fingerprint": {"algorithm": "sha256", "hash": "789"}
		},
		{
			"type": "archive",
			"size": 1137,
			"fingerprint": {"algorithm": "sha256", "hash": "abc"},
			"archive_type": "tar.gz"
		}
	]`)

	var files Files

	require.NoError(t, json.Unmarshal(encoded, &files))
	require.Len(t, files, 2)
	require.IsType(t, Blob{}, files[0])
	require.IsType(t, Archive{}, files[1])

	archive := files[1].(Archive)
	require.Equal(t, CompressedTar(Gzip), archive.ArchiveType)

	size, ok := archive.Locator.Size()
	require.True(t, ok)
	require.Equal(t, uint64(1137), size)

	var invalid Files

	err := json.Unmarshal([]byte(`[{"type": "tarball"}]`), &invalid)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected one of: archive or blob")
}

// TestFileTagEmitted checks that marshalled entries carry the lowercase
// "type" tag flattened alongside the variant's fields.
func TestFileTagEmitted(t *testing.T) {
	t.Parallel()

	encoded, err := json.Marshal(sampleConfig().Files)
	require.NoError(t, err)

	var entries []map[string]json.RawMessage

	require.NoError(t, json.Unmarshal(encoded, &entries))
	require.Equal(t, json.RawMessage(`"blob"`), entries[0]["type"])
	require.Equal(t, json.RawMessage(`"archive"`), entries[1]["type"])
}

// TestSerializeEmptyCollections checks that unset command collections
// encode as empty JSON collections rather than nulls, and that the
// empty forms decode back to the zero values they came from.
func TestSerializeEmptyCollections(t *testing.T) {
	t.Parallel()

	config := Config{
		Scie:    Scie{Version: "0.1.0", Root: "~/.nce"},
		Command: Cmd{Exe: "bob/exe"},
	}

	encoded, err := json.Marshal(config)
	require.NoError(t, err)

	require.NotContains(t, string(encoded), "null")
	require.Contains(t, string(encoded), `"files":[]`)
	require.Contains(t, string(encoded), `"args":[]`)
	require.Contains(t, string(encoded), `"env":{}`)
	require.Contains(t, string(encoded), `"additional_files":[]`)
	require.Contains(t, string(encoded), `"additional_commands":{}`)

	var decoded Config

	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.Equal(t, config, decoded)
}

// TestDeserializeDefaults checks that omitted optional fields load as
// their documented defaults.
func TestDeserializeDefaults(t *testing.T) {
	t.Parallel()

	encoded := []byte(`{
		"scie": {"version": "0.1.0", "root": "~/.nce"},
		"files": [
			{
				"type": "blob",
				"name": "pants-client",
				"size": 1,
				"fingerprint": {"algorithm": "sha256", "hash": "789"}
			},
			{
				"type": "archive",
				"size": 42,
				"fingerprint": {"algorithm": "sha256", "hash": "xyz"},
				"archive_type": "zip"
			}
		],
		"command": {"exe": "{python}/bin/python"}
	}`)

	var config Config

	require.NoError(t, json.Unmarshal(encoded, &config))

	blob := config.Files[0].(Blob)
	require.False(t, blob.AlwaysExtract)

	archive := config.Files[1].(Archive)
	require.Nil(t, archive.Name)
	require.False(t, archive.AlwaysExtract)

	require.Empty(t, config.Command.Args)
	require.Empty(t, config.Command.Env)
	require.Empty(t, config.Command.AdditionalFiles)
	require.Empty(t, config.AdditionalCommands)
}

// TestArchiveTypeRequired checks that an archive entry without an
// archive_type is rejected rather than defaulting to zip.
func TestArchiveTypeRequired(t *testing.T) {
	t.Parallel()

	encoded := []byte(`{
		"size": 42,
		"fingerprint": {"algorithm": "sha256", "hash": "xyz"}
	}`)

	var archive Archive

	err := json.Unmarshal(encoded, &archive)
	require.Error(t, err)
	require.Contains(t, err.Error(), "archive_type")
}

// TestHashAlgorithmUnknown checks that the algorithm enum is closed.
func TestHashAlgorithmUnknown(t *testing.T) {
	t.Parallel()

	var algorithm HashAlgorithm

	err := json.Unmarshal([]byte(`"md5"`), &algorithm)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected one of: sha256")
}

// TestFilesOrderPreserved checks that file order survives the round trip
// for a list long enough to catch accidental re-sorting.
func TestFilesOrderPreserved(t *testing.T) {
	t.Parallel()

	files := make(Files, 0, 8)
	for _, name := range []string{"zeta", "alpha", "mu", "beta", "omega", "eta", "kappa", "iota"} {
		files = append(files, Blob{
			Locator:     SizeLocator(uint64(len(name))),
			Fingerprint: Fingerprint{Algorithm: HashAlgorithmSHA256, Hash: name},
			Name:        name,
		})
	}

	encoded, err := json.Marshal(files)
	require.NoError(t, err)

	var decoded Files

	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.Equal(t, files, decoded)
}
