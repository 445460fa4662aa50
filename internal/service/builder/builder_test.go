package builder

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huonw/jump/internal/manifest"
	"github.com/huonw/jump/internal/trailer"
)

// TestRun_BuildsLoadablePayload drives a whole build from a YAML build
// file and checks the sealed payload's manifest loads back.
func TestRun_BuildsLoadablePayload(t *testing.T) {
	baseDir := t.TempDir()

	appDir := filepath.Join(baseDir, "app")
	require.NoError(t, os.MkdirAll(filepath.Join(appDir, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "bin", "run"), []byte("#!/bin/sh\n"), 0o755))

	output := filepath.Join(baseDir, "app.scie")
	buildFile := filepath.Join(baseDir, "scie-build.yaml")
	contents := `
version: "0.1.0"
output: ` + output + `
archives:
  - name: app
blobs:
  - name: run
    entry: bin/run
    source: app/bin/run
command:
  exe: "{app}/bin/run"
additional_commands:
  shell:
    exe: /bin/sh
`
	require.NoError(t, os.WriteFile(buildFile, []byte(contents), 0o600))

	err := Run(context.Background(), &Options{
		BuildFilePath: buildFile,
		BaseDir:       baseDir,
	})
	require.NoError(t, err)

	payload, err := os.ReadFile(output)
	require.NoError(t, err)

	loaded, err := trailer.Load(payload)
	require.NoError(t, err)
	require.Equal(t, "0.1.0", loaded.Scie.Version)
	require.Len(t, loaded.Files, 2)

	archive, ok := loaded.Files[0].(manifest.Archive)
	require.True(t, ok)
	require.Equal(t, manifest.Zip, archive.ArchiveType)
	require.NotNil(t, archive.Name)
	require.Equal(t, "app", *archive.Name)

	// The size locator must describe the exact zip byte span of the
	// payload base.
	size, ok := archive.Locator.Size()
	require.True(t, ok)

	zipInfo, err := os.Stat(filepath.Join(baseDir, "app.zip"))
	require.NoError(t, err)
	require.Equal(t, uint64(zipInfo.Size()), size)

	blob, ok := loaded.Files[1].(manifest.Blob)
	require.True(t, ok)

	entry, ok := blob.Locator.Entry()
	require.True(t, ok)
	require.Equal(t, "bin/run", entry)

	require.Contains(t, loaded.AdditionalCommands, "shell")

	// The payload is marked executable where modes exist.
	if runtime.GOOS != "windows" {
		payloadInfo, err := os.Stat(output)
		require.NoError(t, err)
		require.NotZero(t, payloadInfo.Mode().Perm()&0o100)
	}
}
