package pack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/huonw/jump/internal/logger"
	"github.com/huonw/jump/internal/manifest"
	"github.com/huonw/jump/internal/trailer"
)

// executableMode is used for sealed payloads: they are meant to be run.
const executableMode = 0o755

// Seal assembles the final payload at outPath: the base zip archive's
// bytes, then each trailer file's bytes in order, then the serialized
// manifest. The base must be a zip so the runtime can locate the
// manifest; trailer files line up with the manifest's size locators in
// declared order.
//
// Manifests larger than the loader's scan bound are rejected up front:
// sealing one would produce a payload the runtime can never open.
func Seal(
	ctx context.Context,
	basePath string,
	trailerPaths []string,
	config *manifest.Config,
	outPath string,
) error {
	manifestBytes, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode scie manifest: %w", err)
	}

	if len(manifestBytes) > trailer.MaximumConfigSize {
		return fmt.Errorf(
			"scie manifest is %d bytes which exceeds the maximum loadable size of %d bytes",
			len(manifestBytes), trailer.MaximumConfigSize,
		)
	}

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, executableMode)
	if err != nil {
		return fmt.Errorf("open %s for sealing: %w", outPath, err)
	}

	if err = appendFile(out, basePath); err != nil {
		_ = out.Close()

		return fmt.Errorf("seal %s: %w", outPath, err)
	}

	for _, trailerPath := range trailerPaths {
		if err = appendFile(out, trailerPath); err != nil {
			_ = out.Close()

			return fmt.Errorf("seal %s: %w", outPath, err)
		}
	}

	if _, err = out.Write(manifestBytes); err != nil {
		_ = out.Close()

		return fmt.Errorf("seal %s: append manifest: %w", outPath, err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("seal %s: %w", outPath, err)
	}

	logger.InfoKV(ctx, "Sealed scie payload",
		"path", outPath,
		"manifest_bytes", len(manifestBytes),
	)

	return nil
}

// appendFile copies the whole content of path onto out.
func appendFile(out io.Writer, path string) error {
	source, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		_ = source.Close()
	}()

	if _, err = io.Copy(out, source); err != nil {
		return fmt.Errorf("copy %s: %w", path, err)
	}

	return nil
}
