package builder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/huonw/jump/internal/boot"
	"github.com/huonw/jump/internal/config"
	"github.com/huonw/jump/internal/logger"
	"github.com/huonw/jump/internal/manifest"
	"github.com/huonw/jump/internal/pack"
)

// Options contains inputs for the builder entry point.
type Options struct {
	// BuildFilePath is the path to the YAML build file (defaults to
	// scie-build.yaml).
	BuildFilePath string
	// BaseDir is the directory the build file's archive names and blob
	// sources are resolved against.
	BaseDir string
}

// builder assembles one payload. It is unexported; callers use Run,
// which encapsulates setup and validation.
type builder struct {
	// cfg is the validated build file.
	cfg *config.Config
	// baseDir anchors archive and blob source paths.
	baseDir string
}

// Run executes the build workflow described by the build file.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "scie-pack")

	cfg, err := config.Load(opts.BuildFilePath)
	if err != nil {
		return err
	}

	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = "."
	}

	b := &builder{cfg: cfg, baseDir: baseDir}

	if err = b.run(ctx); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	return nil
}

// run packs the declared archives, assembles the manifest and seals the
// payload.
func (b *builder) run(ctx context.Context) error {
	basePath, trailerPaths, files, err := b.packArchives(ctx)
	if err != nil {
		return err
	}

	blobFiles, err := b.declareBlobs()
	if err != nil {
		return err
	}

	files = append(files, blobFiles...)

	manifestConfig := &manifest.Config{
		Scie: manifest.Scie{
			Version: b.cfg.Version,
			Root:    b.cfg.Root,
		},
		Files:              files,
		Command:            toCmd(b.cfg.Command),
		AdditionalCommands: toCmds(b.cfg.AdditionalCommands),
	}

	if err = pack.Seal(ctx, basePath, trailerPaths, manifestConfig, b.cfg.Output); err != nil {
		return err
	}

	for _, bootCmd := range boot.Commands(manifestConfig) {
		logger.InfoKV(ctx, "Payload offers boot command", "name", bootCmd.Name)
	}

	return nil
}

// packArchives packs every declared directory. The first archive becomes
// the payload base; the rest ride in the trailer region, in declared
// order, matching their size locators.
func (b *builder) packArchives(
	ctx context.Context,
) (basePath string, trailerPaths []string, files manifest.Files, err error) {
	for i, spec := range b.cfg.Archives {
		archiveType := manifest.Zip

		if spec.ArchiveType != "" {
			if archiveType, err = manifest.ParseArchiveType(spec.ArchiveType); err != nil {
				return "", nil, nil, err
			}
		}

		archivePath, resolvedType, err := pack.CreateArchive(ctx, b.baseDir, spec.Name, archiveType)
		if err != nil {
			return "", nil, nil, err
		}

		fingerprint, size, err := pack.FileFingerprint(archivePath)
		if err != nil {
			return "", nil, nil, err
		}

		name := spec.Name
		files = append(files, manifest.Archive{
			Locator:       manifest.SizeLocator(size),
			Fingerprint:   fingerprint,
			ArchiveType:   resolvedType,
			Name:          &name,
			AlwaysExtract: spec.AlwaysExtract,
		})

		if i == 0 {
			basePath = archivePath
		} else {
			trailerPaths = append(trailerPaths, archivePath)
		}

		logger.InfoKV(ctx, "Packed archive",
			"name", spec.Name,
			"path", archivePath,
			"bytes", size,
		)
	}

	return basePath, trailerPaths, files, nil
}

// declareBlobs turns blob specs into entry-located manifest entries,
// fingerprinting each one's producer-side source file.
func (b *builder) declareBlobs() (manifest.Files, error) {
	files := make(manifest.Files, 0, len(b.cfg.Blobs))

	for _, spec := range b.cfg.Blobs {
		fingerprint, _, err := pack.FileFingerprint(filepath.Join(b.baseDir, spec.Source))
		if err != nil {
			return nil, err
		}

		files = append(files, manifest.Blob{
			Locator:       manifest.EntryLocator(spec.Entry),
			Fingerprint:   fingerprint,
			Name:          spec.Name,
			AlwaysExtract: spec.AlwaysExtract,
		})
	}

	return files, nil
}

// toCmd converts a build-file command into its manifest form.
func toCmd(spec config.CommandSpec) manifest.Cmd {
	return manifest.Cmd{
		Exe:             spec.Exe,
		Args:            spec.Args,
		Env:             spec.Env,
		AdditionalFiles: spec.AdditionalFiles,
	}
}

// toCmds converts the additional command map.
func toCmds(specs map[string]config.CommandSpec) map[string]manifest.Cmd {
	if len(specs) == 0 {
		return nil
	}

	cmds := make(map[string]manifest.Cmd, len(specs))
	for name, spec := range specs {
		cmds[name] = toCmd(spec)
	}

	return cmds
}
