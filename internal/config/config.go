package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/huonw/jump/internal/manifest"
	"github.com/huonw/jump/internal/version"
)

// Config is the YAML build file describing the scie payload to produce:
// which directories to pack, which entry-referenced blobs to declare,
// and the command the payload boots.
type Config struct {
	// Version is the manifest schema version stamped into the payload.
	// Defaults to the toolchain version.
	Version string `yaml:"version"`
	// Root is the base directory the runtime extracts files under.
	Root string `yaml:"root"`
	// Output is the path of the sealed payload file.
	Output string `yaml:"output"`
	// Archives lists the directories to pack, in payload order. The
	// first archive becomes the payload base and must be a zip.
	Archives []ArchiveSpec `yaml:"archives"`
	// Blobs lists entry-referenced files resolved inside the unpacked
	// payload rather than carried as trailer bytes.
	Blobs []BlobSpec `yaml:"blobs"`
	// Command is the default boot command.
	Command CommandSpec `yaml:"command"`
	// AdditionalCommands maps names to alternative boot commands.
	AdditionalCommands map[string]CommandSpec `yaml:"additional_commands"`
}

// ArchiveSpec selects one directory to pack.
type ArchiveSpec struct {
	// Name is the directory name under the build base directory.
	Name string `yaml:"name"`
	// ArchiveType is an archive extension token (defaults to zip).
	ArchiveType string `yaml:"archive_type"`
	// AlwaysExtract forces extraction even when already unpacked.
	AlwaysExtract bool `yaml:"always_extract"`
}

// BlobSpec declares a file the runtime finds by path inside the
// unpacked payload.
type BlobSpec struct {
	// Name is the file name the blob materializes under.
	Name string `yaml:"name"`
	// Entry is the relative path the runtime resolves the bytes at.
	Entry string `yaml:"entry"`
	// Source is the producer-side path used to fingerprint the bytes.
	Source string `yaml:"source"`
	// AlwaysExtract forces extraction even when the file is present.
	AlwaysExtract bool `yaml:"always_extract"`
}

// CommandSpec mirrors a manifest command in build-file form.
type CommandSpec struct {
	Exe             string            `yaml:"exe"`
	Args            []string          `yaml:"args"`
	Env             map[string]string `yaml:"env"`
	AdditionalFiles []string          `yaml:"additional_files"`
}

const (
	// DefaultBuildFilename is the default build file name.
	DefaultBuildFilename = "scie-build.yaml"

	// DefaultRoot is where the runtime extracts payload files when the
	// build file does not say otherwise.
	DefaultRoot = "~/.nce"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errExeRequired is returned when the default command has no executable.
	errExeRequired = errors.New("command executable must be provided")
	// errArchivesRequired is returned when no archives are declared.
	errArchivesRequired = errors.New("at least one archive must be declared")
)

// Load reads a build file from the provided path, validates it, and
// fills defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultBuildFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read build file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal build file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the build file for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Command.Exe == "" {
		return errExeRequired
	}

	if len(cfg.Archives) == 0 {
		return errArchivesRequired
	}

	for i, archive := range cfg.Archives {
		if archive.Name == "" {
			return fmt.Errorf("archive %d: name must be provided", i)
		}

		if archive.ArchiveType != "" {
			if _, err := manifest.ParseArchiveType(archive.ArchiveType); err != nil {
				return fmt.Errorf("archive %q: %w", archive.Name, err)
			}
		}
	}

	for i, blob := range cfg.Blobs {
		if blob.Name == "" || blob.Entry == "" || blob.Source == "" {
			return fmt.Errorf("blob %d: name, entry and source must be provided", i)
		}
	}

	if cfg.Version == "" {
		cfg.Version = version.Short()
	}

	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}

	if cfg.Output == "" {
		cfg.Output = cfg.Archives[0].Name + ".scie"
	}

	return nil
}
