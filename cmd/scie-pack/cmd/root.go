package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/huonw/jump/internal/config"
	"github.com/huonw/jump/internal/logger"
	"github.com/huonw/jump/internal/service/builder"
	"github.com/huonw/jump/internal/version"
)

var (
	// buildFilePath is the path to the YAML build file.
	buildFilePath string

	// baseDir anchors the build file's archive and blob source paths.
	baseDir string

	// logLevelName selects the logging verbosity.
	logLevelName string

	// rootCmd represents the base command for building scie payloads.
	rootCmd = &cobra.Command{
		Use:   "scie-pack",
		Short: "Pack directory trees into a self-contained scie payload",
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			applyLogLevel()

			options := &builder.Options{
				BuildFilePath: buildFilePath,
				BaseDir:       baseDir,
			}

			return builder.Run(ctx, options)
		},
	}
)

// applyLogLevel configures the global logger from the --log-level flag.
func applyLogLevel() {
	if level, ok := logger.ParseLogLevel(logLevelName); ok {
		logger.SetLevel(level)
	}
}

// Execute runs the scie-pack CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&buildFilePath, "config", "c", config.DefaultBuildFilename, "path to build file")
	rootCmd.Flags().StringVarP(&baseDir, "dir", "d", ".", "base directory for archive sources")
	rootCmd.PersistentFlags().StringVarP(&logLevelName, "log-level", "l", "info", "log level (debug, info, warn, error, fatal)")
}
