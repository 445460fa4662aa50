package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huonw/jump/internal/boot"
	"github.com/huonw/jump/internal/trailer"
)

var (
	// showCommands switches inspect to listing boot commands only.
	showCommands bool

	// inspectCmd prints the manifest appended to an existing payload.
	inspectCmd = &cobra.Command{
		Use:   "inspect [payload]",
		Short: "Print the manifest appended to a scie payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyLogLevel()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}

			manifestConfig, err := trailer.Load(data)
			if err != nil {
				return err
			}

			if showCommands {
				for _, bootCmd := range boot.Commands(manifestConfig) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", bootCmd.Name, bootCmd.Description)
				}

				return nil
			}

			pretty, err := json.MarshalIndent(manifestConfig, "", "  ")
			if err != nil {
				return fmt.Errorf("render manifest: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(pretty))

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	inspectCmd.Flags().BoolVar(&showCommands, "commands", false, "list boot commands instead of the full manifest")
	rootCmd.AddCommand(inspectCmd)
}
