package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand registers a `version` subcommand on root
// printing the scie-pack release, commit and build timestamp.
func AttachCobraVersionCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the scie-pack version.",
		Long: "Print the scie-pack release version along with the git commit and build " +
			"timestamp stamped into the binary. Manifests sealed by this binary record " +
			"the same version in their scie block.",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), Full())
		},
	})
}
