package boot

import (
	"sort"
	"strings"

	"github.com/huonw/jump/internal/manifest"
)

// Boot names one selectable boot command.
type Boot struct {
	// Name selects the command (1st argument or SCIE_BOOT).
	Name string
	// Description is optional human-readable help for the command.
	Description string
}

// Commands lists the boot commands a manifest offers: the default
// command under its reserved empty name is excluded, the additional
// commands are returned sorted by name.
func Commands(config *manifest.Config) []Boot {
	boots := make([]Boot, 0, len(config.AdditionalCommands))

	for name, cmd := range config.AdditionalCommands {
		boots = append(boots, Boot{
			Name:        name,
			Description: cmd.Exe,
		})
	}

	sort.Slice(boots, func(i, j int) bool {
		return boots[i].Name < boots[j].Name
	})

	return boots
}

// SelectMessage renders the guidance shown when a payload has no default
// boot command: the available commands, how to pick one, and an optional
// underlying error.
func SelectMessage(boots []Boot, errorMessage string) string {
	lines := make([]string, 0, len(boots))

	for _, b := range boots {
		if b.Description != "" {
			lines = append(lines, b.Name+": "+b.Description)
		} else {
			lines = append(lines, b.Name)
		}
	}

	var builder strings.Builder

	builder.WriteString("This scie binary has no default boot command.\n")
	builder.WriteString("Please select from the following:\n")
	builder.WriteString(strings.Join(lines, "\n"))
	builder.WriteString("\n\n")
	builder.WriteString(
		"You can select a boot command by passing it as the 1st argument or else by " +
			"setting the SCIE_BOOT environment variable.\n",
	)
	builder.WriteString(errorMessage)

	return builder.String()
}
