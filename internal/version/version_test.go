package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVersionStrings checks that Short feeds into Full and that the
// commit and build time placeholders are rendered.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Contains(t, Full(), "commit:")
	require.Contains(t, Full(), "built at:")
}
