package version

import "fmt"

var (
	// Version is the scie-pack release version, overridable via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA stamped at build time, "none" locally.
	Commit = "none"
	// BuildTime is the UTC build timestamp stamped at build time.
	BuildTime = "unknown"
)

// Short returns the bare release version, as recorded in sealed manifests.
func Short() string {
	return Version
}

// Full renders the version, commit and build time on one line.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}
