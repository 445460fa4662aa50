// Package version carries the scie-pack build metadata.
//
// Version, Commit and BuildTime are stamped via ldflags at release time
// and fall back to local-build placeholders otherwise. Short supplies the
// default manifest schema version; Full backs the version subcommand.
package version
