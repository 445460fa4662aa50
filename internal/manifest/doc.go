// Package manifest defines the scie manifest schema: the JSON document
// appended after a zip archive that tells the runtime which files the
// payload carries and which command to boot.
//
// The wire format is strict and versioned. Locator variants are flattened
// into their containing file object, file entries are discriminated by a
// lowercase "type" tag, and archive types round-trip through a fixed
// extension-alias table. Producers and consumers on both sides of the
// payload boundary depend on these rules staying exactly as they are.
package manifest
