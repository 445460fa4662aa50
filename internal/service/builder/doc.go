// Package builder drives a full scie build: it reads the YAML build
// file, packs each declared directory, fingerprints the results, and
// seals the archives together with the generated manifest into a single
// payload file.
package builder
