// Package pack builds scie payloads on the producer side: it packs a
// directory tree into a zip archive, fingerprints the result, and seals
// an archive together with its manifest into a single payload file.
//
// Packing follows symlinks, stores forward-slash entry names, and keeps
// unix permission bits where the platform has them. Only zip is
// implemented; tar and compressed tar requests fail explicitly.
package pack
