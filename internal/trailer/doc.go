// Package trailer locates and loads the manifest appended after a scie
// payload's zip archive.
//
// A payload is a structurally valid zip followed by raw manifest JSON.
// The zip's end-of-central-directory record is found by a bounded reverse
// scan from the end of the buffer, and the manifest begins right after
// the record's variable-length comment.
package trailer
