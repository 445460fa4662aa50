// Package config defines the YAML build file driving scie-pack and
// provides helpers to load and validate it.
//
// The build file names the directories to pack, the entry-referenced
// blobs to declare, and the commands the sealed payload boots.
package config
