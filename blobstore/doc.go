// Package blobstore persists whole values as individual files.
//
// A Store is rooted at one directory. Values are encoded with a Codec and
// written with a single whole-file write; there is no fsync or rename step,
// so a crash mid-write can leave a truncated file. Readers treat a file that
// fails to decode like any other failure and callers are expected to degrade
// to a miss.
//
// # Codecs
//
//   - GoJSON: JSON via github.com/goccy/go-json (Default)
//   - JSON: encoding/json
//   - Zstd(inner), LZ4(inner): compress the output of another codec
//
// Changing codecs is a breaking change for files already on disk.
package blobstore
