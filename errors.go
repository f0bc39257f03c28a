package stashfs

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Set after Close.
	ErrClosed = errors.New("stashfs: cache is closed")

	// ErrInvalidShardPrefix is returned by Open when the shard prefix does
	// not fit the configured hash.
	ErrInvalidShardPrefix = errors.New("stashfs: invalid shard prefix length")
)

// Op names the storage operation behind a StorageError.
type Op string

const (
	OpWrite  Op = "write"
	OpRead   Op = "read"
	OpRemove Op = "remove"
	OpWipe   Op = "wipe"
)

// StorageError describes a failed filesystem operation.
//
// Set returns it when a value could not be written. Read, remove and wipe
// failures are never returned; they are logged and passed to the OnError hook.
//
// The underlying error can be accessed via errors.Unwrap.
type StorageError struct {
	Op   Op
	Key  string // empty for OpWipe
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("stashfs: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("stashfs: %s %q at %s: %v", e.Op, e.Key, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
