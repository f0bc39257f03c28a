package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound is the error behind a missing blob. Read and Remove never
// return it; it is exported for callers that inspect paths themselves.
var ErrNotFound = os.ErrNotExist

const (
	defaultDirPerm  fs.FileMode = 0o755
	defaultFilePerm fs.FileMode = 0o644
)

// Store reads and writes encoded values under a root directory.
// It holds no state besides its configuration and is safe for concurrent use.
type Store struct {
	root     string
	codec    Codec
	dirPerm  fs.FileMode
	filePerm fs.FileMode
}

// Option configures a Store.
type Option func(*Store)

// WithCodec sets the codec used to encode values. Nil keeps the default.
func WithCodec(c Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithPermissions sets the modes used for created directories and files.
func WithPermissions(dir, file fs.FileMode) Option {
	return func(s *Store) {
		s.dirPerm = dir
		s.filePerm = file
	}
}

// New creates a Store rooted at root. The directory is not created until
// the first Write.
func New(root string, opts ...Option) *Store {
	s := &Store{
		root:     root,
		codec:    Default,
		dirPerm:  defaultDirPerm,
		filePerm: defaultFilePerm,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the root directory.
func (s *Store) Root() string { return s.root }

// Write encodes v and writes it to path, creating the parent directory if
// needed and replacing any existing file.
func (s *Store) Write(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.codec.Name(), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), s.dirPerm); err != nil {
		return err
	}
	return os.WriteFile(path, data, s.filePerm)
}

// Read decodes the file at path into v. A missing file reports false with a
// nil error; any other failure, including a decode error, is returned.
func (s *Store) Read(ctx context.Context, path string, v any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	if err := s.codec.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", s.codec.Name(), err)
	}
	return true, nil
}

// Remove deletes the file at path. Removing a missing file is not an error.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// WipeRoot recursively removes the root directory.
func (s *Store) WipeRoot() error {
	return os.RemoveAll(s.root)
}
