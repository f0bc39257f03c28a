package stashfs

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
	"io"
	"path/filepath"
)

// DefaultShardPrefix is the number of leading hex characters of a key's
// digest used as its shard directory name (256 shards for 2).
const DefaultShardPrefix = 2

// Address is the on-disk location of a key's value.
type Address struct {
	// Hash is the full hex digest of the key.
	Hash string
	// Shard is the leading part of Hash naming the shard directory.
	Shard string
	// Dir is the shard directory, root/Shard.
	Dir string
	// Path is the value file, root/Shard/Hash.
	Path string
}

// Addressor maps keys to addresses under a root directory. It is a pure
// function of its configuration and safe for concurrent use.
type Addressor struct {
	root    string
	prefix  int
	newHash func() hash.Hash
}

// NewAddressor returns an Addressor for root. A nil newHash uses MD5.
// prefix must be between 1 and the length of the hex digest.
func NewAddressor(root string, prefix int, newHash func() hash.Hash) (*Addressor, error) {
	if newHash == nil {
		newHash = md5.New
	}
	if prefix < 1 || prefix > 2*newHash().Size() {
		return nil, ErrInvalidShardPrefix
	}
	return &Addressor{root: root, prefix: prefix, newHash: newHash}, nil
}

// Address returns the address of key.
func (a *Addressor) Address(key string) Address {
	h := a.newHash()
	_, _ = io.WriteString(h, key)
	sum := hex.EncodeToString(h.Sum(nil))

	shard := sum[:a.prefix]
	dir := filepath.Join(a.root, shard)
	return Address{
		Hash:  sum,
		Shard: shard,
		Dir:   dir,
		Path:  filepath.Join(dir, sum),
	}
}
