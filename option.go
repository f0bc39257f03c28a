package stashfs

import (
	"context"
	"fmt"
	"hash"
	"log/slog"
	"time"

	"github.com/bjaus/stashfs/blobstore"
	"github.com/bjaus/stashfs/ttlindex"
)

const (
	// DefaultDirectory is the default cache root.
	DefaultDirectory = "./cache/data"
	// DefaultCapacity is the default maximum number of live entries.
	DefaultCapacity = 1000
	// DefaultTTL is the default entry lifetime.
	DefaultTTL = time.Hour
	// DefaultPurgeInterval is how often expired entries are disposed.
	DefaultPurgeInterval = time.Second
)

type config[K comparable, V any] struct {
	directory     string
	deleteOnStart bool
	indexOpts     []ttlindex.Option[K, Address]
	shardPrefix   int
	newHash       func() hash.Hash
	keyFn         func(K) string
	codec         blobstore.Codec
	logger        *slog.Logger
	onError       func(error)
	loader        func(context.Context, K) (V, error)
}

func defaultConfig[K comparable, V any]() config[K, V] {
	return config[K, V]{
		directory:     DefaultDirectory,
		deleteOnStart: true,
		indexOpts: []ttlindex.Option[K, Address]{
			ttlindex.WithCapacity[K, Address](DefaultCapacity),
			ttlindex.WithTTL[K, Address](DefaultTTL),
			ttlindex.WithPurgeInterval[K, Address](DefaultPurgeInterval),
		},
		shardPrefix: DefaultShardPrefix,
		keyFn:       func(k K) string { return fmt.Sprint(k) },
		codec:       blobstore.Default,
		logger:      slog.Default(),
	}
}

// Option configures a Cache.
type Option[K comparable, V any] func(*config[K, V])

// WithDirectory sets the cache root directory.
func WithDirectory[K comparable, V any](dir string) Option[K, V] {
	return func(c *config[K, V]) {
		if dir != "" {
			c.directory = dir
		}
	}
}

// WithDeleteOnStart controls whether Open wipes the cache root in the
// background before use. Enabled by default.
func WithDeleteOnStart[K comparable, V any](enabled bool) Option[K, V] {
	return func(c *config[K, V]) {
		c.deleteOnStart = enabled
	}
}

// WithIndexOptions forwards options to the underlying ttlindex.Index.
// A dispose function set here is replaced by the cache's own.
func WithIndexOptions[K comparable, V any](opts ...ttlindex.Option[K, Address]) Option[K, V] {
	return func(c *config[K, V]) {
		c.indexOpts = append(c.indexOpts, opts...)
	}
}

// WithCapacity sets the maximum number of live entries.
func WithCapacity[K comparable, V any](n int) Option[K, V] {
	return WithIndexOptions[K, V](ttlindex.WithCapacity[K, Address](n))
}

// WithTTL sets the default entry lifetime. Zero disables expiry.
func WithTTL[K comparable, V any](d time.Duration) Option[K, V] {
	return WithIndexOptions[K, V](ttlindex.WithTTL[K, Address](d))
}

// WithPolicy sets the eviction policy.
//
// Get reads files without touching the index, so only Set counts as an
// access: LRU orders keys by last write and LFU by number of writes. With
// keys written once, both evict close to FIFO order.
func WithPolicy[K comparable, V any](p ttlindex.Policy) Option[K, V] {
	return WithIndexOptions[K, V](ttlindex.WithPolicy[K, Address](p))
}

// WithClock sets a custom clock for TTL bookkeeping.
// Useful for testing TTL behavior.
func WithClock[K comparable, V any](clk ttlindex.Clock) Option[K, V] {
	return WithIndexOptions[K, V](ttlindex.WithClock[K, Address](clk))
}

// WithPurgeInterval sets how often expired entries are disposed in the
// background. Zero disables the background loop.
func WithPurgeInterval[K comparable, V any](d time.Duration) Option[K, V] {
	return WithIndexOptions[K, V](ttlindex.WithPurgeInterval[K, Address](d))
}

// WithShardPrefix sets how many hex characters of a key's digest name its
// shard directory.
func WithShardPrefix[K comparable, V any](n int) Option[K, V] {
	return func(c *config[K, V]) {
		c.shardPrefix = n
	}
}

// WithHash sets the hash used to derive addresses. Defaults to MD5.
func WithHash[K comparable, V any](fn func() hash.Hash) Option[K, V] {
	return func(c *config[K, V]) {
		if fn != nil {
			c.newHash = fn
		}
	}
}

// WithKeyFunc sets how keys are turned into the string that is hashed.
// Defaults to fmt.Sprint.
func WithKeyFunc[K comparable, V any](fn func(K) string) Option[K, V] {
	return func(c *config[K, V]) {
		if fn != nil {
			c.keyFn = fn
		}
	}
}

// WithCodec sets the codec used for values on disk.
func WithCodec[K comparable, V any](codec blobstore.Codec) Option[K, V] {
	return func(c *config[K, V]) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithLogger sets the logger for swallowed failures. Nil discards logs.
func WithLogger[K comparable, V any](l *slog.Logger) Option[K, V] {
	return func(c *config[K, V]) {
		if l == nil {
			l = discardLogger()
		}
		c.logger = l
	}
}

// OnError sets a function that receives every failure the cache swallows:
// unreadable values, files that could not be removed and a failed startup
// wipe. Errors are *StorageError.
func OnError[K comparable, V any](fn func(error)) Option[K, V] {
	return func(c *config[K, V]) {
		c.onError = fn
	}
}

// WithLoader sets a function to load values on cache miss.
func WithLoader[K comparable, V any](fn func(context.Context, K) (V, error)) Option[K, V] {
	return func(c *config[K, V]) {
		c.loader = fn
	}
}
