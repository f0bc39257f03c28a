package stashfs

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bjaus/stashfs/blobstore"
	"github.com/bjaus/stashfs/ttlindex"
)

// Cache keeps values on disk, one file per key, while an in-memory index
// decides which keys are live. Entries leaving the index have their file
// removed.
type Cache[K comparable, V any] struct {
	cfg   config[K, V]
	addr  *Addressor
	store *blobstore.Store
	index *ttlindex.Index[K, Address]
	log   *slog.Logger
	stats Stats

	loads singleflight.Group

	ready     chan struct{}
	wg        sync.WaitGroup
	closed    atomic.Bool
	closeOnce sync.Once
}

// Open creates a Cache with the given options.
//
// Unless disabled with WithDeleteOnStart, the cache root is wiped in the
// background. Open does not wait for the wipe: operations issued before
// Ready is closed may race it. Use WaitReady to wait.
func Open[K comparable, V any](opts ...Option[K, V]) (*Cache[K, V], error) {
	cfg := defaultConfig[K, V]()
	for _, opt := range opts {
		opt(&cfg)
	}

	addr, err := NewAddressor(cfg.directory, cfg.shardPrefix, cfg.newHash)
	if err != nil {
		return nil, err
	}

	c := &Cache[K, V]{
		cfg:   cfg,
		addr:  addr,
		store: blobstore.New(cfg.directory, blobstore.WithCodec(cfg.codec)),
		log:   cfg.logger.With("dir", cfg.directory),
		ready: make(chan struct{}),
	}

	indexOpts := append(slices.Clone(cfg.indexOpts), ttlindex.WithDispose(c.dispose))
	c.index = ttlindex.New(indexOpts...)

	if cfg.deleteOnStart {
		c.wg.Add(1)
		go c.wipe()
	} else {
		close(c.ready)
	}

	return c, nil
}

func (c *Cache[K, V]) wipe() {
	defer c.wg.Done()
	defer close(c.ready)

	ctx := context.Background()
	if err := c.store.WipeRoot(); err != nil {
		c.report(ctx, &StorageError{Op: OpWipe, Path: c.store.Root(), Err: err})
		return
	}
	c.logWipe(ctx)
}

// dispose removes the file backing an entry that left the index.
func (c *Cache[K, V]) dispose(a Address, key K, reason ttlindex.Reason) {
	c.stats.disposed(reason)

	k := c.cfg.keyFn(key)
	if err := c.store.Remove(a.Path); err != nil {
		c.stats.removeError()
		c.report(context.Background(), &StorageError{Op: OpRemove, Key: k, Path: a.Path, Err: err})
		return
	}
	c.logDisposal(k, a, reason)
}

// Address returns where the value for key is stored.
func (c *Cache[K, V]) Address(key K) Address {
	return c.addr.Address(c.cfg.keyFn(key))
}

// Dir returns the cache root directory.
func (c *Cache[K, V]) Dir() string {
	return c.store.Root()
}

// Ready is closed once the startup wipe has finished, or immediately if
// it is disabled.
func (c *Cache[K, V]) Ready() <-chan struct{} {
	return c.ready
}

// WaitReady blocks until Ready is closed or ctx is done. It returns nil
// whenever the cache is already ready, even if ctx is done.
func (c *Cache[K, V]) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	default:
	}

	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get reads the value for key from disk.
//
// The index is not consulted: a value is returned whenever its file exists
// and decodes. Missing and unreadable files are both reported as a miss;
// the latter is also logged and passed to the OnError hook. A done ctx is a
// plain miss.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zero V

	a := c.Address(key)
	var v V
	ok, err := c.store.Read(ctx, a.Path, &v)
	if err != nil {
		c.stats.miss()
		if ctx.Err() != nil {
			return zero, false
		}
		c.report(ctx, &StorageError{Op: OpRead, Key: c.cfg.keyFn(key), Path: a.Path, Err: err})
		return zero, false
	}
	if !ok {
		c.stats.miss()
		return zero, false
	}

	c.stats.hit()
	return v, true
}

// GetOrLoad returns the value for key, calling the configured loader on a
// miss and storing its result. Concurrent loads of one key are coalesced.
// Without a loader it behaves like Get and returns the zero value on a miss.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K) (V, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}

	var zero V
	if c.cfg.loader == nil {
		return zero, nil
	}

	res, err, _ := c.loads.Do(c.Address(key).Hash, func() (any, error) {
		v, err := c.cfg.loader(ctx, key)
		if err != nil {
			return zero, err
		}
		return v, c.Set(ctx, key, v)
	})

	v, _ := res.(V)
	return v, err
}

// Set writes value to disk and then marks key live in the index.
// opts override the index defaults for this entry.
//
// If the write fails the index is left untouched and a *StorageError is
// returned. If the index rejects the entry (ttlindex.ErrCostExceeded), the
// key is removed along with its file and the error is returned.
func (c *Cache[K, V]) Set(ctx context.Context, key K, value V, opts ...ttlindex.SetOption) error {
	if c.closed.Load() {
		return ErrClosed
	}

	a := c.Address(key)
	if err := c.store.Write(ctx, a.Path, value); err != nil {
		c.stats.writeError()
		return &StorageError{Op: OpWrite, Key: c.cfg.keyFn(key), Path: a.Path, Err: err}
	}

	if err := c.index.Set(key, a, opts...); err != nil {
		c.index.Delete(key)
		if rerr := c.store.Remove(a.Path); rerr != nil {
			c.stats.removeError()
			c.report(ctx, &StorageError{Op: OpRemove, Key: c.cfg.keyFn(key), Path: a.Path, Err: rerr})
		}
		return err
	}
	return nil
}

// SetWithTTL is Set with a per-entry TTL.
func (c *Cache[K, V]) SetWithTTL(ctx context.Context, key K, value V, ttl time.Duration) error {
	return c.Set(ctx, key, value, ttlindex.WithEntryTTL(ttl))
}

// Delete removes key from the index, which removes its file.
// It reports whether key was present.
func (c *Cache[K, V]) Delete(key K) bool {
	return c.index.Delete(key)
}

// Clear removes every live key and its file. Files the index does not know
// about are left alone.
func (c *Cache[K, V]) Clear() {
	c.index.Clear()
}

// PurgeExpired disposes every expired entry now and returns how many there
// were.
func (c *Cache[K, V]) PurgeExpired() int {
	return c.index.PurgeExpired()
}

// Has reports whether key is live in the index.
func (c *Cache[K, V]) Has(key K) bool {
	return c.index.Has(key)
}

// Len returns the number of entries in the index.
// May include expired entries that haven't been purged yet.
func (c *Cache[K, V]) Len() int {
	return c.index.Len()
}

// RemainingTTL returns the time before key expires, ttlindex.NoExpiry for
// keys without a TTL and 0 for keys that are not live.
func (c *Cache[K, V]) RemainingTTL(key K) time.Duration {
	return c.index.RemainingTTL(key)
}

// Keys returns a lazy sequence over live keys.
func (c *Cache[K, V]) Keys() iter.Seq[K] {
	return c.index.Keys()
}

// Values returns a lazy sequence over the addresses of live keys.
func (c *Cache[K, V]) Values() iter.Seq[Address] {
	return c.index.Values()
}

// Entries returns a lazy sequence over live keys and their addresses.
func (c *Cache[K, V]) Entries() iter.Seq2[K, Address] {
	return c.index.Entries()
}

// Stats returns a snapshot of cache statistics.
func (c *Cache[K, V]) Stats() Snapshot {
	return c.stats.Snapshot()
}

// Close stops background expiry and waits for the startup wipe. Files on
// disk are kept. Set returns ErrClosed afterwards; reads keep working.
func (c *Cache[K, V]) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.index.Close()
		c.wg.Wait()
	})
	return nil
}
