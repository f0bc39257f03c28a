package ttlindex

import (
	"context"
	"errors"
	"iter"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// NoExpiry is reported by RemainingTTL for entries without a TTL.
const NoExpiry = time.Duration(math.MaxInt64)

// ErrCostExceeded is returned by Set for an entry whose cost alone is above
// the configured max cost.
var ErrCostExceeded = errors.New("ttlindex: entry cost exceeds max cost")

// Index is a generic, size and TTL bounded map of keys to values.
// Every entry that leaves the index, for any reason, is handed to the
// configured DisposeFunc exactly once.
type Index[K comparable, V any] struct {
	mu        sync.RWMutex
	data      map[K]*entry[V]
	evictor   evictor[K]
	cfg       config[K, V]
	totalCost int64

	stop      context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a new Index with the given options.
// If WithPurgeInterval is set, a background purge loop is started and
// Close must be called to stop it.
func New[K comparable, V any](opts ...Option[K, V]) *Index[K, V] {
	cfg := defaultConfig[K, V]()
	for _, opt := range opts {
		opt(&cfg)
	}

	ix := &Index[K, V]{
		data:    make(map[K]*entry[V]),
		evictor: newEvictor[K](cfg.policy),
		cfg:     cfg,
	}

	if cfg.purgeInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		ix.stop = cancel
		ix.wg.Add(1)
		go ix.purgeLoop(ctx)
	}

	return ix
}

func (ix *Index[K, V]) purgeLoop(ctx context.Context) {
	defer ix.wg.Done()

	ticker := time.NewTicker(ix.cfg.purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ix.PurgeExpired()
		}
	}
}

// Set adds or updates an entry. Replacing the value of a live key does not
// dispose the previous value. Making room never evicts key itself.
//
// An entry that could never fit under WithMaxCost is rejected with
// ErrCostExceeded and the index is left unchanged.
func (ix *Index[K, V]) Set(key K, value V, opts ...SetOption) error {
	sc := setConfig{ttl: ix.cfg.ttl, cost: 1}
	if ix.cfg.costFn != nil {
		sc.cost = ix.cfg.costFn(value)
	}
	for _, opt := range opts {
		opt(&sc)
	}

	if ix.cfg.maxCost > 0 && sc.cost > ix.cfg.maxCost {
		return ErrCostExceeded
	}

	ix.mu.Lock()
	now := ix.cfg.clock.Now()

	var expiresAt time.Time
	if sc.ttl > 0 {
		expiresAt = now.Add(sc.ttl)
	}

	if ent, ok := ix.data[key]; ok {
		ix.totalCost -= ent.cost
		ent.value = value
		ent.expiresAt = expiresAt
		ent.cost = sc.cost
	} else {
		ix.data[key] = &entry[V]{
			value:     value,
			expiresAt: expiresAt,
			cost:      sc.cost,
		}
	}
	ix.totalCost += sc.cost
	ix.evictor.onInsert(key)

	gone := ix.evictIfNeeded(key)
	ix.mu.Unlock()

	ix.dispose(gone)
	return nil
}

func (ix *Index[K, V]) evictIfNeeded(keep K) []disposal[K, V] {
	var gone []disposal[K, V]

	for len(ix.data) > ix.cfg.capacity {
		d, ok := ix.evictOne(keep)
		if !ok {
			break
		}
		gone = append(gone, d)
	}

	if ix.cfg.maxCost > 0 {
		for ix.totalCost > ix.cfg.maxCost && len(ix.data) > 0 {
			d, ok := ix.evictOne(keep)
			if !ok {
				break
			}
			gone = append(gone, d)
		}
	}

	return gone
}

func (ix *Index[K, V]) evictOne(keep K) (disposal[K, V], bool) {
	key, ok := ix.evictor.evict(keep)
	if !ok {
		return disposal[K, V]{}, false
	}
	ent, ok := ix.data[key]
	if !ok {
		return disposal[K, V]{}, false
	}
	ix.totalCost -= ent.cost
	delete(ix.data, key)
	return disposal[K, V]{key: key, value: ent.value, reason: Evicted}, true
}

// remove deletes key without disposing it. Callers hold the write lock.
func (ix *Index[K, V]) remove(key K) (*entry[V], bool) {
	ent, ok := ix.data[key]
	if !ok {
		return nil, false
	}
	ix.totalCost -= ent.cost
	delete(ix.data, key)
	ix.evictor.remove(key)
	return ent, true
}

// Get returns the value for a live key and records the access for the
// eviction policy. An expired key is removed and disposed.
func (ix *Index[K, V]) Get(key K) (V, bool) {
	var zero V

	ix.mu.Lock()
	ent, ok := ix.data[key]
	if !ok {
		ix.mu.Unlock()
		return zero, false
	}

	if ent.isExpired(ix.cfg.clock.Now()) {
		ix.remove(key)
		ix.mu.Unlock()
		ix.dispose([]disposal[K, V]{{key: key, value: ent.value, reason: Expired}})
		return zero, false
	}

	ix.evictor.onAccess(key)
	v := ent.value
	ix.mu.Unlock()
	return v, true
}

// Has reports whether key is present and not expired. It does not modify
// the index.
func (ix *Index[K, V]) Has(key K) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ent, ok := ix.data[key]
	if !ok {
		return false
	}
	return !ent.isExpired(ix.cfg.clock.Now())
}

// Delete removes key and disposes it. It reports whether key was present.
func (ix *Index[K, V]) Delete(key K) bool {
	ix.mu.Lock()
	ent, ok := ix.remove(key)
	ix.mu.Unlock()

	if !ok {
		return false
	}
	ix.dispose([]disposal[K, V]{{key: key, value: ent.value, reason: Deleted}})
	return true
}

// Clear removes every entry, disposing each one before returning.
func (ix *Index[K, V]) Clear() {
	ix.mu.Lock()
	gone := make([]disposal[K, V], 0, len(ix.data))
	for k, ent := range ix.data {
		gone = append(gone, disposal[K, V]{key: k, value: ent.value, reason: Cleared})
	}
	ix.data = make(map[K]*entry[V])
	ix.evictor = newEvictor[K](ix.cfg.policy)
	ix.totalCost = 0
	ix.mu.Unlock()

	ix.dispose(gone)
}

// PurgeExpired removes and disposes every expired entry. It returns the
// number of entries removed.
func (ix *Index[K, V]) PurgeExpired() int {
	ix.mu.Lock()
	now := ix.cfg.clock.Now()
	var gone []disposal[K, V]
	for k, ent := range ix.data {
		if ent.isExpired(now) {
			gone = append(gone, disposal[K, V]{key: k, value: ent.value, reason: Expired})
		}
	}
	for _, d := range gone {
		ix.remove(d.key)
	}
	ix.mu.Unlock()

	ix.dispose(gone)
	return len(gone)
}

// Len returns the number of entries in the index.
// May include expired entries that haven't been purged yet.
func (ix *Index[K, V]) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return len(ix.data)
}

// RemainingTTL returns the time left before key expires, NoExpiry for keys
// without a TTL, and 0 for absent or expired keys.
func (ix *Index[K, V]) RemainingTTL(key K) time.Duration {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ent, ok := ix.data[key]
	if !ok {
		return 0
	}
	return ent.remaining(ix.cfg.clock.Now())
}

// Keys returns a lazy sequence over the live keys.
func (ix *Index[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range ix.Entries() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values returns a lazy sequence over the values of live keys.
func (ix *Index[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range ix.Entries() {
			if !yield(v) {
				return
			}
		}
	}
}

// Entries returns a lazy sequence over live key/value pairs.
// The key set is captured when iteration starts; each key is re-checked
// before it is yielded, so keys removed or expired meanwhile are skipped.
// Iteration never modifies the index.
func (ix *Index[K, V]) Entries() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		ix.mu.RLock()
		keys := make([]K, 0, len(ix.data))
		for k := range ix.data {
			keys = append(keys, k)
		}
		ix.mu.RUnlock()

		for _, k := range keys {
			v, ok := ix.peek(k)
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

func (ix *Index[K, V]) peek(key K) (V, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var zero V
	ent, ok := ix.data[key]
	if !ok || ent.isExpired(ix.cfg.clock.Now()) {
		return zero, false
	}
	return ent.value, true
}

// Close stops the background purge loop, if any. Entries are left in place.
func (ix *Index[K, V]) Close() {
	ix.closeOnce.Do(func() {
		if ix.stop != nil {
			ix.stop()
		}
		ix.wg.Wait()
	})
}

func (ix *Index[K, V]) dispose(batch []disposal[K, V]) {
	fn := ix.cfg.dispose
	if fn == nil || len(batch) == 0 {
		return
	}

	if len(batch) == 1 || ix.cfg.disposeConcurrency <= 1 {
		for _, d := range batch {
			fn(d.value, d.key, d.reason)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(ix.cfg.disposeConcurrency)
	for _, d := range batch {
		g.Go(func() error {
			fn(d.value, d.key, d.reason)
			return nil
		})
	}
	_ = g.Wait()
}
