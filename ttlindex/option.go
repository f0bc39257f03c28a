package ttlindex

import "time"

const (
	// DefaultCapacity is the default maximum number of entries.
	DefaultCapacity = 1000

	// DefaultDisposeConcurrency bounds how many disposals of one batch run at once.
	DefaultDisposeConcurrency = 8
)

type config[K comparable, V any] struct {
	capacity           int
	ttl                time.Duration
	policy             Policy
	costFn             func(V) int64
	maxCost            int64
	clock              Clock
	dispose            DisposeFunc[K, V]
	purgeInterval      time.Duration
	disposeConcurrency int
}

func defaultConfig[K comparable, V any]() config[K, V] {
	return config[K, V]{
		capacity:           DefaultCapacity,
		policy:             LRU,
		clock:              realClock{},
		disposeConcurrency: DefaultDisposeConcurrency,
	}
}

// Option configures an Index.
type Option[K comparable, V any] func(*config[K, V])

// WithCapacity sets the maximum number of entries in the index.
func WithCapacity[K comparable, V any](n int) Option[K, V] {
	return func(c *config[K, V]) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithTTL sets the default time-to-live for entries.
// Zero means entries never expire unless a per-entry TTL is given.
func WithTTL[K comparable, V any](d time.Duration) Option[K, V] {
	return func(c *config[K, V]) {
		if d >= 0 {
			c.ttl = d
		}
	}
}

// WithPolicy sets the eviction policy.
func WithPolicy[K comparable, V any](p Policy) Option[K, V] {
	return func(c *config[K, V]) {
		c.policy = p
	}
}

// WithCost sets a function to compute the default cost of a value.
// Used with WithMaxCost for cost-based eviction.
func WithCost[K comparable, V any](fn func(V) int64) Option[K, V] {
	return func(c *config[K, V]) {
		c.costFn = fn
	}
}

// WithMaxCost sets the maximum total cost of all entries.
func WithMaxCost[K comparable, V any](n int64) Option[K, V] {
	return func(c *config[K, V]) {
		c.maxCost = n
	}
}

// WithClock sets a custom clock for time operations.
// Useful for testing TTL behavior.
func WithClock[K comparable, V any](clk Clock) Option[K, V] {
	return func(c *config[K, V]) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithDispose sets the function invoked for every entry leaving the index,
// whatever the reason.
func WithDispose[K comparable, V any](fn DisposeFunc[K, V]) Option[K, V] {
	return func(c *config[K, V]) {
		c.dispose = fn
	}
}

// WithPurgeInterval starts a background loop that removes expired entries
// every d. Zero disables the loop; expired entries are then removed lazily
// by Get, by capacity pressure, or by an explicit PurgeExpired.
func WithPurgeInterval[K comparable, V any](d time.Duration) Option[K, V] {
	return func(c *config[K, V]) {
		if d >= 0 {
			c.purgeInterval = d
		}
	}
}

// WithDisposeConcurrency bounds the number of dispose calls running in
// parallel while a batch (Clear, PurgeExpired) is disposed.
func WithDisposeConcurrency[K comparable, V any](n int) Option[K, V] {
	return func(c *config[K, V]) {
		if n > 0 {
			c.disposeConcurrency = n
		}
	}
}

type setConfig struct {
	ttl  time.Duration
	cost int64
}

// SetOption overrides index defaults for a single Set.
type SetOption func(*setConfig)

// WithEntryTTL overrides the default TTL for one entry. Zero means no expiry.
func WithEntryTTL(d time.Duration) SetOption {
	return func(c *setConfig) {
		if d >= 0 {
			c.ttl = d
		}
	}
}

// WithEntryCost overrides the computed cost for one entry.
func WithEntryCost(n int64) SetOption {
	return func(c *setConfig) {
		if n > 0 {
			c.cost = n
		}
	}
}
