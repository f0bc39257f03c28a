package ttlindex

// Reason describes why an entry left the index.
type Reason int

const (
	// Expired means the entry outlived its TTL.
	Expired Reason = iota
	// Deleted means the entry was removed with Delete.
	Deleted
	// Evicted means the entry was removed to satisfy the capacity or cost bound.
	Evicted
	// Cleared means the entry was removed by Clear.
	Cleared
)

func (r Reason) String() string {
	switch r {
	case Expired:
		return "expired"
	case Deleted:
		return "deleted"
	case Evicted:
		return "evicted"
	case Cleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// DisposeFunc is called once for every entry that leaves the index.
// It runs after the index lock is released, so it may call back into the index.
type DisposeFunc[K comparable, V any] func(value V, key K, reason Reason)

type disposal[K comparable, V any] struct {
	key    K
	value  V
	reason Reason
}
