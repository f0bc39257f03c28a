package ttlindex

import "time"

// Clock provides time operations for the index.
// The default implementation uses time.Now().
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiry
	cost      int64
}

func (e *entry[V]) isExpired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (e *entry[V]) remaining(now time.Time) time.Duration {
	if e.expiresAt.IsZero() {
		return NoExpiry
	}
	if d := e.expiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
