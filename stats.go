package stashfs

import (
	"sync/atomic"

	"github.com/bjaus/stashfs/ttlindex"
)

// Stats holds cache statistics using atomic counters for lock-free updates.
type Stats struct {
	hits         atomic.Int64
	misses       atomic.Int64
	evictions    atomic.Int64
	expirations  atomic.Int64
	deletions    atomic.Int64
	writeErrors  atomic.Int64
	removeErrors atomic.Int64
}

func (s *Stats) hit()         { s.hits.Add(1) }
func (s *Stats) miss()        { s.misses.Add(1) }
func (s *Stats) writeError()  { s.writeErrors.Add(1) }
func (s *Stats) removeError() { s.removeErrors.Add(1) }

func (s *Stats) disposed(r ttlindex.Reason) {
	switch r {
	case ttlindex.Evicted:
		s.evictions.Add(1)
	case ttlindex.Expired:
		s.expirations.Add(1)
	default:
		s.deletions.Add(1)
	}
}

// Snapshot is a point-in-time copy of cache statistics.
type Snapshot struct {
	// Hits and Misses count Get and GetOrLoad reads from disk.
	Hits   int64
	Misses int64
	// Evictions, Expirations and Deletions count entries leaving the
	// index by capacity pressure, TTL, and Delete or Clear.
	Evictions   int64
	Expirations int64
	Deletions   int64
	// WriteErrors counts failed Set calls; RemoveErrors counts files that
	// could not be removed on disposal.
	WriteErrors  int64
	RemoveErrors int64
}

// HitRate returns the cache hit rate as a value between 0 and 1.
// Returns 0 if there have been no accesses.
func (s Snapshot) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Snapshot returns a point-in-time copy of the stats.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Hits:         s.hits.Load(),
		Misses:       s.misses.Load(),
		Evictions:    s.evictions.Load(),
		Expirations:  s.expirations.Load(),
		Deletions:    s.deletions.Load(),
		WriteErrors:  s.writeErrors.Load(),
		RemoveErrors: s.removeErrors.Load(),
	}
}
