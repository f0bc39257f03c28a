// Package ttlindex provides a generic in-memory index with TTL expiry,
// capacity and cost bounds, and a disposal hook.
//
// The index only tracks liveness. Whatever resource a value stands for is
// released by the DisposeFunc, which is called once for every entry that
// leaves the index:
//
//	ix := ttlindex.New[string, string](
//		ttlindex.WithCapacity[string, string](1000),
//		ttlindex.WithTTL[string, string](time.Hour),
//		ttlindex.WithDispose(func(path, key string, r ttlindex.Reason) {
//			os.Remove(path)
//		}),
//	)
//	defer ix.Close()
//
// Dispose runs synchronously with respect to the call that removed the
// entry (Set on eviction, Get on lazy expiry, Delete, Clear, PurgeExpired)
// but outside the index lock.
//
// Expired entries are removed lazily by Get and eagerly by PurgeExpired or
// by the background loop enabled with WithPurgeInterval.
package ttlindex
