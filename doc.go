// Package stashfs provides a generic cache whose values live on disk while
// an in-memory index tracks TTL and capacity.
//
// # Overview
//
// Each value is encoded (JSON by default) and written to its own file at
// root/<shard>/<hash>, where hash is the hex MD5 of the key's string form and
// shard is its first two characters. The ttlindex package decides which keys
// are live. Whenever a key leaves the index, by expiry, Delete, capacity
// eviction or Clear, its file is removed. That is the only path that
// reclaims disk space.
//
// # Basic Usage
//
//	ctx := context.Background()
//
//	cache, err := stashfs.Open[string, Report](
//		stashfs.WithDirectory[string, Report]("/var/cache/reports"),
//		stashfs.WithCapacity[string, Report](10_000),
//		stashfs.WithTTL[string, Report](30*time.Minute),
//	)
//	if err != nil {
//		return err
//	}
//	defer cache.Close()
//
//	if err := cache.Set(ctx, "weekly", report); err != nil {
//		return err // the value was not persisted
//	}
//
//	if r, ok := cache.Get(ctx, "weekly"); ok {
//		fmt.Println(r.Title)
//	}
//
// # Reads
//
// Get reads the file directly and never consults the index. A missing,
// truncated or undecodable file is a miss. A file that exists without a live
// index entry, such as one written just before its key was evicted, is still
// served until something removes it.
//
// # Startup
//
// By default Open wipes the root directory in the background, since files
// from an earlier process have no TTL bookkeeping. Open returns before the
// wipe finishes; call WaitReady to make sure early writes are not removed:
//
//	if err := cache.WaitReady(ctx); err != nil {
//		return err
//	}
//
// # Failures
//
// Set is the only operation that returns storage errors. Read failures,
// files that cannot be removed and a failed wipe are logged with log/slog
// and delivered to the OnError hook:
//
//	stashfs.OnError[string, Report](func(err error) {
//		var se *stashfs.StorageError
//		if errors.As(err, &se) {
//			metrics.Increment("cache.storage_error." + string(se.Op))
//		}
//	})
//
// # Thread Safety
//
// All Cache methods are safe for concurrent use. No locking spans the file
// write and the index update, so concurrent Set and Delete of one key may
// leave a file behind that the index no longer tracks.
package stashfs
