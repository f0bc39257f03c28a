package stashfs

import (
	"context"
	"log/slog"

	"github.com/bjaus/stashfs/ttlindex"
)

// report logs a swallowed storage failure and hands it to the OnError hook.
func (c *Cache[K, V]) report(ctx context.Context, err *StorageError) {
	c.log.WarnContext(ctx, "storage operation failed",
		"op", string(err.Op),
		"key", err.Key,
		"path", err.Path,
		"error", err.Err,
	)
	if c.cfg.onError != nil {
		c.cfg.onError(err)
	}
}

func (c *Cache[K, V]) logDisposal(key string, a Address, reason ttlindex.Reason) {
	c.log.Debug("entry disposed",
		"key", key,
		"path", a.Path,
		"reason", reason.String(),
	)
}

func (c *Cache[K, V]) logWipe(ctx context.Context) {
	c.log.DebugContext(ctx, "cache directory cleared", "path", c.store.Root())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
