package stashfs

import (
	"context"
	"strconv"
	"testing"

	"github.com/bjaus/stashfs/blobstore"
	"github.com/bjaus/stashfs/ttlindex"
)

func benchCache(b *testing.B, opts ...Option[string, int]) *Cache[string, int] {
	b.Helper()
	base := []Option[string, int]{
		WithDirectory[string, int](b.TempDir()),
		WithDeleteOnStart[string, int](false),
		WithLogger[string, int](nil),
	}
	c, err := Open(append(base, opts...)...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = c.Close() })
	return c
}

func BenchmarkCache_Get(b *testing.B) {
	ctx := context.Background()
	cache := benchCache(b)

	keys := make([]string, 100)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
		_ = cache.Set(ctx, keys[i], i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Get(ctx, keys[i%100])
	}
}

func BenchmarkCache_Set(b *testing.B) {
	ctx := context.Background()
	cache := benchCache(b, WithCapacity[string, int](b.N+1))

	keys := make([]string, b.N)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cache.Set(ctx, keys[i], i)
	}
}

func BenchmarkCache_SetWithEviction(b *testing.B) {
	ctx := context.Background()
	cache := benchCache(b, WithCapacity[string, int](100))

	keys := make([]string, b.N)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cache.Set(ctx, keys[i], i)
	}
}

func BenchmarkCache_Parallel(b *testing.B) {
	ctx := context.Background()
	cache := benchCache(b)

	keys := make([]string, 100)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
		_ = cache.Set(ctx, keys[i], i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%2 == 0 {
				cache.Get(ctx, keys[i%100])
			} else {
				_ = cache.Set(ctx, keys[i%100], i)
			}
			i++
		}
	})
}

func BenchmarkCache_Policies(b *testing.B) {
	policies := []struct {
		name   string
		policy ttlindex.Policy
	}{
		{"LRU", ttlindex.LRU},
		{"LFU", ttlindex.LFU},
		{"FIFO", ttlindex.FIFO},
	}

	for _, tc := range policies {
		b.Run(tc.name, func(b *testing.B) {
			ctx := context.Background()
			cache := benchCache(b,
				WithCapacity[string, int](100),
				WithPolicy[string, int](tc.policy),
			)

			keys := make([]string, 200)
			for i := range keys {
				keys[i] = strconv.Itoa(i)
			}

			for i := 0; i < 100; i++ {
				_ = cache.Set(ctx, keys[i], i)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				key := keys[i%200]
				if !cache.Has(key) {
					_ = cache.Set(ctx, key, i)
				}
			}
		})
	}
}

func BenchmarkCache_Codecs(b *testing.B) {
	codecs := []blobstore.Codec{blobstore.JSON{}, blobstore.GoJSON{}, blobstore.Zstd(nil), blobstore.LZ4(nil)}

	for _, codec := range codecs {
		b.Run(codec.Name(), func(b *testing.B) {
			ctx := context.Background()
			cache := benchCache(b, WithCodec[string, int](codec))

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				key := strconv.Itoa(i % 100)
				_ = cache.Set(ctx, key, i)
				cache.Get(ctx, key)
			}
		})
	}
}
