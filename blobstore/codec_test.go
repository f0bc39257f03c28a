package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodecs_RoundTrip(t *testing.T) {
	in := payload{
		Name:  strings.Repeat("compressible ", 64),
		Count: 7,
		Tags:  []string{"x", "y", "z"},
		Attrs: map[string]string{"a": "1"},
	}

	codecs := []Codec{JSON{}, GoJSON{}, Zstd(JSON{}), Zstd(nil), LZ4(GoJSON{}), LZ4(nil)}
	for _, c := range codecs {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out payload
			require.NoError(t, c.Unmarshal(data, &out))
			require.Equal(t, in, out)
		})
	}
}

func TestCodecs_Compress(t *testing.T) {
	in := strings.Repeat("a", 4096)

	plain, err := JSON{}.Marshal(in)
	require.NoError(t, err)

	for _, c := range []Codec{Zstd(JSON{}), LZ4(JSON{})} {
		data, err := c.Marshal(in)
		require.NoError(t, err)
		require.Less(t, len(data), len(plain), c.Name())
	}
}

func TestCodecs_CorruptInput(t *testing.T) {
	for _, c := range []Codec{GoJSON{}, Zstd(nil), LZ4(nil)} {
		var out payload
		require.Error(t, c.Unmarshal([]byte("definitely not valid"), &out), c.Name())
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json", "zstd+json", "zstd+go-json", "lz4+json", "lz4+go-json"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		require.Equal(t, name, c.Name())
	}

	_, ok := ByName("gob")
	require.False(t, ok)
}

func TestStore_CompressedCodec(t *testing.T) {
	root := t.TempDir()
	store := New(root, WithCodec(Zstd(nil)))
	ctx := context.Background()
	path := filepath.Join(root, "ff", "blob")

	require.NoError(t, store.Write(ctx, path, []int{1, 2, 3}))

	var out []int
	ok, err := store.Read(ctx, path, &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []int{1, 2, 3}, out)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEqual(t, byte('['), raw[0], "stored bytes are compressed")
}
