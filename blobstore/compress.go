package blobstore

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

type zstdCodec struct {
	inner Codec
}

// Zstd returns a codec that compresses the output of inner with zstd.
// A nil inner uses Default.
func Zstd(inner Codec) Codec {
	if inner == nil {
		inner = Default
	}
	return zstdCodec{inner: inner}
}

func (c zstdCodec) Marshal(v any) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	enc := getZstdEncoder()
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(raw, nil), nil
}

func (c zstdCodec) Unmarshal(data []byte, v any) error {
	dec := getZstdDecoder()
	defer zstdDecoderPool.Put(dec)

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return err
	}
	return c.inner.Unmarshal(raw, v)
}

func (c zstdCodec) Name() string { return "zstd+" + c.inner.Name() }

type lz4Codec struct {
	inner Codec
}

// LZ4 returns a codec that compresses the output of inner with the LZ4
// frame format. A nil inner uses Default.
func LZ4(inner Codec) Codec {
	if inner == nil {
		inner = Default
	}
	return lz4Codec{inner: inner}
}

func (c lz4Codec) Marshal(v any) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c lz4Codec) Unmarshal(data []byte, v any) error {
	raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return err
	}
	return c.inner.Unmarshal(raw, v)
}

func (c lz4Codec) Name() string { return "lz4+" + c.inner.Name() }
