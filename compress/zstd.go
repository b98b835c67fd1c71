//go:build !gozstd

package compress

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// ZstdStream decompresses Zstandard log streams.
//
// This is the pure Go implementation. Build with the "gozstd" tag to use the
// cgo implementation instead.
//
// Zstd frames are self-contained, so resuming at an index offset uses the
// same decoding path as opening a fresh stream.
type ZstdStream struct {
	dec *zstd.Decoder
}

var _ StreamDecompressor = (*ZstdStream)(nil)

// NewZstdStream creates a zstd stream decompressor. Bind it to a source with
// OpenStream or ResumeStream before reading.
func NewZstdStream() *ZstdStream {
	return &ZstdStream{}
}

// OpenStream starts decoding a zstd stream from r.
func (z *ZstdStream) OpenStream(r io.Reader) error {
	if z.dec != nil {
		return z.dec.Reset(r)
	}

	dec, err := zstd.NewReader(r,
		zstd.WithDecoderConcurrency(1), // single logical consumer per stream
		zstd.WithDecoderLowmem(false),
	)
	if err != nil {
		return err
	}
	z.dec = dec

	return nil
}

// ResumeStream restarts decoding at a frame boundary.
func (z *ZstdStream) ResumeStream(r io.Reader) error {
	return z.OpenStream(r)
}

// Read returns decompressed bytes.
func (z *ZstdStream) Read(p []byte) (int, error) {
	if z.dec == nil {
		return 0, io.EOF
	}

	return z.dec.Read(p)
}

// Close releases the decoder. The underlying source is left open.
func (z *ZstdStream) Close() error {
	if z.dec != nil {
		z.dec.Close()
		z.dec = nil
	}

	return nil
}
