//go:build gozstd

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

// ZstdStream decompresses Zstandard log streams.
//
// This is the cgo implementation, selected by the "gozstd" build tag.
//
// Zstd frames are self-contained, so resuming at an index offset uses the
// same decoding path as opening a fresh stream.
type ZstdStream struct {
	zr *gozstd.Reader
}

var _ StreamDecompressor = (*ZstdStream)(nil)

// NewZstdStream creates a zstd stream decompressor. Bind it to a source with
// OpenStream or ResumeStream before reading.
func NewZstdStream() *ZstdStream {
	return &ZstdStream{}
}

// OpenStream starts decoding a zstd stream from r.
func (z *ZstdStream) OpenStream(r io.Reader) error {
	if z.zr != nil {
		return z.zr.Reset(r, nil)
	}
	z.zr = gozstd.NewReader(r)

	return nil
}

// ResumeStream restarts decoding at a frame boundary.
func (z *ZstdStream) ResumeStream(r io.Reader) error {
	return z.OpenStream(r)
}

// Read returns decompressed bytes.
func (z *ZstdStream) Read(p []byte) (int, error) {
	if z.zr == nil {
		return 0, io.EOF
	}

	return z.zr.Read(p)
}

// Close releases the decoder's C resources. The underlying source is left
// open.
func (z *ZstdStream) Close() error {
	if z.zr != nil {
		z.zr.Release()
		z.zr = nil
	}

	return nil
}
