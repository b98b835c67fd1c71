package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4Stream decompresses LZ4 frame log streams.
//
// LZ4 frames are self-contained, so resuming at an index offset uses the
// same decoding path as opening a fresh stream.
type LZ4Stream struct {
	zr *lz4.Reader
}

var _ StreamDecompressor = (*LZ4Stream)(nil)

// NewLZ4Stream creates an LZ4 stream decompressor. Bind it to a source with
// OpenStream or ResumeStream before reading.
func NewLZ4Stream() *LZ4Stream {
	return &LZ4Stream{}
}

// OpenStream starts decoding an LZ4 frame stream from r.
func (l *LZ4Stream) OpenStream(r io.Reader) error {
	if l.zr != nil {
		l.zr.Reset(r)

		return nil
	}
	l.zr = lz4.NewReader(r)

	return nil
}

// ResumeStream restarts decoding at a frame boundary.
func (l *LZ4Stream) ResumeStream(r io.Reader) error {
	return l.OpenStream(r)
}

// Read returns decompressed bytes.
func (l *LZ4Stream) Read(p []byte) (int, error) {
	if l.zr == nil {
		return 0, io.EOF
	}

	return l.zr.Read(p)
}

// Close releases the decoder. The underlying source is left open.
func (l *LZ4Stream) Close() error {
	l.zr = nil

	return nil
}
