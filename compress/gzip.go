package compress

import (
	"errors"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// GzipStream decompresses gzip-wrapped deflate log streams.
//
// A stream opened from the start is decoded with the gzip header and wrapper;
// a stream resumed at an index offset is decoded as raw deflate, because the
// logger emits full flush points whose continuations carry no gzip framing.
type GzipStream struct {
	gz  *gzip.Reader
	cur io.ReadCloser
}

var _ StreamDecompressor = (*GzipStream)(nil)

// NewGzipStream creates a gzip stream decompressor. Bind it to a source with
// OpenStream or ResumeStream before reading.
func NewGzipStream() *GzipStream {
	return &GzipStream{}
}

// OpenStream starts decoding a headered gzip stream from r.
func (g *GzipStream) OpenStream(r io.Reader) error {
	if g.gz != nil {
		if err := g.gz.Reset(r); err != nil {
			return err
		}
		g.cur = g.gz

		return nil
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	g.gz = gz
	g.cur = gz

	return nil
}

// ResumeStream restarts decoding at a flush boundary as raw deflate.
func (g *GzipStream) ResumeStream(r io.Reader) error {
	g.cur = flate.NewReader(r)

	return nil
}

// Read returns decompressed bytes. A truncated tail, which is normal for a
// log captured while the machine was still running, is reported as io.EOF.
func (g *GzipStream) Read(p []byte) (int, error) {
	if g.cur == nil {
		return 0, io.EOF
	}
	n, err := g.cur.Read(p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}

	return n, err
}

// Close releases the decoder. The underlying source is left open.
func (g *GzipStream) Close() error {
	if g.cur == nil {
		return nil
	}
	err := g.cur.Close()
	g.cur = nil
	g.gz = nil

	return err
}
