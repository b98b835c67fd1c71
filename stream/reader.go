// Package stream reads framed records from a compressed measurement log.
//
// A log stream is a streaming-compressed byte sequence whose decompressed
// form is a series of JSON frames, each terminated by the reserved 0x03
// delimiter byte. The Reader decompresses the stream block by block,
// reassembles frames that span block boundaries, and parses each complete
// frame into a format.Record.
package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/arloliu/motan/compress"
	"github.com/arloliu/motan/format"
	"github.com/arloliu/motan/internal/options"
)

// blockSize is the number of decompressed bytes requested per refill.
const blockSize = 8192

// Reader is a lazy, restartable source of parsed log records.
//
// The Reader is not safe for concurrent use; each log stream has exactly one
// logical consumer.
type Reader struct {
	src     io.ReadSeeker
	codec   compress.StreamDecompressor
	logger  *slog.Logger
	closer  io.Closer
	pending [][]byte // complete frames not yet handed out
	partial []byte   // frame bytes awaiting their delimiter
	buf     []byte
	eof     bool
}

// Option is a functional option for the Reader.
type Option = options.Option[*Reader]

// WithLogger sets the logger used for recoverable frame warnings.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(r *Reader) {
		r.logger = logger
	})
}

// NewReader creates a Reader over an already-open byte source.
//
// The codec is bound to src from its current position, which must be the
// start of the stream.
//
// Parameters:
//   - src: Compressed byte source; Seek must reposition it absolutely
//   - codec: Stream decompressor matching the source's compression
//
// Returns:
//   - *Reader: New reader positioned at the first frame
//   - error: Codec binding error
func NewReader(src io.ReadSeeker, codec compress.StreamDecompressor, opts ...Option) (*Reader, error) {
	r := &Reader{
		src:    src,
		codec:  codec,
		logger: slog.Default(),
		buf:    make([]byte, blockSize),
	}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}
	if err := codec.OpenStream(src); err != nil {
		return nil, err
	}

	return r, nil
}

// Open opens the log file at path, inferring its compression from the file
// name extension.
//
// The returned Reader owns the file handle; Close releases it.
func Open(path string, opts ...Option) (*Reader, error) {
	codec, err := compress.NewStreamDecompressor(compress.Detect(path))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f, codec, opts...)
	if err != nil {
		f.Close()

		return nil, err
	}
	r.closer = f

	return r, nil
}

// Next returns the next parsed record, pulling and decompressing further
// blocks from the source as needed.
//
// A malformed frame is skipped with a warning; it does not end the stream.
// At end of source Next returns (nil, nil).
func (r *Reader) Next() (*format.Record, error) {
	for {
		if len(r.pending) > 0 {
			frame := r.pending[0]
			r.pending = r.pending[1:]
			if len(frame) == 0 {
				continue
			}
			rec := new(format.Record)
			if err := json.Unmarshal(frame, rec); err != nil {
				r.logger.Warn("skipping malformed log frame", "error", err)

				continue
			}

			return rec, nil
		}

		if r.eof {
			return nil, nil
		}
		if err := r.refill(); err != nil {
			return nil, fmt.Errorf("log stream read failed: %w", err)
		}
	}
}

// refill decompresses one block and splits it into frames. Bytes after the
// last delimiter are kept as the partial head of the next block.
func (r *Reader) refill() error {
	n, err := r.codec.Read(r.buf)
	if n > 0 {
		data := append(r.partial, r.buf[:n]...)
		parts := bytes.Split(data, []byte{format.FrameDelimiter})
		r.partial = parts[len(parts)-1]
		r.pending = append(r.pending, parts[:len(parts)-1]...)
	}
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return err
		}
		// A trailing frame without its delimiter was cut off mid-write;
		// there is no way to know it is complete, so it is dropped.
		r.partial = nil
		r.eof = true
	}

	return nil
}

// Seek repositions the underlying byte source to offset and resets the
// decompression context to a fresh frame boundary.
//
// Offsets must come from the log index, which records them at compressor
// flush points that coincide with frame boundaries.
func (r *Reader) Seek(offset int64) error {
	if _, err := r.src.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	if err := r.codec.ResumeStream(r.src); err != nil {
		return err
	}
	r.pending = nil
	r.partial = nil
	r.eof = false

	return nil
}

// Close releases the codec and, for readers created with Open, the
// underlying file.
func (r *Reader) Close() error {
	err := r.codec.Close()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
		r.closer = nil
	}

	return err
}
