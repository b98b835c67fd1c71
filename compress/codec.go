package compress

import (
	"io"
	"strings"

	"github.com/arloliu/motan/errs"
	"github.com/arloliu/motan/format"
)

// StreamDecompressor decompresses an append-only byte stream incrementally.
//
// A decompressor is bound to at most one underlying source at a time and is
// not safe for concurrent use; each log stream has exactly one logical
// consumer.
type StreamDecompressor interface {
	io.Reader

	// OpenStream starts decompression at the beginning of a stream,
	// consuming the stream header if the format has one.
	OpenStream(r io.Reader) error

	// ResumeStream restarts decompression mid-stream at a compressor flush
	// boundary, discarding any previously buffered decompression state.
	// The caller guarantees r is positioned at such a boundary.
	ResumeStream(r io.Reader) error

	// Close releases decompressor resources. The underlying source is not
	// closed.
	Close() error
}

// NewStreamDecompressor creates a decompressor for the given compression type.
//
// Returns:
//   - StreamDecompressor: New decompressor, not yet bound to a source
//   - error: errs.ErrUnknownCompression for unrecognized types
func NewStreamDecompressor(typ format.CompressionType) (StreamDecompressor, error) {
	switch typ {
	case format.CompressionNone:
		return NewNoOpStream(), nil
	case format.CompressionGzip:
		return NewGzipStream(), nil
	case format.CompressionZstd:
		return NewZstdStream(), nil
	case format.CompressionLZ4:
		return NewLZ4Stream(), nil
	default:
		return nil, errs.ErrUnknownCompression
	}
}

// Detect infers the compression type of a log file from its name extension.
// Unrecognized extensions map to format.CompressionNone.
func Detect(path string) format.CompressionType {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return format.CompressionGzip
	case strings.HasSuffix(path, ".zst"):
		return format.CompressionZstd
	case strings.HasSuffix(path, ".lz4"):
		return format.CompressionLZ4
	default:
		return format.CompressionNone
	}
}
