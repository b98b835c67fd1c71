// Package compress provides streaming decompression codecs for motan
// measurement logs.
//
// Logs are append-only compressed byte streams written incrementally while a
// machine is running. The codecs in this package therefore differ from block
// codecs in two ways:
//
//  1. Decompression is streaming: the codec reads compressed bytes from an
//     underlying source block by block and never materializes the whole
//     stream in memory.
//  2. Decompression can be resumed mid-stream: the log index records byte
//     offsets at compressor flush points, and a codec restarted at such an
//     offset must decode the continuation without re-reading the stream
//     header.
//
// # Supported formats
//
//   - Gzip (format.CompressionGzip): the default log format. A fresh stream
//     starts with a gzip header; a resumed stream is raw deflate, matching
//     the flush points emitted by the logger.
//   - Zstd (format.CompressionZstd): pure Go decoder by default, with a cgo
//     variant available behind the "gozstd" build tag.
//   - LZ4 (format.CompressionLZ4): LZ4 frame format.
//   - None (format.CompressionNone): pass-through for uncompressed logs.
//
// All codecs implement the StreamDecompressor interface:
//
//	type StreamDecompressor interface {
//	    io.Reader
//	    OpenStream(r io.Reader) error
//	    ResumeStream(r io.Reader) error
//	    Close() error
//	}
package compress
