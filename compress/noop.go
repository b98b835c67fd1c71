package compress

import "io"

// NoOpStream passes bytes through unmodified.
//
// It serves uncompressed logs and keeps tests independent of any particular
// compression format.
type NoOpStream struct {
	r io.Reader
}

var _ StreamDecompressor = (*NoOpStream)(nil)

// NewNoOpStream creates a pass-through decompressor. Bind it to a source with
// OpenStream or ResumeStream before reading.
func NewNoOpStream() *NoOpStream {
	return &NoOpStream{}
}

// OpenStream binds the decompressor to r.
func (n *NoOpStream) OpenStream(r io.Reader) error {
	n.r = r

	return nil
}

// ResumeStream binds the decompressor to r. Any byte offset is a valid
// resume point for an uncompressed stream.
func (n *NoOpStream) ResumeStream(r io.Reader) error {
	n.r = r

	return nil
}

// Read returns bytes from the underlying source unmodified.
func (n *NoOpStream) Read(p []byte) (int, error) {
	if n.r == nil {
		return 0, io.EOF
	}

	return n.r.Read(p)
}

// Close unbinds the underlying source without closing it.
func (n *NoOpStream) Close() error {
	n.r = nil

	return nil
}
