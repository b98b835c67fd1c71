// Package format defines the wire-level types of motan measurement logs.
//
// A log session consists of two streaming-compressed byte sequences: the main
// stream of multiplexed, 0x03-delimited JSON frames, and a parallel index
// stream whose frames checkpoint the session status together with a byte
// offset into the main stream.
package format

import "encoding/json"

type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents an uncompressed stream.
	CompressionGzip CompressionType = 0x2 // CompressionGzip represents a gzip-wrapped deflate stream.
	CompressionZstd CompressionType = 0x3 // CompressionZstd represents a Zstandard stream.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents an LZ4 frame stream.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionGzip:
		return "Gzip"
	case CompressionZstd:
		return "Zstd"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// FrameDelimiter terminates every frame in a log stream. It cannot occur
// inside a well-formed frame payload.
const FrameDelimiter = 0x03

// QueueStatus is the reserved queue id carrying periodic status snapshots.
const QueueStatus = "status"

// Record is one decoded frame.
//
// Main-stream frames carry a queue id and an opaque params payload; status
// frames additionally carry the toolhead time used as the dispatcher
// watermark. Index-stream frames instead carry a status snapshot and the
// byte offset of that checkpoint in the main stream.
type Record struct {
	Queue        string          `json:"q,omitempty"`
	Params       json.RawMessage `json:"params,omitempty"`
	Toolhead     *ToolheadTime   `json:"toolhead,omitempty"`
	Status       *Status         `json:"status,omitempty"`
	FilePosition int64           `json:"file_position,omitempty"`
}

// ToolheadTime is the frame-level toolhead timing block of status frames.
// EstimatedPrintTime is a pointer so that its absence can be detected.
type ToolheadTime struct {
	EstimatedPrintTime *float64 `json:"estimated_print_time,omitempty"`
}

// Status is a session status snapshot as recorded in the index stream.
type Status struct {
	Toolhead   ToolheadStatus `json:"toolhead"`
	Configfile ConfigStatus   `json:"configfile"`
}

// ToolheadStatus holds the toolhead timing fields of a status snapshot. The
// effective time of a checkpoint is the larger of the two fields.
type ToolheadStatus struct {
	EstimatedPrintTime float64 `json:"estimated_print_time"`
	PrintTime          float64 `json:"print_time"`
}

// ConfigStatus holds the configuration portion of a status snapshot.
type ConfigStatus struct {
	Settings SettingsStatus `json:"settings"`
}

type SettingsStatus struct {
	Printer PrinterStatus `json:"printer"`
}

type PrinterStatus struct {
	Kinematics string `json:"kinematics"`
}
