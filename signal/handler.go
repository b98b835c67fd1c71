// Package signal reconstructs continuous physical signals from queued log
// records.
//
// Each handler is a state machine over one message stream: it pulls records
// from its dispatcher queue on demand and converts them into a continuous
// query function value(t). Query times must be non-decreasing per handler
// instance; handlers advance an internal cursor only forward, and a
// regressed query time is answered from the current cursor position without
// rewinding.
package signal

import "encoding/json"

// Unit strings attached to dataset descriptions. Derived analyzers compare
// these to decide result labels, so they must match exactly.
const (
	UnitPosition     = "Position\n(mm)"
	UnitVelocity     = "Velocity\n(mm/s)"
	UnitAcceleration = "Acceleration\n(mm/s^2)"
)

// Puller pulls the next queued record payload for a message id. It is
// implemented by *dispatch.Dispatcher.
//
// A nil payload with a nil error means no further relevant data exists for
// the requested time; handlers respond with their fallback value rather
// than failing.
type Puller interface {
	Pull(reqTime float64, queueID string) (json.RawMessage, error)
}

// QueryFunc samples a reconstructed signal at the given time.
type QueryFunc func(reqTime float64) float64

// Description describes one queryable dataset produced by a handler.
type Description struct {
	Label string
	Units string
	Query QueryFunc
}

// Handler is a stateful decoder for one message stream.
type Handler interface {
	// Describe validates the dataset name parts and returns the description
	// for the selected signal. Invalid selections fail here, at setup time.
	Describe(parts []string) (Description, error)
}

// Kind describes one of the built-in raw handler kinds.
type Kind struct {
	// MessageParts is how many leading name parts form the message id
	// shared by all datasets of one underlying stream.
	MessageParts int
	// TotalParts is the exact number of colon-separated parts a dataset
	// name of this kind must have.
	TotalParts int
	// New creates the handler for one message id.
	New func(p Puller, msgID string) Handler
}

// Kinds maps the raw dataset kind token to its handler kind.
var Kinds = map[string]Kind{
	"trapq": {
		MessageParts: 2,
		TotalParts:   3,
		New:          func(p Puller, msgID string) Handler { return NewMotionQueue(p, msgID) },
	},
	"stepq": {
		MessageParts: 2,
		TotalParts:   2,
		New:          func(p Puller, msgID string) Handler { return NewStepQueue(p, msgID) },
	},
	"adxl345": {
		MessageParts: 2,
		TotalParts:   3,
		New:          func(p Puller, msgID string) Handler { return NewAccelerometer(p, msgID) },
	},
	"angle": {
		MessageParts: 2,
		TotalParts:   2,
		New:          func(p Puller, msgID string) Handler { return NewAngle(p, msgID) },
	},
}

// axisIndex maps an axis letter to its coordinate index.
func axisIndex(name string) (int, bool) {
	switch name {
	case "x":
		return 0, true
	case "y":
		return 1, true
	case "z":
		return 2, true
	default:
		return 0, false
	}
}
