package signal

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arloliu/motan/errs"
)

// Move is one trapezoidal-velocity motion segment with constant
// acceleration, the unit of motion queue reconstruction.
//
// The wire form is a 6-element JSON array:
// [print_time, move_t, start_v, accel, [x,y,z], [rx,ry,rz]].
type Move struct {
	PrintTime     float64
	Duration      float64
	StartVelocity float64
	Acceleration  float64
	StartPos      [3]float64
	AxesRatio     [3]float64
}

// UnmarshalJSON decodes the positional array form of a move.
func (m *Move) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 6 {
		return fmt.Errorf("move record has %d fields, want 6", len(raw))
	}
	fields := []any{
		&m.PrintTime, &m.Duration, &m.StartVelocity,
		&m.Acceleration, &m.StartPos, &m.AxesRatio,
	}
	for i, field := range fields {
		if err := json.Unmarshal(raw[i], field); err != nil {
			return fmt.Errorf("move field %d: %w", i, err)
		}
	}

	return nil
}

// End returns the print time at which the move completes.
func (m *Move) End() float64 {
	return m.PrintTime + m.Duration
}

type motionBlock struct {
	Data []Move `json:"data"`
}

// motionField selects which signal of a move a query samples. The axis
// variants additionally carry an axis index.
type motionField uint8

const (
	fieldVelocity motionField = iota
	fieldAccel
	fieldAxisPosition
	fieldAxisVelocity
	fieldAxisAccel
)

// MotionQueue reconstructs commanded motion from a motion queue stream.
//
// The buffer always retains an initial sentinel move with print time zero,
// so queries before any data arrives return a defined zero state. Within
// the buffer, print times are non-decreasing across consecutive moves.
type MotionQueue struct {
	puller Puller
	msgID  string
	moves  []Move
	pos    int
}

var _ Handler = (*MotionQueue)(nil)

// NewMotionQueue creates a motion queue handler for one message stream.
func NewMotionQueue(p Puller, msgID string) *MotionQueue {
	return &MotionQueue{
		puller: p,
		msgID:  msgID,
		moves:  []Move{{}}, // zero sentinel
	}
}

// Describe resolves the data selection suffix of a trapq dataset name.
//
// Supported selections: velocity, accel, axis_<a>, axis_<a>_velocity and
// axis_<a>_accel, with <a> one of x, y, z.
func (h *MotionQueue) Describe(parts []string) (Description, error) {
	source := parts[1]
	field, axis, err := parseMotionField(parts[2])
	if err != nil {
		return Description{}, err
	}

	desc := Description{
		Query: func(reqTime float64) float64 {
			return h.sample(reqTime, field, axis)
		},
	}
	axisName := [3]string{"x", "y", "z"}[axis]
	switch field {
	case fieldVelocity:
		desc.Label = fmt.Sprintf("%s velocity", source)
		desc.Units = UnitVelocity
	case fieldAccel:
		desc.Label = fmt.Sprintf("%s acceleration", source)
		desc.Units = UnitAcceleration
	case fieldAxisPosition:
		desc.Label = fmt.Sprintf("%s axis %s position", source, axisName)
		desc.Units = UnitPosition
	case fieldAxisVelocity:
		desc.Label = fmt.Sprintf("%s axis %s velocity", source, axisName)
		desc.Units = UnitVelocity
	case fieldAxisAccel:
		desc.Label = fmt.Sprintf("%s axis %s acceleration", source, axisName)
		desc.Units = UnitAcceleration
	}

	return desc, nil
}

// parseMotionField maps a selection token to its tagged field variant.
func parseMotionField(sel string) (motionField, int, error) {
	switch sel {
	case "velocity":
		return fieldVelocity, 0, nil
	case "accel":
		return fieldAccel, 0, nil
	}
	rest, ok := strings.CutPrefix(sel, "axis_")
	if !ok {
		return 0, 0, errs.Setup(errs.ErrUnknownSelection, sel)
	}
	axisName, suffix, _ := strings.Cut(rest, "_")
	axis, ok := axisIndex(axisName)
	if !ok {
		return 0, 0, errs.Setup(errs.ErrUnknownAxis, axisName)
	}
	switch suffix {
	case "":
		return fieldAxisPosition, axis, nil
	case "velocity":
		return fieldAxisVelocity, axis, nil
	case "accel":
		return fieldAxisAccel, axis, nil
	default:
		return 0, 0, errs.Setup(errs.ErrUnknownSelection, sel)
	}
}

// findMove advances the cursor until the move bracketing reqTime is current,
// pulling further blocks as the buffer runs out. It returns that move and
// whether reqTime falls within the move's extent; when the stream is
// exhausted it returns the last known move with inRange false.
func (h *MotionQueue) findMove(reqTime float64) (Move, bool) {
	for {
		move := h.moves[h.pos]
		if reqTime <= move.End() {
			return move, reqTime >= move.PrintTime
		}
		if h.pos+1 < len(h.moves) {
			h.pos++

			continue
		}
		block, ok := h.pullBlock(reqTime)
		if !ok {
			return move, false
		}
		h.moves = block
		h.pos = 0
	}
}

func (h *MotionQueue) pullBlock(reqTime float64) ([]Move, bool) {
	for {
		msg, err := h.puller.Pull(reqTime, h.msgID)
		if err != nil || msg == nil {
			return nil, false
		}
		var block motionBlock
		if err := json.Unmarshal(msg, &block); err != nil || len(block.Data) == 0 {
			continue
		}

		return block.Data, true
	}
}

// sample evaluates one field of the move bracketing reqTime.
//
// Position integrates the move's velocity profile with the elapsed time
// clamped to [0, duration], so the position holds at the move boundary
// values outside the bracket. Velocity and acceleration are zero outside
// the bracket.
func (h *MotionQueue) sample(reqTime float64, field motionField, axis int) float64 {
	move, inRange := h.findMove(reqTime)
	switch field {
	case fieldVelocity:
		if !inRange {
			return 0
		}

		return move.StartVelocity + move.Acceleration*(reqTime-move.PrintTime)
	case fieldAccel:
		if !inRange {
			return 0
		}

		return move.Acceleration
	case fieldAxisPosition:
		mtime := max(0, min(move.Duration, reqTime-move.PrintTime))
		dist := (move.StartVelocity + 0.5*move.Acceleration*mtime) * mtime

		return move.StartPos[axis] + move.AxesRatio[axis]*dist
	case fieldAxisVelocity:
		if !inRange {
			return 0
		}

		return (move.StartVelocity + move.Acceleration*(reqTime-move.PrintTime)) * move.AxesRatio[axis]
	case fieldAxisAccel:
		if !inRange {
			return 0
		}

		return move.Acceleration * move.AxesRatio[axis]
	default:
		return 0
	}
}
