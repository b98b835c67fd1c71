package signal

import (
	"encoding/json"
	"fmt"
)

// SmoothTime is the span, in seconds, of the triangular smoothing window
// applied around each discrete step transition. Inside the window the
// reported position ramps linearly between the half-step and full-step
// positions instead of jumping.
const SmoothTime = 0.010

// StepEvent is one physical step derived from the compressed step stream:
// the step time, the position halfway through the step, and the settled
// position after it.
type StepEvent struct {
	Time    float64
	HalfPos float64
	Pos     float64
}

// stepBlock is one compressed block of step pulses. Data entries are
// [interval, count, add] triples of clock ticks; negative counts step in
// the negative direction.
type stepBlock struct {
	FirstStepTime float64    `json:"first_step_time"`
	LastStepTime  float64    `json:"last_step_time"`
	FirstClock    int64      `json:"first_clock"`
	LastClock     int64      `json:"last_clock"`
	StepDistance  float64    `json:"step_distance"`
	StartPosition float64    `json:"start_position"`
	Data          [][3]int64 `json:"data"`
}

// StepQueue reconstructs a stepper's physical position from its step
// stream.
//
// Clock ticks are converted to time with a per-block linear calibration
// derived from the block's first/last step time and clock; a degenerate
// zero-duration block uses a zero rate. Consecutive step events strictly
// increase in time, and the buffer always retains one trailing event as a
// lookback anchor for smoothing across block refills.
type StepQueue struct {
	puller Puller
	msgID  string
	steps  []StepEvent
	pos    int
}

var _ Handler = (*StepQueue)(nil)

// NewStepQueue creates a step queue handler for one message stream.
func NewStepQueue(p Puller, msgID string) *StepQueue {
	return &StepQueue{
		puller: p,
		msgID:  msgID,
		steps:  []StepEvent{{}, {}}, // zero state until data arrives
	}
}

// Describe returns the position dataset for this stepper.
func (h *StepQueue) Describe(parts []string) (Description, error) {
	return Description{
		Label: fmt.Sprintf("%s position", parts[1]),
		Units: UnitPosition,
		Query: h.Position,
	}, nil
}

// Position returns the smoothed physical position at reqTime.
//
// When the gap between two steps is within the smoothing window the value
// ramps linearly between their half-step positions; otherwise the ramp is
// applied in a half-window around each step transition and the settled
// position is held in between.
func (h *StepQueue) Position(reqTime float64) float64 {
	for {
		next := h.steps[h.pos+1]
		if reqTime >= next.Time {
			if h.pos+2 < len(h.steps) {
				h.pos++

				continue
			}
			h.pullBlock(reqTime)

			continue
		}
		last := h.steps[h.pos]
		rtdiff := reqTime - last.Time
		stime := next.Time - last.Time
		if stime <= SmoothTime {
			return last.HalfPos + rtdiff*(next.HalfPos-last.HalfPos)/stime
		}
		half := 0.5 * SmoothTime
		if rtdiff < half {
			return last.HalfPos + rtdiff*(last.Pos-last.HalfPos)/half
		}
		if ntdiff := next.Time - reqTime; ntdiff < half {
			return next.HalfPos + ntdiff*(last.Pos-next.HalfPos)/half
		}

		return last.Pos
	}
}

// pullBlock reads blocks until one containing reqTime arrives and expands
// it into step events. At end of data a synthetic hold event past reqTime
// is appended so further queries settle on the final position.
func (h *StepQueue) pullBlock(reqTime float64) {
	h.steps = h.steps[len(h.steps)-1:] // keep the lookback anchor
	h.pos = 0

	var block stepBlock
	for {
		msg, err := h.puller.Pull(reqTime, h.msgID)
		if err != nil || msg == nil {
			last := h.steps[0]
			h.steps = append(h.steps, StepEvent{
				Time:    reqTime + 0.1,
				HalfPos: last.Pos,
				Pos:     last.Pos,
			})

			return
		}
		if err := json.Unmarshal(msg, &block); err != nil || len(block.Data) == 0 {
			continue
		}
		if reqTime <= block.LastStepTime {
			break
		}
	}

	stepClock := block.FirstClock - block.Data[0][0]
	invFreq := 0.0
	if cdiff := block.LastClock - block.FirstClock; cdiff != 0 {
		invFreq = (block.LastStepTime - block.FirstStepTime) / float64(cdiff)
	}
	stepPos := block.StartPosition
	for _, entry := range block.Data {
		interval, count, add := entry[0], entry[1], entry[2]
		dist := block.StepDistance
		if count < 0 {
			dist = -dist
			count = -count
		}
		for range count {
			stepClock += interval
			interval += add
			stepTime := block.FirstStepTime + float64(stepClock-block.FirstClock)*invFreq
			h.steps = append(h.steps, StepEvent{
				Time:    stepTime,
				HalfPos: stepPos + 0.5*dist,
				Pos:     stepPos + dist,
			})
			stepPos += dist
		}
	}
}
