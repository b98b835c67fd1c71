package signal

import (
	"encoding/json"
	"fmt"

	"github.com/arloliu/motan/errs"
)

// accelBlock is one accelerometer sample block: [time, x, y, z] rows.
type accelBlock struct {
	Data [][4]float64 `json:"data"`
}

// Accelerometer reconstructs per-axis acceleration from an accelerometer
// sample stream.
//
// The last two observed samples bracket the query time; values in between
// are linearly interpolated. Past the final sample the last known value is
// held, and before any sample the value is zero.
type Accelerometer struct {
	puller   Puller
	msgID    string
	lastTime float64
	nextTime float64
	last     [3]float64
	next     [3]float64
	data     [][4]float64
	pos      int
}

var _ Handler = (*Accelerometer)(nil)

// NewAccelerometer creates an accelerometer handler for one message stream.
func NewAccelerometer(p Puller, msgID string) *Accelerometer {
	return &Accelerometer{puller: p, msgID: msgID}
}

// Describe resolves the axis suffix of an accelerometer dataset name.
func (h *Accelerometer) Describe(parts []string) (Description, error) {
	axis, ok := axisIndex(parts[2])
	if !ok {
		return Description{}, errs.Setup(errs.ErrUnknownAxis, parts[2])
	}

	return Description{
		Label: fmt.Sprintf("%s %s acceleration", parts[1], parts[2]),
		Units: UnitAcceleration,
		Query: func(reqTime float64) float64 {
			return h.sample(reqTime, axis)
		},
	}, nil
}

func (h *Accelerometer) sample(reqTime float64, axis int) float64 {
	for {
		if reqTime <= h.nextTime {
			tdiff := h.nextTime - h.lastTime
			if tdiff <= 0 {
				return h.next[axis]
			}
			adiff := h.next[axis] - h.last[axis]

			return h.last[axis] + (reqTime-h.lastTime)*adiff/tdiff
		}
		if h.pos >= len(h.data) {
			block, ok := h.pullBlock(reqTime)
			if !ok {
				// Constant extrapolation past the end of data; zero if no
				// sample was ever seen.
				return h.next[axis]
			}
			h.data = block
			h.pos = 0

			continue
		}
		sample := h.data[h.pos]
		h.pos++
		h.last = h.next
		h.lastTime = h.nextTime
		h.nextTime = sample[0]
		h.next = [3]float64{sample[1], sample[2], sample[3]}
	}
}

func (h *Accelerometer) pullBlock(reqTime float64) ([][4]float64, bool) {
	for {
		msg, err := h.puller.Pull(reqTime, h.msgID)
		if err != nil || msg == nil {
			return nil, false
		}
		var block accelBlock
		if err := json.Unmarshal(msg, &block); err != nil || len(block.Data) == 0 {
			continue
		}

		return block.Data, true
	}
}
