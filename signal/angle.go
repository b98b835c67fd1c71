package signal

import (
	"encoding/json"
	"fmt"
)

// AngleScale converts a raw magnetic angle sensor code to millimeters of
// travel: 40mm of motion per 65536-count revolution.
const AngleScale = 40.0 / 65536

// angleBlock is one angle sensor sample block: [time, raw_angle] rows.
type angleBlock struct {
	Data [][2]float64 `json:"data"`
}

// Angle reconstructs a position from a magnetic angle sensor stream.
//
// Samples bracket the query time the same way accelerometer samples do; the
// interpolated raw code is scaled to physical units with AngleScale. Past
// the final sample the last known value is held.
type Angle struct {
	puller    Puller
	msgID     string
	lastTime  float64
	nextTime  float64
	lastAngle float64
	nextAngle float64
	data      [][2]float64
	pos       int
}

var _ Handler = (*Angle)(nil)

// NewAngle creates an angle sensor handler for one message stream.
func NewAngle(p Puller, msgID string) *Angle {
	return &Angle{puller: p, msgID: msgID}
}

// Describe returns the position dataset for this sensor.
func (h *Angle) Describe(parts []string) (Description, error) {
	return Description{
		Label: fmt.Sprintf("%s position", parts[1]),
		Units: UnitPosition,
		Query: h.Position,
	}, nil
}

// Position returns the sensed position at reqTime.
func (h *Angle) Position(reqTime float64) float64 {
	for {
		if reqTime <= h.nextTime {
			tdiff := h.nextTime - h.lastTime
			if tdiff <= 0 {
				return h.nextAngle * AngleScale
			}
			pdiff := h.nextAngle - h.lastAngle

			return (h.lastAngle + (reqTime-h.lastTime)*pdiff/tdiff) * AngleScale
		}
		if h.pos >= len(h.data) {
			block, ok := h.pullBlock(reqTime)
			if !ok {
				return h.nextAngle * AngleScale
			}
			h.data = block
			h.pos = 0

			continue
		}
		sample := h.data[h.pos]
		h.pos++
		h.lastAngle = h.nextAngle
		h.lastTime = h.nextTime
		h.nextTime = sample[0]
		h.nextAngle = sample[1]
	}
}

func (h *Angle) pullBlock(reqTime float64) ([][2]float64, bool) {
	for {
		msg, err := h.puller.Pull(reqTime, h.msgID)
		if err != nil || msg == nil {
			return nil, false
		}
		var block angleBlock
		if err := json.Unmarshal(msg, &block); err != nil || len(block.Data) == 0 {
			continue
		}

		return block.Data, true
	}
}
