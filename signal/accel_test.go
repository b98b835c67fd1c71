package signal

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/motan/errs"
)

func accelBlockJSON(t *testing.T, rows [][4]float64) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"data": rows})
	require.NoError(t, err)

	return string(raw)
}

func TestAccelerometer_Describe(t *testing.T) {
	h := NewAccelerometer(&stubPuller{}, "adxl345:adxl345")
	desc, err := h.Describe([]string{"adxl345", "adxl345", "x"})
	require.NoError(t, err)
	assert.Equal(t, "adxl345 x acceleration", desc.Label)
	assert.Equal(t, UnitAcceleration, desc.Units)
}

func TestAccelerometer_UnknownAxis(t *testing.T) {
	h := NewAccelerometer(&stubPuller{}, "adxl345:adxl345")
	_, err := h.Describe([]string{"adxl345", "adxl345", "w"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnknownAxis)

	var serr *errs.SetupError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "w", serr.Token)
}

func TestAccelerometer_Interpolation(t *testing.T) {
	h := NewAccelerometer(&stubPuller{msgs: []string{
		accelBlockJSON(t, [][4]float64{
			{0, 0, 0, 0},
			{1, 10, 20, 30},
		}),
	}}, "adxl345:adxl345")
	desc, err := h.Describe([]string{"adxl345", "adxl345", "x"})
	require.NoError(t, err)

	// Midway between the bracketing samples the value is the linear
	// interpolation; past the final sample the last value is held.
	assert.InDelta(t, 5.0, desc.Query(0.5), 1e-12)
	assert.InDelta(t, 10.0, desc.Query(2.0), 1e-12)
	assert.InDelta(t, 10.0, desc.Query(10.0), 1e-12)
}

func TestAccelerometer_PerAxisValues(t *testing.T) {
	rows := [][4]float64{
		{0, 0, 0, 0},
		{1, 10, 20, 30},
	}
	for i, tt := range []struct {
		axis string
		want float64
	}{
		{"x", 5.0},
		{"y", 10.0},
		{"z", 15.0},
	} {
		h := NewAccelerometer(&stubPuller{msgs: []string{
			accelBlockJSON(t, rows),
		}}, "adxl345:adxl345")
		desc, err := h.Describe([]string{"adxl345", "adxl345", tt.axis})
		require.NoError(t, err)
		assert.InDelta(t, tt.want, desc.Query(0.5), 1e-12, "axis %d", i)
	}
}

func TestAccelerometer_NoData(t *testing.T) {
	h := NewAccelerometer(&stubPuller{}, "adxl345:adxl345")
	desc, err := h.Describe([]string{"adxl345", "adxl345", "x"})
	require.NoError(t, err)
	assert.Zero(t, desc.Query(1.0))
}

func TestAccelerometer_SpansBlocks(t *testing.T) {
	h := NewAccelerometer(&stubPuller{msgs: []string{
		accelBlockJSON(t, [][4]float64{{0, 0, 0, 0}, {1, 10, 0, 0}}),
		accelBlockJSON(t, [][4]float64{{2, 30, 0, 0}}),
	}}, "adxl345:adxl345")
	desc, err := h.Describe([]string{"adxl345", "adxl345", "x"})
	require.NoError(t, err)

	assert.InDelta(t, 5.0, desc.Query(0.5), 1e-12)
	// The bracketing pair straddles the block boundary.
	assert.InDelta(t, 20.0, desc.Query(1.5), 1e-12)
}
