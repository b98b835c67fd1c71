package motan

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/motan/errs"
	"github.com/arloliu/motan/format"
)

// writeTestLog writes a synthetic half-second session: the toolhead moves at
// a constant 1mm/s along X while stepper_x follows with 0.01mm steps every
// 10ms.
func writeTestLog(t *testing.T) string {
	t.Helper()

	var steps [][3]int64
	steps = append(steps, [3]int64{10, 199, 0})

	docs := []any{
		map[string]any{
			"q":        "status",
			"params":   map[string]any{},
			"toolhead": map[string]any{"estimated_print_time": 0.0},
		},
		map[string]any{
			"q": "trapq:toolhead",
			"params": map[string]any{"data": [][6]any{
				{0.0, 2.0, 1.0, 0.0, []float64{0, 0, 0}, []float64{1, 0, 0}},
			}},
		},
		map[string]any{
			"q": "stepq:stepper_x",
			"params": map[string]any{
				"first_step_time": 0.005,
				"last_step_time":  1.985,
				"first_clock":     5,
				"last_clock":      1985,
				"step_distance":   0.01,
				"start_position":  0.0,
				"data":            steps,
			},
		},
	}
	index := []any{
		map[string]any{
			"status": map[string]any{
				"toolhead": map[string]any{
					"estimated_print_time": 0.0,
					"print_time":           0.0,
				},
				"configfile": map[string]any{
					"settings": map[string]any{
						"printer": map[string]any{"kinematics": "cartesian"},
					},
				},
			},
			"file_position": 0,
		},
	}

	prefix := filepath.Join(t.TempDir(), "klippy")
	require.NoError(t, os.WriteFile(prefix+".json.gz", gzipFrames(t, docs), 0o644))
	require.NoError(t, os.WriteFile(prefix+".index.gz", gzipFrames(t, index), 0o644))

	return prefix
}

func gzipFrames(t *testing.T, docs []any) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	for _, doc := range docs {
		raw, err := json.Marshal(doc)
		require.NoError(t, err)
		_, err = zw.Write(append(raw, format.FrameDelimiter))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestAnalyze(t *testing.T) {
	prefix := writeTestLog(t)

	m, err := Analyze(prefix, []string{
		"trapq:toolhead:velocity",
		"deviation:stepq:stepper_x-kin:stepper_x",
	}, Config{Duration: 0.5, SegmentTime: 0.01})
	require.NoError(t, err)

	velocity := m.Datasets()["trapq:toolhead:velocity"]
	require.NotEmpty(t, velocity)
	for i, v := range velocity {
		assert.InDelta(t, 1.0, v, 1e-9, "sample %d", i)
	}

	// The stepper tracks the commanded position to within one step plus
	// the smoothing window.
	deviation := m.Datasets()["deviation:stepq:stepper_x-kin:stepper_x"]
	require.Len(t, deviation, len(velocity))
	for i, v := range deviation {
		assert.InDelta(t, 0.0, v, 0.02, "sample %d", i)
	}
}

func TestAnalyze_UnknownDataset(t *testing.T) {
	prefix := writeTestLog(t)

	_, err := Analyze(prefix, []string{"spectrogram:stepper_x"}, Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnknownDataset)
}

func TestAnalyze_MissingLog(t *testing.T) {
	_, err := Analyze(filepath.Join(t.TempDir(), "absent"), nil, Config{})
	require.Error(t, err)
}
