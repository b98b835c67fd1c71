package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/motan/format"
)

func writeTestLog(t *testing.T) string {
	t.Helper()

	main := gzipFrames(t,
		map[string]any{
			"q":        "status",
			"params":   map[string]any{},
			"toolhead": map[string]any{"estimated_print_time": 0.0},
		},
		map[string]any{
			"q": "trapq:toolhead",
			"params": map[string]any{"data": [][6]any{
				{0.0, 1.0, 2.0, 0.0, []float64{0, 0, 0}, []float64{1, 0, 0}},
			}},
		},
	)
	index := gzipFrames(t, map[string]any{
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
	})

	prefix := filepath.Join(t.TempDir(), "klippy")
	require.NoError(t, os.WriteFile(prefix+".json.gz", main, 0o644))
	require.NoError(t, os.WriteFile(prefix+".index.gz", index, 0o644))

	return prefix
}

func gzipFrames(t *testing.T, docs ...any) []byte {
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

func TestRunGraph_RequiresOutput(t *testing.T) {
	err := runGraph("unused", graphFlags{})
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestRunGraph_HTML(t *testing.T) {
	prefix := writeTestLog(t)
	output := filepath.Join(t.TempDir(), "out.html")

	err := runGraph(prefix, graphFlags{
		output:      output,
		duration:    0.5,
		segmentTime: 0.01,
		graphs:      "trapq:toolhead:velocity",
	})
	require.NoError(t, err)

	html, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(html), "toolhead velocity")
}

func TestRunGraph_CSV(t *testing.T) {
	prefix := writeTestLog(t)
	output := filepath.Join(t.TempDir(), "out.csv")

	err := runGraph(prefix, graphFlags{
		output:      output,
		duration:    0.5,
		segmentTime: 0.01,
		graphs:      "trapq:toolhead:velocity",
		csv:         true,
	})
	require.NoError(t, err)

	csv, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(csv), "time,trapq:toolhead:velocity")
	assert.Contains(t, string(csv), ",2")
}

func TestRunGraph_BadLayout(t *testing.T) {
	err := runGraph("unused", graphFlags{output: "out.html", graphs: " ; "})
	require.Error(t, err)
}

func TestGraphCommand_Flags(t *testing.T) {
	cmd := NewGraphCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"-o", "out.html", "-s", "10", "-d", "2", "--segment-time", "0.001",
	}))

	output, err := cmd.Flags().GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "out.html", output)

	skip, err := cmd.Flags().GetFloat64("skip")
	require.NoError(t, err)
	assert.Equal(t, 10.0, skip)
}

func TestListCommand(t *testing.T) {
	cmd := NewListCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	require.NoError(t, cmd.Execute())

	out := buf.String()
	for _, name := range []string{"trapq", "stepq", "adxl345", "angle",
		"derivative", "kin", "deviation"} {
		assert.Contains(t, out, name)
	}
}
