// Package plot renders generated datasets as stacked time-series charts.
//
// A graph layout is a list of rows, each row holding the dataset names drawn
// together on one chart. Rows share the time axis, so signals with different
// units stay readable while remaining aligned in time.
package plot

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/arloliu/motan/dataset"
)

const (
	pageTitle   = "Motion Analysis"
	chartWidth  = "100%"
	chartHeight = "400px"
	lineWidth   = 2
)

// DefaultGraphs is the layout drawn when no explicit layout is given: the
// commanded velocity, the commanded acceleration, and the deviation of the
// X stepper from its commanded position.
func DefaultGraphs() [][]string {
	return [][]string{
		{"trapq:toolhead:velocity"},
		{"trapq:toolhead:accel"},
		{"deviation:stepq:stepper_x-kin:stepper_x"},
	}
}

// ParseGraphs parses a graph layout string. Rows are separated by
// semicolons and dataset names within a row by commas, e.g.
// "trapq:toolhead:velocity;stepq:stepper_x,kin:stepper_x".
func ParseGraphs(spec string) ([][]string, error) {
	var graphs [][]string
	for _, row := range strings.Split(spec, ";") {
		var names []string
		for _, name := range strings.Split(row, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			names = append(names, name)
		}
		if len(names) > 0 {
			graphs = append(graphs, names)
		}
	}
	if len(graphs) == 0 {
		return nil, fmt.Errorf("empty graph layout %q", spec)
	}

	return graphs, nil
}

// Names flattens a graph layout into the list of dataset names it draws.
func Names(graphs [][]string) []string {
	var names []string
	for _, row := range graphs {
		names = append(names, row...)
	}

	return names
}

// Render writes the graph layout as a single self-contained HTML page.
//
// Every dataset in the layout must already be registered and generated on
// the manager.
//
// Parameters:
//   - w: Destination for the rendered HTML
//   - m: Manager holding the generated sample data
//   - graphs: Layout rows of dataset names
//
// Returns:
//   - error: Unknown dataset name or render failure
func Render(w io.Writer, m *dataset.Manager, graphs [][]string) error {
	page := components.NewPage()
	page.PageTitle = pageTitle

	for _, row := range graphs {
		line, err := buildRow(m, row)
		if err != nil {
			return err
		}
		page.AddCharts(line)
	}

	return page.Render(w)
}

// buildRow draws one chart with every dataset of the row as a line series.
func buildRow(m *dataset.Manager, names []string) (*charts.Line, error) {
	line := charts.NewLine()

	var yLabel string
	var times []string
	data := m.Datasets()
	for _, name := range names {
		label, err := m.Label(name)
		if err != nil {
			return nil, err
		}
		samples, ok := data[name]
		if !ok {
			return nil, fmt.Errorf("dataset %q has no generated data", name)
		}
		if times == nil {
			times = timeAxis(m.SegmentTime(), len(samples))
		}
		// The y axis carries the units of the row's first dataset; rows
		// mixing units keep the chart but lose a meaningful axis label.
		if yLabel == "" {
			yLabel = strings.ReplaceAll(label.Units, "\n", " ")
		}

		series := make([]opts.LineData, len(samples))
		for i, v := range samples {
			series[i] = opts.LineData{Value: v}
		}
		line.AddSeries(label.Text, series,
			charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
		)
	}

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(times)

	return line, nil
}

// timeAxis formats the sample times, relative to the window start.
func timeAxis(segmentTime float64, n int) []string {
	axis := make([]string, n)
	for i := range n {
		axis[i] = strconv.FormatFloat(segmentTime*float64(i), 'f', 6, 64)
	}

	return axis
}

// WriteCSV writes the named datasets as CSV with a leading time column. The
// header uses the raw dataset names; rows stop at the shortest dataset.
func WriteCSV(w io.Writer, m *dataset.Manager, names []string) error {
	data := m.Datasets()
	columns := make([][]float64, 0, len(names))
	rows := -1
	for _, name := range names {
		samples, ok := data[name]
		if !ok {
			return fmt.Errorf("dataset %q has no generated data", name)
		}
		columns = append(columns, samples)
		if rows < 0 || len(samples) < rows {
			rows = len(samples)
		}
	}

	if _, err := fmt.Fprintf(w, "time,%s\n", strings.Join(names, ",")); err != nil {
		return err
	}
	for i := 0; i < rows; i++ {
		fields := make([]string, 0, len(columns)+1)
		fields = append(fields,
			strconv.FormatFloat(m.SegmentTime()*float64(i), 'f', 6, 64))
		for _, col := range columns {
			fields = append(fields, strconv.FormatFloat(col[i], 'g', -1, 64))
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, ",")); err != nil {
			return err
		}
	}

	return nil
}
