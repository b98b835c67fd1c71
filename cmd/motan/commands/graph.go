// Package commands implements the motan CLI subcommands.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/motan"
	"github.com/arloliu/motan/dataset"
	"github.com/arloliu/motan/plot"
)

const (
	graphCmdUse   = "graph <log-prefix>"
	graphCmdShort = "Sample datasets from a log and render them as charts"
	graphArgCount = 1
	outputPerm    = 0o644
)

// ErrNoOutput is returned when the --output flag is not set.
var ErrNoOutput = errors.New("output file is required (use --output)")

// graphFlags holds the parsed graph command flags.
type graphFlags struct {
	output      string
	skip        float64
	duration    float64
	segmentTime float64
	graphs      string
	csv         bool
}

// NewGraphCommand creates the graph subcommand.
func NewGraphCommand() *cobra.Command {
	var flags graphFlags

	cmd := &cobra.Command{
		Use:   graphCmdUse,
		Short: graphCmdShort,
		Long: `Graph samples the requested datasets over a time window of the log and
renders them as stacked HTML charts, or as CSV with --csv.

The layout names one or more chart rows separated by semicolons; datasets
within a row are separated by commas and drawn on the same chart:

  motan graph -s 10 -d 2 -o out.html \
      -g "trapq:toolhead:velocity;stepq:stepper_x,kin:stepper_x" /tmp/klippy`,
		Args: cobra.ExactArgs(graphArgCount),
		RunE: func(_ *cobra.Command, args []string) error {
			return runGraph(args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file name")
	cmd.Flags().Float64VarP(&flags.skip, "skip", "s", 0,
		"seconds of the log to skip before the window")
	cmd.Flags().Float64VarP(&flags.duration, "duration", "d", dataset.DefaultDuration,
		"number of seconds to graph")
	cmd.Flags().Float64Var(&flags.segmentTime, "segment-time", dataset.DefaultSegmentTime,
		"analysis segment time in seconds")
	cmd.Flags().StringVarP(&flags.graphs, "graph", "g", "",
		"graph layout: rows separated by ';', overlaid datasets by ','")
	cmd.Flags().BoolVar(&flags.csv, "csv", false, "write CSV instead of HTML charts")

	return cmd
}

func runGraph(logPrefix string, flags graphFlags) error {
	if flags.output == "" {
		return ErrNoOutput
	}

	graphs := plot.DefaultGraphs()
	if flags.graphs != "" {
		parsed, err := plot.ParseGraphs(flags.graphs)
		if err != nil {
			return err
		}
		graphs = parsed
	}

	m, err := motan.Analyze(logPrefix, plot.Names(graphs), motan.Config{
		Skip:        flags.skip,
		Duration:    flags.duration,
		SegmentTime: flags.segmentTime,
	})
	if err != nil {
		return err
	}

	f, err := os.OpenFile(flags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, outputPerm)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if flags.csv {
		return plot.WriteCSV(f, m, plot.Names(graphs))
	}

	return plot.Render(f, m, graphs)
}
