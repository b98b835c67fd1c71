// Package motan decodes compressed motion measurement logs and reconstructs
// the physical signals recorded in them.
//
// A measurement log is a pair of streaming-compressed files sharing a
// prefix: "<prefix>.json.gz" carries multiplexed, delimiter-framed JSON
// records from many producers (motion queues, stepper step streams,
// accelerometers, angle sensors) and "<prefix>.index.gz" carries periodic
// status checkpoints with byte offsets into the main stream.
//
// # Basic Usage
//
// Sampling a commanded velocity and a stepper position deviation:
//
//	import "github.com/arloliu/motan"
//
//	m, _ := motan.Analyze("/tmp/klippy", []string{
//	    "trapq:toolhead:velocity",
//	    "deviation:stepq:stepper_x-kin:stepper_x",
//	}, motan.Config{Skip: 10, Duration: 2})
//	for name, samples := range m.Datasets() {
//	    fmt.Printf("%s: %d samples\n", name, len(samples))
//	}
//
// # Package Structure
//
// This package provides a convenient top-level wrapper around the session,
// dataset, and plot packages. For fine-grained control (custom seek logic,
// incremental dataset registration, direct record access) use those
// packages directly; the stream and dispatch packages expose the raw
// record layer.
package motan

import (
	"github.com/arloliu/motan/dataset"
	"github.com/arloliu/motan/session"
)

// Config collects the knobs of one analysis pass. Zero values select the
// defaults: no skip, a 5 second window, and a 100 microsecond sample
// interval.
type Config struct {
	// Skip is how many seconds of the session to skip before the window.
	Skip float64
	// Duration is the length of the sampling window in seconds.
	Duration float64
	// SegmentTime is the sample interval in seconds.
	SegmentTime float64
}

// Analyze opens the session stored under logPrefix, seeks past the skipped
// interval, registers the named datasets, and generates their samples.
//
// The log files are closed before returning; the manager holds the
// generated sample data.
//
// Parameters:
//   - logPrefix: Path prefix shared by the session's log files
//   - datasets: Dataset names to register, raw or generated
//   - cfg: Window and sampling configuration
//
// Returns:
//   - *dataset.Manager: Manager with every dataset generated
//   - error: Session open, seek, or dataset setup error
func Analyze(logPrefix string, datasets []string, cfg Config, opts ...session.Option) (*dataset.Manager, error) {
	sess, err := session.Open(logPrefix, opts...)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if err := sess.SeekTime(cfg.Skip); err != nil {
		return nil, err
	}

	var dopts []dataset.Option
	if cfg.SegmentTime > 0 {
		dopts = append(dopts, dataset.WithSegmentTime(cfg.SegmentTime))
	}
	if cfg.Duration > 0 {
		dopts = append(dopts, dataset.WithDuration(cfg.Duration))
	}
	m := dataset.New(sess, dopts...)
	for _, name := range datasets {
		if err := m.Setup(name); err != nil {
			return nil, err
		}
	}
	m.Generate()

	return m, nil
}
