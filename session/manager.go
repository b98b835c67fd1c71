// Package session ties one recorded log session together: the main record
// stream, its checkpoint index, the dispatcher, and the registry of active
// signal handlers.
//
// A session on disk is a pair of files sharing a prefix: "<prefix>.json.gz"
// holds the multiplexed record stream and "<prefix>.index.gz" holds periodic
// status checkpoints with byte offsets into the main stream. The index makes
// coarse time seeks possible without decompressing the whole main stream.
package session

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/arloliu/motan/dispatch"
	"github.com/arloliu/motan/errs"
	"github.com/arloliu/motan/format"
	"github.com/arloliu/motan/internal/hash"
	"github.com/arloliu/motan/internal/options"
	"github.com/arloliu/motan/signal"
	"github.com/arloliu/motan/stream"
)

// Manager owns the readers and handler registry of one log session.
//
// The Manager is not safe for concurrent use. Seeks must happen before any
// dataset query; handlers only advance forward.
type Manager struct {
	main      *stream.Reader
	index     *stream.Reader
	disp      *dispatch.Dispatcher
	logger    *slog.Logger
	lookahead float64

	initialStart  float64
	start         float64
	initialStatus *format.Status
	handlers      map[uint64]signal.Handler
}

// Option is a functional option for the Manager.
type Option = options.Option[*Manager]

// WithLogger sets the logger passed down to the stream readers.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(m *Manager) {
		m.logger = logger
	})
}

// WithLookahead sets the dispatcher read-ahead horizon in seconds.
func WithLookahead(seconds float64) Option {
	return options.NoError(func(m *Manager) {
		m.lookahead = seconds
	})
}

// Open opens the session stored under the given log prefix.
//
// It reads the first index checkpoint to establish the session's initial
// status and start time. A session without a readable first checkpoint is
// unusable and fails with errs.ErrMissingIndex.
//
// Parameters:
//   - logPrefix: Path prefix shared by the session's log files
//
// Returns:
//   - *Manager: Session positioned at the start of the main stream
//   - error: File open, decode, or missing-index error
func Open(logPrefix string, opts ...Option) (*Manager, error) {
	m := &Manager{
		logger:    slog.Default(),
		lookahead: dispatch.DefaultLookahead,
		handlers:  make(map[uint64]signal.Handler),
	}
	if err := options.Apply(m, opts...); err != nil {
		return nil, err
	}

	index, err := stream.Open(logPrefix+".index.gz", stream.WithLogger(m.logger))
	if err != nil {
		return nil, fmt.Errorf("open index stream: %w", err)
	}
	main, err := stream.Open(logPrefix+".json.gz", stream.WithLogger(m.logger))
	if err != nil {
		index.Close()

		return nil, fmt.Errorf("open main stream: %w", err)
	}
	m.index = index
	m.main = main
	m.disp = dispatch.New(main, dispatch.WithLookahead(m.lookahead))

	rec, err := index.Next()
	if err != nil {
		m.Close()

		return nil, fmt.Errorf("read first checkpoint: %w", err)
	}
	if rec == nil || rec.Status == nil {
		m.Close()

		return nil, errs.Setup(errs.ErrMissingIndex, logPrefix)
	}
	m.initialStatus = rec.Status
	m.initialStart = rec.Status.Toolhead.EstimatedPrintTime
	m.start = m.initialStart

	return m, nil
}

// InitialStatus returns the status snapshot of the first index checkpoint.
func (m *Manager) InitialStatus() *format.Status {
	return m.initialStatus
}

// StartTime returns the session time queries are measured from. It is the
// initial start time shifted by any SeekTime offset.
func (m *Manager) StartTime() float64 {
	return m.start
}

// AvailableDatasets returns the raw dataset kind tokens, sorted.
func (m *Manager) AvailableDatasets() []string {
	names := make([]string, 0, len(signal.Kinds))
	for name := range signal.Kinds {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// SeekTime advances the session start time by offset seconds and repositions
// the main stream at the last index checkpoint at or before the new start.
//
// The scan target is pulled back by one second so that records shortly
// before the requested start are still available to prime handler state.
// Checkpoint times are the larger of the estimated and actual print time;
// the two clocks can disagree while motion is queued.
//
// SeekTime consumes the index forward and must be called at most once,
// before any dataset query.
func (m *Manager) SeekTime(offset float64) error {
	m.start = m.initialStart + offset
	seekTime := max(m.initialStart, m.start-1.0)

	var filePos int64
	for {
		rec, err := m.index.Next()
		if err != nil {
			return fmt.Errorf("scan index: %w", err)
		}
		if rec == nil {
			break
		}
		if rec.Status == nil {
			continue
		}
		th := rec.Status.Toolhead
		if max(th.EstimatedPrintTime, th.PrintTime) > seekTime {
			break
		}
		filePos = rec.FilePosition
	}
	if filePos != 0 {
		if err := m.main.Seek(filePos); err != nil {
			return fmt.Errorf("seek main stream: %w", err)
		}
	}

	return nil
}

// SetupDataset validates a colon-separated dataset name, activates the
// handler for its message stream, and returns the dataset description.
//
// Handlers are memoized per message id: every dataset addressing the same
// underlying stream shares one handler and one dispatcher queue, so the
// stream is decoded once no matter how many of its datasets are graphed.
//
// Parameters:
//   - name: Dataset name, e.g. "trapq:toolhead:velocity"
//
// Returns:
//   - signal.Description: Label, units, and query function of the dataset
//   - error: Unknown kind, bad parameter count, or handler validation error
func (m *Manager) SetupDataset(name string) (signal.Description, error) {
	parts := strings.Split(name, ":")
	kind, ok := signal.Kinds[parts[0]]
	if !ok {
		return signal.Description{}, errs.Setup(errs.ErrUnknownDataset, parts[0])
	}
	if len(parts) != kind.TotalParts {
		return signal.Description{}, errs.Setup(errs.ErrBadParameterCount, name)
	}

	msgID := strings.Join(parts[:kind.MessageParts], ":")
	id := hash.ID(msgID)
	hdl, ok := m.handlers[id]
	if !ok {
		hdl = kind.New(m.disp, msgID)
		m.handlers[id] = hdl
		m.disp.AddQueue(msgID)
	}

	return hdl.Describe(parts)
}

// Close releases both log file handles.
func (m *Manager) Close() error {
	var firstErr error
	if m.main != nil {
		firstErr = m.main.Close()
	}
	if m.index != nil {
		if err := m.index.Close(); firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
