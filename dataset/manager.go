// Package dataset samples raw log signals onto a uniform time grid and
// derives computed datasets from them.
//
// Raw datasets come from the session's signal handlers; generated datasets
// are produced by named analyzers ("derivative", "kin", "deviation") over
// other datasets. Generation is two-phase: every raw dataset is sampled in
// lockstep over the window so the single forward pass over the log serves
// all of them, then analyzers run over the completed sample slices.
package dataset

import (
	"strings"

	"github.com/arloliu/motan/errs"
	"github.com/arloliu/motan/format"
	"github.com/arloliu/motan/internal/hash"
	"github.com/arloliu/motan/internal/options"
	"github.com/arloliu/motan/signal"
)

// DefaultSegmentTime is the default sample interval in seconds.
const DefaultSegmentTime = 0.000100

// DefaultDuration is the default sampling window length in seconds.
const DefaultDuration = 5.0

// Source provides raw datasets and session metadata. *session.Manager
// implements it.
type Source interface {
	SetupDataset(name string) (signal.Description, error)
	InitialStatus() *format.Status
	StartTime() float64
	AvailableDatasets() []string
}

// Label names a dataset and its units for presentation.
type Label struct {
	Text  string
	Units string
}

// Generator computes one derived dataset from already-sampled ones.
type Generator interface {
	Label() Label
	Generate() []float64
}

// Manager registers datasets by name and generates their sample data.
//
// Dataset order is preserved: raw datasets are sampled in registration
// order and generated datasets run in registration order, which places
// every generator after the datasets it was constructed from.
type Manager struct {
	src         Source
	segmentTime float64
	duration    float64

	rawNames []string
	raw      map[uint64]signal.Description
	genNames []string
	gen      map[uint64]Generator
	pending  map[string]struct{}
	data     map[string][]float64
}

// Option is a functional option for the Manager.
type Option = options.Option[*Manager]

// WithSegmentTime sets the sample interval in seconds.
func WithSegmentTime(seconds float64) Option {
	return options.NoError(func(m *Manager) {
		m.segmentTime = seconds
	})
}

// WithDuration sets the sampling window length in seconds.
func WithDuration(seconds float64) Option {
	return options.NoError(func(m *Manager) {
		m.duration = seconds
	})
}

// New creates a Manager sampling datasets from the given source.
func New(src Source, opts ...Option) *Manager {
	m := &Manager{
		src:         src,
		segmentTime: DefaultSegmentTime,
		duration:    DefaultDuration,
		raw:         make(map[uint64]signal.Description),
		gen:         make(map[uint64]Generator),
		pending:     make(map[string]struct{}),
		data:        make(map[string][]float64),
	}
	_ = options.Apply(m, opts...)

	return m
}

// SegmentTime returns the sample interval in seconds.
func (m *Manager) SegmentTime() float64 {
	return m.segmentTime
}

// Duration returns the sampling window length in seconds.
func (m *Manager) Duration() float64 {
	return m.duration
}

// Setup registers the named dataset and, recursively, every dataset it
// derives from. Setup is idempotent; registering a name twice activates one
// dataset.
//
// A raw name is routed to the source; any other leading token selects an
// analyzer, whose parameter is the remainder of the name. An analyzer whose
// parameters lead back to a dataset still being constructed fails with
// errs.ErrSelfReference.
func (m *Manager) Setup(name string) error {
	name = strings.TrimSpace(name)
	id := hash.ID(name)
	if _, ok := m.raw[id]; ok {
		return nil
	}
	if _, ok := m.gen[id]; ok {
		return nil
	}
	if _, ok := m.pending[name]; ok {
		return errs.Setup(errs.ErrSelfReference, name)
	}

	parts := strings.Split(name, ":")
	if isRawKind(m.src, parts[0]) {
		desc, err := m.src.SetupDataset(name)
		if err != nil {
			return err
		}
		m.raw[id] = desc
		m.rawNames = append(m.rawNames, name)
		m.data[name] = nil

		return nil
	}

	newGen, ok := Analyzers[parts[0]]
	if !ok {
		return errs.Setup(errs.ErrUnknownDataset, name)
	}
	m.pending[name] = struct{}{}
	gen, err := newGen(m, strings.Join(parts[1:], ":"))
	delete(m.pending, name)
	if err != nil {
		return err
	}
	m.gen[id] = gen
	m.genNames = append(m.genNames, name)
	m.data[name] = nil

	return nil
}

// Label returns the presentation label of a registered dataset.
func (m *Manager) Label(name string) (Label, error) {
	id := hash.ID(name)
	if desc, ok := m.raw[id]; ok {
		return Label{Text: desc.Label, Units: desc.Units}, nil
	}
	if gen, ok := m.gen[id]; ok {
		return gen.Label(), nil
	}

	return Label{}, errs.Setup(errs.ErrUnknownDataset, name)
}

// Datasets returns the generated sample slices keyed by dataset name. The
// slices are empty until Generate runs.
func (m *Manager) Datasets() map[string][]float64 {
	return m.data
}

// Generate samples every registered raw dataset over the window starting at
// the source's start time, then runs the analyzers over the results.
//
// All raw datasets are advanced one sample time per step, in lockstep, so
// handler query times stay non-decreasing and the dispatcher's read-ahead
// stays bounded.
func (m *Manager) Generate() {
	type sink struct {
		name  string
		query signal.QueryFunc
	}
	sinks := make([]sink, 0, len(m.rawNames))
	for _, name := range m.rawNames {
		sinks = append(sinks, sink{name: name, query: m.raw[hash.ID(name)].Query})
	}

	start := m.src.StartTime()
	samples := int(m.duration / m.segmentTime)
	for i := range sinks {
		m.data[sinks[i].name] = make([]float64, 0, samples)
	}
	end := start + m.duration
	for t := start; t < end; {
		t += m.segmentTime
		for i := range sinks {
			m.data[sinks[i].name] = append(m.data[sinks[i].name], sinks[i].query(t))
		}
	}

	for _, name := range m.genNames {
		m.data[name] = m.gen[hash.ID(name)].Generate()
	}
}

func isRawKind(src Source, kind string) bool {
	for _, name := range src.AvailableDatasets() {
		if name == kind {
			return true
		}
	}

	return false
}
