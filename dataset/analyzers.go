package dataset

import (
	"strings"

	"github.com/arloliu/motan/errs"
	"github.com/arloliu/motan/signal"
)

// Analyzers maps the leading token of a generated dataset name to its
// constructor. The params argument is the rest of the name, with the kind
// token stripped.
var Analyzers map[string]func(m *Manager, params string) (Generator, error)

func init() {
	Analyzers = map[string]func(m *Manager, params string) (Generator, error){
		"derivative": newDerivative,
		"kin":        newKinematic,
		"deviation":  newDeviation,
	}
}

// derivative differentiates a source dataset with a forward difference.
type derivative struct {
	m      *Manager
	source string
}

func newDerivative(m *Manager, params string) (Generator, error) {
	if err := m.Setup(params); err != nil {
		return nil, err
	}

	return &derivative{m: m, source: params}, nil
}

// Label promotes the source units one derivative order: position becomes
// velocity, velocity becomes acceleration. Anything else is unrecognized.
func (g *derivative) Label() Label {
	label, err := g.m.Label(g.source)
	if err != nil {
		return Label{Text: "Derivative", Units: "Unknown"}
	}
	switch label.Units {
	case signal.UnitPosition:
		return Label{Text: "Velocity", Units: signal.UnitVelocity}
	case signal.UnitVelocity:
		return Label{Text: "Acceleration", Units: signal.UnitAcceleration}
	default:
		return Label{Text: "Derivative", Units: "Unknown"}
	}
}

// Generate returns the forward difference scaled by the sample rate. The
// first element is duplicated so the result length matches the source.
func (g *derivative) Generate() []float64 {
	data := g.m.Datasets()[g.source]
	if len(data) < 2 {
		return data
	}
	invSegTime := 1.0 / g.m.SegmentTime()
	deriv := make([]float64, len(data))
	for i := 0; i+1 < len(data); i++ {
		deriv[i+1] = (data[i+1] - data[i]) * invSegTime
	}
	deriv[0] = deriv[1]

	return deriv
}

// kinMode selects how a stepper position derives from toolhead axes.
type kinMode int

const (
	kinPassthrough kinMode = iota
	kinCorexyPlus
	kinCorexyMinus
)

// kinematic computes a stepper's commanded position from the toolhead's
// requested axis positions.
type kinematic struct {
	m       *Manager
	mode    kinMode
	source1 string
	source2 string
}

func newKinematic(m *Manager, params string) (Generator, error) {
	kin := m.src.InitialStatus().Configfile.Settings.Printer.Kinematics
	if kin != "cartesian" && kin != "corexy" {
		return nil, errs.Setup(errs.ErrUnsupportedKinematics, kin)
	}
	if params != "stepper_x" && params != "stepper_y" && params != "stepper_z" {
		return nil, errs.Setup(errs.ErrUnknownStepper, params)
	}

	g := &kinematic{m: m}
	if kin == "corexy" && params != "stepper_z" {
		// CoreXY couples both belts to both axes: A = x+y, B = x-y.
		g.source1 = "trapq:toolhead:axis_x"
		g.source2 = "trapq:toolhead:axis_y"
		g.mode = kinCorexyPlus
		if params == "stepper_y" {
			g.mode = kinCorexyMinus
		}
		if err := m.Setup(g.source1); err != nil {
			return nil, err
		}
		if err := m.Setup(g.source2); err != nil {
			return nil, err
		}

		return g, nil
	}

	g.source1 = "trapq:toolhead:axis_" + params[len(params)-1:]
	g.mode = kinPassthrough
	if err := m.Setup(g.source1); err != nil {
		return nil, err
	}

	return g, nil
}

func (g *kinematic) Label() Label {
	return Label{Text: "Position", Units: signal.UnitPosition}
}

func (g *kinematic) Generate() []float64 {
	datasets := g.m.Datasets()
	data1 := datasets[g.source1]
	if g.mode == kinPassthrough {
		return data1
	}
	data2 := datasets[g.source2]
	n := min(len(data1), len(data2))
	out := make([]float64, n)
	for i := range n {
		if g.mode == kinCorexyPlus {
			out[i] = data1[i] + data2[i]
		} else {
			out[i] = data1[i] - data2[i]
		}
	}

	return out
}

// deviation subtracts one dataset from another, elementwise.
type deviation struct {
	m       *Manager
	source1 string
	source2 string
}

func newDeviation(m *Manager, params string) (Generator, error) {
	parts := strings.Split(params, "-")
	if len(parts) != 2 {
		return nil, errs.Setup(errs.ErrBadDeviation, params)
	}
	g := &deviation{m: m, source1: parts[0], source2: parts[1]}
	if err := m.Setup(g.source1); err != nil {
		return nil, err
	}
	if err := m.Setup(g.source2); err != nil {
		return nil, err
	}

	return g, nil
}

// Label keeps the shared units of the two sources; sources with different
// units have no meaningful difference and get unknown units.
func (g *deviation) Label() Label {
	label1, err1 := g.m.Label(g.source1)
	label2, err2 := g.m.Label(g.source2)
	if err1 != nil || err2 != nil || label1.Units != label2.Units {
		return Label{Text: "Deviation", Units: "Unknown"}
	}

	return Label{Text: label1.Text + " deviation", Units: label1.Units}
}

func (g *deviation) Generate() []float64 {
	datasets := g.m.Datasets()
	data1 := datasets[g.source1]
	data2 := datasets[g.source2]
	n := min(len(data1), len(data2))
	out := make([]float64, n)
	for i := range n {
		out[i] = data1[i] - data2[i]
	}

	return out
}
