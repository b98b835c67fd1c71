package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/motan/errs"
	"github.com/arloliu/motan/format"
	"github.com/arloliu/motan/signal"
)

// stubSource serves canned dataset descriptions without a real log.
type stubSource struct {
	start  float64
	status *format.Status
	descs  map[string]signal.Description
}

func (s *stubSource) SetupDataset(name string) (signal.Description, error) {
	desc, ok := s.descs[name]
	if !ok {
		return signal.Description{}, errs.Setup(errs.ErrUnknownSelection, name)
	}

	return desc, nil
}

func (s *stubSource) InitialStatus() *format.Status { return s.status }
func (s *stubSource) StartTime() float64            { return s.start }

func (s *stubSource) AvailableDatasets() []string {
	return []string{"adxl345", "angle", "stepq", "trapq"}
}

func cartesianStatus(kinematics string) *format.Status {
	status := &format.Status{}
	status.Configfile.Settings.Printer.Kinematics = kinematics

	return status
}

// newStubSource serves linear-ramp positions on the toolhead axes and a
// slightly offset stepper position, all relative to start time 100.
func newStubSource(kinematics string) *stubSource {
	ramp := func(scale, offset float64) signal.QueryFunc {
		return func(t float64) float64 { return scale*(t-100.0) + offset }
	}

	return &stubSource{
		start:  100.0,
		status: cartesianStatus(kinematics),
		descs: map[string]signal.Description{
			"trapq:toolhead:axis_x": {
				Label: "toolhead axis x position",
				Units: signal.UnitPosition,
				Query: ramp(1.0, 0),
			},
			"trapq:toolhead:axis_y": {
				Label: "toolhead axis y position",
				Units: signal.UnitPosition,
				Query: ramp(2.0, 0),
			},
			"trapq:toolhead:velocity": {
				Label: "toolhead velocity",
				Units: signal.UnitVelocity,
				Query: func(float64) float64 { return 3.0 },
			},
			"stepq:stepper_x": {
				Label: "stepper_x position",
				Units: signal.UnitPosition,
				Query: ramp(1.0, 0.5),
			},
		},
	}
}

func newTestManager(t *testing.T, kinematics string) *Manager {
	t.Helper()

	// The window is half a segment longer than ten samples so the sample
	// count does not sit on a rounding boundary.
	return New(newStubSource(kinematics),
		WithSegmentTime(0.001), WithDuration(0.0105))
}

func TestManager_SetupIdempotent(t *testing.T) {
	m := newTestManager(t, "cartesian")
	require.NoError(t, m.Setup("trapq:toolhead:axis_x"))
	require.NoError(t, m.Setup("trapq:toolhead:axis_x"))
	assert.Len(t, m.rawNames, 1)

	require.NoError(t, m.Setup("derivative:trapq:toolhead:axis_x"))
	require.NoError(t, m.Setup("derivative:trapq:toolhead:axis_x"))
	assert.Len(t, m.genNames, 1)
}

func TestManager_SetupUnknown(t *testing.T) {
	m := newTestManager(t, "cartesian")
	err := m.Setup("spectrogram:trapq:toolhead:axis_x")
	assert.ErrorIs(t, err, errs.ErrUnknownDataset)
}

func TestManager_LabelUnknown(t *testing.T) {
	m := newTestManager(t, "cartesian")
	_, err := m.Label("trapq:toolhead:axis_x")
	assert.ErrorIs(t, err, errs.ErrUnknownDataset)
}

func TestManager_GenerateSampleCount(t *testing.T) {
	m := newTestManager(t, "cartesian")
	require.NoError(t, m.Setup("trapq:toolhead:axis_x"))
	m.Generate()

	data := m.Datasets()["trapq:toolhead:axis_x"]
	require.Len(t, data, 11)
	// Samples start one segment past the start time.
	assert.InDelta(t, 0.001, data[0], 1e-9)
	assert.InDelta(t, 0.011, data[10], 1e-9)
}

func TestDerivative_Ramp(t *testing.T) {
	m := newTestManager(t, "cartesian")
	require.NoError(t, m.Setup("derivative:trapq:toolhead:axis_x"))
	m.Generate()

	src := m.Datasets()["trapq:toolhead:axis_x"]
	deriv := m.Datasets()["derivative:trapq:toolhead:axis_x"]
	require.Len(t, deriv, len(src))
	// A unit position ramp differentiates to a constant 1.0 velocity, with
	// the first element duplicated from the second.
	assert.Equal(t, deriv[0], deriv[1])
	for i, v := range deriv {
		assert.InDelta(t, 1.0, v, 1e-6, "sample %d", i)
	}

	label, err := m.Label("derivative:trapq:toolhead:axis_x")
	require.NoError(t, err)
	assert.Equal(t, "Velocity", label.Text)
	assert.Equal(t, signal.UnitVelocity, label.Units)
}

func TestDerivative_Constant(t *testing.T) {
	m := newTestManager(t, "cartesian")
	require.NoError(t, m.Setup("derivative:trapq:toolhead:velocity"))
	m.Generate()

	for i, v := range m.Datasets()["derivative:trapq:toolhead:velocity"] {
		assert.Zero(t, v, "sample %d", i)
	}

	label, err := m.Label("derivative:trapq:toolhead:velocity")
	require.NoError(t, err)
	assert.Equal(t, "Acceleration", label.Text)
	assert.Equal(t, signal.UnitAcceleration, label.Units)
}

func TestDerivative_UnknownUnits(t *testing.T) {
	m := newTestManager(t, "cartesian")
	require.NoError(t, m.Setup("derivative:derivative:trapq:toolhead:velocity"))

	label, err := m.Label("derivative:derivative:trapq:toolhead:velocity")
	require.NoError(t, err)
	assert.Equal(t, "Derivative", label.Text)
	assert.Equal(t, "Unknown", label.Units)
}

func TestKinematic_CartesianPassthrough(t *testing.T) {
	m := newTestManager(t, "cartesian")
	require.NoError(t, m.Setup("kin:stepper_x"))
	m.Generate()

	assert.Equal(t, m.Datasets()["trapq:toolhead:axis_x"],
		m.Datasets()["kin:stepper_x"])

	label, err := m.Label("kin:stepper_x")
	require.NoError(t, err)
	assert.Equal(t, "Position", label.Text)
	assert.Equal(t, signal.UnitPosition, label.Units)
}

func TestKinematic_Corexy(t *testing.T) {
	m := newTestManager(t, "corexy")
	require.NoError(t, m.Setup("kin:stepper_x"))
	require.NoError(t, m.Setup("kin:stepper_y"))
	m.Generate()

	x := m.Datasets()["trapq:toolhead:axis_x"]
	y := m.Datasets()["trapq:toolhead:axis_y"]
	plus := m.Datasets()["kin:stepper_x"]
	minus := m.Datasets()["kin:stepper_y"]
	require.Len(t, plus, len(x))
	for i := range x {
		assert.InDelta(t, x[i]+y[i], plus[i], 1e-12)
		assert.InDelta(t, x[i]-y[i], minus[i], 1e-12)
	}
}

func TestKinematic_CorexyZPassthrough(t *testing.T) {
	src := newStubSource("corexy")
	src.descs["trapq:toolhead:axis_z"] = signal.Description{
		Label: "toolhead axis z position",
		Units: signal.UnitPosition,
		Query: func(float64) float64 { return 7.0 },
	}
	m := New(src, WithSegmentTime(0.001), WithDuration(0.0105))

	require.NoError(t, m.Setup("kin:stepper_z"))
	m.Generate()
	assert.Equal(t, m.Datasets()["trapq:toolhead:axis_z"],
		m.Datasets()["kin:stepper_z"])
}

func TestKinematic_Errors(t *testing.T) {
	m := newTestManager(t, "delta")
	err := m.Setup("kin:stepper_x")
	assert.ErrorIs(t, err, errs.ErrUnsupportedKinematics)

	m = newTestManager(t, "cartesian")
	err = m.Setup("kin:stepper_a")
	assert.ErrorIs(t, err, errs.ErrUnknownStepper)
}

func TestDeviation_Scenario(t *testing.T) {
	// Registering one deviation dataset activates its two sources and,
	// transitively, the kinematic source axis.
	m := newTestManager(t, "cartesian")
	require.NoError(t, m.Setup("deviation:stepq:stepper_x-kin:stepper_x"))

	datasets := m.Datasets()
	for _, name := range []string{
		"deviation:stepq:stepper_x-kin:stepper_x",
		"stepq:stepper_x",
		"kin:stepper_x",
		"trapq:toolhead:axis_x",
	} {
		_, ok := datasets[name]
		assert.True(t, ok, "dataset %s not registered", name)
	}
	assert.Len(t, datasets, 4)

	m.Generate()
	// The stepper ramp leads the commanded position by a constant 0.5.
	for i, v := range datasets["deviation:stepq:stepper_x-kin:stepper_x"] {
		assert.InDelta(t, 0.5, v, 1e-9, "sample %d", i)
	}

	label, err := m.Label("deviation:stepq:stepper_x-kin:stepper_x")
	require.NoError(t, err)
	assert.Equal(t, "stepper_x position deviation", label.Text)
	assert.Equal(t, signal.UnitPosition, label.Units)
}

func TestDeviation_Antisymmetry(t *testing.T) {
	m := newTestManager(t, "cartesian")
	require.NoError(t, m.Setup("deviation:stepq:stepper_x-trapq:toolhead:axis_x"))
	require.NoError(t, m.Setup("deviation:trapq:toolhead:axis_x-stepq:stepper_x"))
	m.Generate()

	fwd := m.Datasets()["deviation:stepq:stepper_x-trapq:toolhead:axis_x"]
	rev := m.Datasets()["deviation:trapq:toolhead:axis_x-stepq:stepper_x"]
	require.Len(t, rev, len(fwd))
	for i := range fwd {
		assert.InDelta(t, -fwd[i], rev[i], 1e-12, "sample %d", i)
	}
}

func TestDeviation_MismatchedUnits(t *testing.T) {
	m := newTestManager(t, "cartesian")
	require.NoError(t, m.Setup("deviation:trapq:toolhead:velocity-stepq:stepper_x"))

	label, err := m.Label("deviation:trapq:toolhead:velocity-stepq:stepper_x")
	require.NoError(t, err)
	assert.Equal(t, "Deviation", label.Text)
	assert.Equal(t, "Unknown", label.Units)
}

func TestDeviation_BadParams(t *testing.T) {
	m := newTestManager(t, "cartesian")
	assert.ErrorIs(t, m.Setup("deviation:stepq:stepper_x"),
		errs.ErrBadDeviation)
	assert.ErrorIs(t, m.Setup("deviation:a-b-c"), errs.ErrBadDeviation)
}

func TestManager_SelfReference(t *testing.T) {
	// An analyzer that depends on its own dataset name must fail instead of
	// recursing.
	Analyzers["loop"] = func(m *Manager, params string) (Generator, error) {
		if err := m.Setup("loop:" + params); err != nil {
			return nil, err
		}

		return nil, nil
	}
	defer delete(Analyzers, "loop")

	m := newTestManager(t, "cartesian")
	err := m.Setup("loop:x")
	assert.ErrorIs(t, err, errs.ErrSelfReference)
}
