// Package errs defines sentinel errors shared across the motan packages.
//
// Setup-time semantic errors (unknown dataset names, invalid parameters,
// unsupported configurations) wrap one of these sentinels together with the
// offending token, so callers can classify failures with errors.Is while
// still reporting the exact input that failed to validate.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDataset indicates a dataset name whose kind token does not
	// match any raw log handler or generated analyzer.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrBadParameterCount indicates a dataset name with the wrong number of
	// colon-separated parameters for its kind.
	ErrBadParameterCount = errors.New("invalid number of parameters")

	// ErrUnknownSelection indicates an unrecognized data selection suffix in
	// a dataset name (for example an invalid motion queue field).
	ErrUnknownSelection = errors.New("unknown data selection")

	// ErrUnknownAxis indicates an axis token outside of x, y, z.
	ErrUnknownAxis = errors.New("unknown axis")

	// ErrUnknownStepper indicates a stepper name the kinematic analyzer does
	// not recognize.
	ErrUnknownStepper = errors.New("unknown stepper")

	// ErrUnsupportedKinematics indicates a printer kinematics configuration
	// the kinematic analyzer cannot decompose.
	ErrUnsupportedKinematics = errors.New("unsupported kinematics")

	// ErrBadDeviation indicates a deviation expression that does not contain
	// exactly two hyphen-joined source dataset names.
	ErrBadDeviation = errors.New("invalid deviation")

	// ErrSelfReference indicates a generated dataset that names itself
	// (directly or transitively) as one of its sources.
	ErrSelfReference = errors.New("self-referential dataset")

	// ErrQueueNotRegistered indicates a pull from a dispatcher queue that was
	// never registered via AddQueue.
	ErrQueueNotRegistered = errors.New("queue not registered")

	// ErrMissingIndex indicates an index stream without an initial session
	// record.
	ErrMissingIndex = errors.New("missing initial index record")

	// ErrUnknownCompression indicates an unrecognized compression type.
	ErrUnknownCompression = errors.New("unknown compression type")
)

// SetupError is a setup-time semantic error carrying the token that failed
// to validate. It wraps one of the sentinel errors above.
type SetupError struct {
	Token string
	Err   error
}

// Error implements the error interface.
func (e *SetupError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Token)
}

// Unwrap returns the wrapped sentinel error.
func (e *SetupError) Unwrap() error {
	return e.Err
}

// Setup wraps a sentinel error with the offending token.
func Setup(err error, token string) error {
	return &SetupError{Token: token, Err: err}
}
