// Package errors provides the error taxonomy shared by every package in
// detailviews.
//
// It wraps github.com/cockroachdb/errors so that call sites get stack traces,
// safe wrapping and the standard errors.Is / errors.As helpers from a single
// import:
//
//	if err := loader.Load(path); err != nil {
//		return errors.Wrapf(err, "failed to load %s", path)
//	}
//
// Three families of errors live here:
//
//   - ParseError: malformed input. Fatal for a pipeline run.
//   - DataQualityWarning: expected, tracked conditions (missing values, an
//     excluded registration year, an undefined click-through ratio). They are
//     collected and logged, never returned as failures.
//   - Estimator errors (ValueError, DimensionError, NotFittedError, ModelError,
//     ValidationError) used by the preprocessing, linear and evaluation code.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors.
var (
	// ErrEmptyData is returned when an operation receives no rows or no columns.
	ErrEmptyData = errors.New("empty data")
	// ErrNotImplemented marks an unsupported code path.
	ErrNotImplemented = errors.New("not implemented")
	// ErrSingularMatrix is returned when a linear system has no unique solution.
	ErrSingularMatrix = errors.New("singular matrix")
	// ErrDivisionUndefined is wrapped by DivisionUndefined warnings when
	// search_views is zero and the click-through ratio cannot be computed.
	ErrDivisionUndefined = errors.New("division undefined")
	// ErrMissingValue is wrapped by MissingValue warnings.
	ErrMissingValue = errors.New("missing value")
	// ErrExcludedValue is wrapped by ExcludedValue warnings.
	ErrExcludedValue = errors.New("excluded value")
	// ErrUnseenCategory is wrapped by UnseenCategory warnings.
	ErrUnseenCategory = errors.New("unseen category")
)

const prefix = "detailviews"

// Re-exported helpers so callers need a single errors import.
var (
	New    = errors.New
	Newf   = errors.Newf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// ModelError is a generic failure inside an estimator or transformer.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

// NewModelError creates a ModelError for operation op.
func NewModelError(op, kind string, err error) error {
	return &ModelError{Op: op, Kind: kind, Err: err}
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s: %v", prefix, e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ModelError) Unwrap() error { return e.Err }

// DimensionError reports a shape mismatch along Axis (0 = rows, 1 = columns).
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError creates a DimensionError.
func NewDimensionError(op string, expected, got, axis int) error {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

func (e *DimensionError) Error() string {
	axis := "rows"
	if e.Axis == 1 {
		axis = "columns"
	}
	return fmt.Sprintf("%s: %s: dimension mismatch on %s: expected %d, got %d",
		prefix, e.Op, axis, e.Expected, e.Got)
}

// NotFittedError is returned when Transform/Predict is called before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

// NewNotFittedError creates a NotFittedError.
func NewNotFittedError(modelName, method string) error {
	return &NotFittedError{ModelName: modelName, Method: method}
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s: %s: this instance is not fitted yet; call Fit before %s",
		prefix, e.ModelName, e.Method)
}

// ValueError reports an argument with an invalid value.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError creates a ValueError.
func NewValueError(op, message string) error {
	return &ValueError{Op: op, Message: message}
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
}

// ValidationError reports an invalid configuration parameter.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

// NewValidationError creates a ValidationError.
func NewValidationError(paramName, reason string, value interface{}) error {
	return &ValidationError{ParamName: paramName, Reason: reason, Value: value}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s (%v): %s", prefix, e.ParamName, e.Value, e.Reason)
}

// ParseError reports a malformed input file or row. Line is 1-based and
// counts the header; Line 0 means the error concerns the file as a whole.
type ParseError struct {
	Path   string
	Line   int
	Column string
	Value  string
	Err    error
}

// NewParseError creates a ParseError.
func NewParseError(path string, line int, column, value string, err error) error {
	return &ParseError{Path: path, Line: line, Column: column, Value: value, Err: err}
}

func (e *ParseError) Error() string {
	switch {
	case e.Line == 0:
		return fmt.Sprintf("%s: parse %s: %v", prefix, e.Path, e.Err)
	case e.Column == "":
		return fmt.Sprintf("%s: parse %s:%d: %v", prefix, e.Path, e.Line, e.Err)
	default:
		return fmt.Sprintf("%s: parse %s:%d: column %s: invalid value %q: %v",
			prefix, e.Path, e.Line, e.Column, e.Value, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error { return e.Err }

// Recover converts a panic raised inside op into an error assigned to *err.
// It must be deferred directly:
//
//	func (s *Scaler) Fit(X mat.Matrix) (err error) {
//		defer errors.Recover(&err, "Scaler.Fit")
//		...
//	}
func Recover(err *error, op string) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok {
		*err = errors.Wrapf(e, "%s: panic", op)
		return
	}
	*err = errors.Newf("%s: panic: %v", op, r)
}
