// Package editerr defines the error kinds shared by the edit session,
// the snapshot exporter and the persistence layer.
//
// Every failure that crosses a package boundary is wrapped in an *Error
// carrying one of the sentinel kinds below, so callers can branch with
// errors.Is without parsing messages:
//
//	if errors.Is(err, editerr.ErrNetwork) {
//	    // upload failed, nothing was persisted
//	}
package editerr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	// ErrValidation reports a request that was rejected locally, such as a
	// save without a signed-in user or an out-of-range parameter.
	ErrValidation = errors.New("validation error")

	// ErrCapture reports a missing render surface or an empty snapshot.
	ErrCapture = errors.New("capture error")

	// ErrIO reports a local write, read or stat failure.
	ErrIO = errors.New("io error")

	// ErrNetwork reports an upload transport failure or a non-success reply.
	ErrNetwork = errors.New("network error")

	// ErrNotFound reports an update or delete aimed at a missing record.
	ErrNotFound = errors.New("not found")
)

// Error wraps an underlying cause with its kind and the operation that failed.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func wrap(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validation returns an ErrValidation error for op.
func Validation(op string, err error) error { return wrap(ErrValidation, op, err) }

// Validationf formats a validation message.
func Validationf(op, format string, args ...any) error {
	return wrap(ErrValidation, op, fmt.Errorf(format, args...))
}

// Capture returns an ErrCapture error for op.
func Capture(op string, err error) error { return wrap(ErrCapture, op, err) }

// IO returns an ErrIO error for op.
func IO(op string, err error) error { return wrap(ErrIO, op, err) }

// Network returns an ErrNetwork error for op.
func Network(op string, err error) error { return wrap(ErrNetwork, op, err) }

// NotFound returns an ErrNotFound error for op.
func NotFound(op string, err error) error { return wrap(ErrNotFound, op, err) }

// KindOf reports the sentinel kind of err, or nil when err carries none.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrCapture, ErrIO, ErrNetwork, ErrNotFound} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// KindName returns a short label for the kind of err, for logs and metrics.
func KindName(err error) string {
	switch KindOf(err) {
	case ErrValidation:
		return "validation"
	case ErrCapture:
		return "capture"
	case ErrIO:
		return "io"
	case ErrNetwork:
		return "network"
	case ErrNotFound:
		return "not_found"
	}
	return "other"
}
