package capture

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrConfiguration: no compatible resolution or frame-rate, or invalid
	// preferences. Fatal to Start, never retried.
	ErrConfiguration = errors.New("configuration error")
	// ErrDevice: the sensor could not be opened, configured or oriented.
	ErrDevice = errors.New("device error")
	// ErrBufferInvariant: a constructed frame buffer failed its size or
	// addressability check. Indicates a platform bug.
	ErrBufferInvariant = errors.New("buffer invariant violation")
	// ErrEngineFault: the detection engine failed on a frame. Recovered by
	// the worker and never returned from Start/Stop.
	ErrEngineFault = errors.New("engine fault")
	// ErrIllegalState: Release while running, or Start after Release.
	ErrIllegalState = errors.New("illegal state")
)

var validate = validator.New()

// Error annotates a capture failure with its kind and the failing operation.
// errors.Is matches both the kind sentinel and the wrapped cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func newError(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("capture: %s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("capture: %s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
