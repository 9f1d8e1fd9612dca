package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// AnnotatedError includes more context than a plain error that is useful for troubleshooting.
type AnnotatedError struct {
	// msg is the error message.
	msg string
	// pc is the program counter for the location of the error provided by runtime.Callers.
	pc uintptr
	// attrs are slog attributes that are added to the log event to provide more context for the error.
	attrs []slog.Attr
}

// New creates a new AnnotatedError with the given message and attributes.
func New(msg string, attrs ...slog.Attr) error {
	var pcs [1]uintptr
	// Skip runtime.Callers and this function.
	runtime.Callers(2, pcs[:])
	return AnnotatedError{
		msg:   msg,
		pc:    pcs[0],
		attrs: attrs,
	}
}

// NewSentinel creates a plain error without other context that can be used as a
// sentinel error detectable with errors.Is.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// Wrap annotates err with a message and slog attributes. The wrapped error stays
// detectable with errors.Is and errors.As.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	var pcs [1]uintptr
	// Skip runtime.Callers and this function.
	runtime.Callers(2, pcs[:])
	wrapper := AnnotatedError{
		msg:   msg,
		pc:    pcs[0],
		attrs: attrs,
	}
	return fmt.Errorf("%w: %w", wrapper, err)
}

// Error implements error interface.
func (err AnnotatedError) Error() string {
	return err.msg
}

// LogValue formats the error for useful logging.
func (err AnnotatedError) LogValue() slog.Value {
	// Retrieve the source location of the error so that developers can locate it faster.
	frames := runtime.CallersFrames([]uintptr{err.pc})
	source, _ := frames.Next()
	sourceAttr := slog.String("source", fmt.Sprintf("%s:%d", source.File, source.Line))

	attrs := append(
		[]slog.Attr{sourceAttr},
		err.attrs...,
	)

	return slog.GroupValue(attrs...)
}

// SlogError formats the error as a slog attribute for logging.
func SlogError(err error) slog.Attr {
	return slog.Any("error", err)
}

// Join exposes stdlib errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// As exposes stdlib errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is exposes stdlib errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap exposes stdlib errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}
