// exception.go provides errors that carry a parseable stack trace.

package duckbug

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

const maxStackDepth = 64

// Exception is an error with a stack captured at construction. Its stack is
// rendered in the "at func (file:line:col)" layout understood by
// ParseStacktrace; Go has no column information, so col is always 0.
type Exception struct {
	message string
	stack   string
	cause   error
}

// NewException creates an Exception with the caller's stack.
func NewException(message string) *Exception {
	return &Exception{
		message: message,
		stack:   renderStack(message, 1),
	}
}

// Errorf formats a message and returns it as an Exception with the caller's
// stack. %w verbs are honored for unwrapping.
func Errorf(format string, args ...any) *Exception {
	err := fmt.Errorf(format, args...)
	return &Exception{
		message: err.Error(),
		stack:   renderStack(err.Error(), 1),
		cause:   unwrapOnce(err),
	}
}

// WrapException attaches the caller's stack to err. It returns nil for a nil
// error and err itself when err already carries a stack.
func WrapException(err error) error {
	if err == nil {
		return nil
	}
	if StackOf(err) != "" {
		return err
	}
	return &Exception{
		message: err.Error(),
		stack:   renderStack(err.Error(), 1),
		cause:   err,
	}
}

// Error returns the message.
func (e *Exception) Error() string {
	return e.message
}

// Stack returns the rendered stack trace, header line included.
func (e *Exception) Stack() string {
	return e.stack
}

// Unwrap returns the wrapped error, if any.
func (e *Exception) Unwrap() error {
	return e.cause
}

// CaptureStack renders the current goroutine's stack under an
// "Error: message" header. skip 0 starts at the caller of CaptureStack.
func CaptureStack(message string, skip int) string {
	return renderStack(message, skip+1)
}

func renderStack(message string, skip int) string {
	pcs := make([]uintptr, maxStackDepth)
	// runtime.Callers, renderStack, then the requested frames
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	b.WriteString("Error")
	if message != "" {
		b.WriteString(": ")
		b.WriteString(message)
	}

	for {
		frame, more := frames.Next()
		if frame.Function != "" && !strings.HasPrefix(frame.Function, "runtime.") {
			b.WriteString("\n    at ")
			b.WriteString(frame.Function)
			b.WriteString(" (")
			b.WriteString(frame.File)
			b.WriteString(":")
			b.WriteString(strconv.Itoa(frame.Line))
			b.WriteString(":0)")
		}
		if !more {
			break
		}
	}
	return b.String()
}

func unwrapOnce(err error) error {
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return u.Unwrap()
	}
	return nil
}
