// normalize.go turns a captured error into an ErrorRecord.

package duckbug

import "errors"

// StackTracer is implemented by errors that carry a textual stack trace.
type StackTracer interface {
	Stack() string
}

// ParsedError holds everything recovered from an error value.
type ParsedError struct {
	File       string
	Line       int
	Stacktrace Stacktrace
	Context    any
}

// StackOf returns the stack of the first error in err's chain that
// implements StackTracer, or "" when there is none.
func StackOf(err error) string {
	var st StackTracer
	if err != nil && errors.As(err, &st) {
		return st.Stack()
	}
	return ""
}

// ParseError parses err's stack for a location and its message for context.
// The message is treated as a carrier of serialized context: a JSON message
// becomes structured context.
func ParseError(err error) ParsedError {
	var message string
	if err != nil {
		message = err.Error()
	}

	stack := ParseStacktrace(StackOf(err))
	return ParsedError{
		File:       stack.File,
		Line:       stack.Line,
		Stacktrace: stack.Stacktrace,
		Context:    ParseContext(message),
	}
}

// BuildErrorRecord normalizes err into an ErrorRecord whose message is tag.
func BuildErrorRecord(err error, tag string, time int64) ErrorRecord {
	parsed := ParseError(err)
	return ErrorRecord{
		Time:       time,
		Message:    tag,
		Stacktrace: parsed.Stacktrace,
		File:       parsed.File,
		Line:       parsed.Line,
		Context:    parsed.Context,
	}
}
