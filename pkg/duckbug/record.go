// record.go defines the records handed to sinks.

package duckbug

// UnknownFile is the file reported when no location can be recovered.
const UnknownFile = "unknown"

// LogRecord is a leveled log entry.
type LogRecord struct {
	// Time is the creation time in epoch milliseconds.
	Time int64 `json:"time"`

	Level Level `json:"level"`

	// Message is the tag for reports, or the stringified first argument for
	// console-style calls.
	Message string `json:"message"`

	// Context is the report payload, or the remaining console arguments as
	// an ordered array. Omitted on the wire when nil.
	Context any `json:"context,omitempty"`
}

// Frame is one normalized line of a stack trace.
type Frame struct {
	// Index is the zero-based position among non-blank lines.
	Index int `json:"index"`

	// Content is the trimmed line text.
	Content string `json:"content"`
}

// Stacktrace holds the untouched trace text and its non-blank lines.
type Stacktrace struct {
	Raw    string  `json:"raw"`
	Frames []Frame `json:"frames"`
}

// ErrorRecord is a captured error normalized for delivery.
type ErrorRecord struct {
	// Time is the creation time in epoch milliseconds.
	Time int64 `json:"time"`

	// Message is the caller-supplied tag, not the error text.
	Message string `json:"message"`

	Stacktrace Stacktrace `json:"stacktrace"`

	// File and Line locate the first recognizable frame; UnknownFile and 0
	// when none is found.
	File string `json:"file"`
	Line int    `json:"line"`

	// Context is recovered from the error text. It may be nil.
	Context any `json:"context"`
}
