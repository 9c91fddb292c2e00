// Package stderr provides a sink that prints records to stderr in a
// human-readable format. Useful for development and debugging.
package stderr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/strongdm/duckbug-go/pkg/duckbug"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// StderrSinkOption configures the stderr sink.
type StderrSinkOption func(*stderrSinkConfig)

type stderrSinkConfig struct {
	verbose bool
	out     io.Writer
}

// WithVerbose adds stack frames and a structural dump of the context.
func WithVerbose() StderrSinkOption {
	return func(c *stderrSinkConfig) {
		c.verbose = true
	}
}

// WithWriter sends output to w instead of os.Stderr.
func WithWriter(w io.Writer) StderrSinkOption {
	return func(c *stderrSinkConfig) {
		c.out = w
	}
}

type stderrSink struct {
	mu      sync.Mutex
	verbose bool
	out     io.Writer
	dumper  *spew.ConfigState
}

// NewStderrSink creates a sink that writes to stderr.
func NewStderrSink(opts ...StderrSinkOption) duckbug.Sink {
	cfg := &stderrSinkConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &stderrSink{
		verbose: cfg.verbose,
		out:     cfg.out,
		dumper: &spew.ConfigState{
			Indent:                  "  ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		},
	}
}

// writer resolves os.Stderr at call time so it can be redirected.
func (s *stderrSink) writer() io.Writer {
	if s.out != nil {
		return s.out
	}
	return os.Stderr
}

// DeliverLog prints one line for the record plus its context.
//
// Format: [DUCKBUG] <timestamp> <LEVEL> <message>
func (s *stderrSink) DeliverLog(ctx context.Context, record duckbug.LogRecord) error {
	var b strings.Builder
	fmt.Fprintf(&b, "[DUCKBUG] %s %s %s\n", formatTime(record.Time), record.Level, record.Message)
	s.writeContext(&b, record.Context)
	return s.emit(b.String())
}

// DeliverError prints the quack tag, location and fingerprint.
//
// Format: [DUCKBUG] <timestamp> QUACK <tag> at <file>:<line>
func (s *stderrSink) DeliverError(ctx context.Context, record duckbug.ErrorRecord) error {
	var b strings.Builder
	fmt.Fprintf(&b, "[DUCKBUG] %s QUACK %s at %s:%d\n",
		formatTime(record.Time), record.Message, record.File, record.Line)
	fmt.Fprintf(&b, "        Fingerprint: %s\n", duckbug.Fingerprint(record))
	s.writeContext(&b, record.Context)

	if s.verbose && len(record.Stacktrace.Frames) > 0 {
		b.WriteString("        Stack trace:\n")
		for _, frame := range record.Stacktrace.Frames {
			fmt.Fprintf(&b, "          %s\n", frame.Content)
		}
	}
	return s.emit(b.String())
}

func (s *stderrSink) writeContext(b *strings.Builder, value any) {
	if value == nil {
		return
	}
	if rest, ok := value.([]any); ok && len(rest) == 0 {
		return
	}

	if data, err := json.Marshal(value); err == nil {
		fmt.Fprintf(b, "        Context: %s\n", data)
	}

	if s.verbose {
		b.WriteString("        Context dump:\n")
		for _, line := range strings.Split(strings.TrimRight(s.dumper.Sdump(value), "\n"), "\n") {
			fmt.Fprintf(b, "          %s\n", line)
		}
	}
}

func (s *stderrSink) emit(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.writer(), text)
	return err
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(timeLayout)
}

// Flush is a no-op for stderr sink.
func (s *stderrSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op for stderr sink.
func (s *stderrSink) Close() error {
	return nil
}
