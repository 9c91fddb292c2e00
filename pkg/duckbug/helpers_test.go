package duckbug

import (
	"context"
	"sync"

	"github.com/strongdm/duckbug-go/pkg/console"
)

// testSink captures records for verification in tests.
type testSink struct {
	mu         sync.Mutex
	logs       []LogRecord
	errors     []ErrorRecord
	deliverErr error
	flushErr   error
	closeErr   error
	closed     bool
}

func (s *testSink) DeliverLog(ctx context.Context, record LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deliverErr != nil {
		return s.deliverErr
	}
	s.logs = append(s.logs, record)
	return nil
}

func (s *testSink) DeliverError(ctx context.Context, record ErrorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deliverErr != nil {
		return s.deliverErr
	}
	s.errors = append(s.errors, record)
	return nil
}

func (s *testSink) Flush(ctx context.Context) error {
	return s.flushErr
}

func (s *testSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.closeErr
}

func (s *testSink) getLogs() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]LogRecord, len(s.logs))
	copy(result, s.logs)
	return result
}

func (s *testSink) getErrors() []ErrorRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]ErrorRecord, len(s.errors))
	copy(result, s.errors)
	return result
}

// call is one recorded Provider invocation.
type call struct {
	op      string
	args    []any
	tag     string
	level   Level
	payload any
	err     error
}

// recordingProvider records calls, optionally into a shared journal to
// check ordering across providers, and can panic on demand.
type recordingProvider struct {
	name    string
	journal *[]string
	panics  bool

	mu    sync.Mutex
	calls []call
}

func (p *recordingProvider) record(c call) {
	p.mu.Lock()
	p.calls = append(p.calls, c)
	p.mu.Unlock()
	if p.journal != nil {
		*p.journal = append(*p.journal, p.name+":"+c.op)
	}
	if p.panics {
		panic(p.name + " exploded")
	}
}

func (p *recordingProvider) Log(args []any)   { p.record(call{op: "log", args: args}) }
func (p *recordingProvider) Warn(args []any)  { p.record(call{op: "warn", args: args}) }
func (p *recordingProvider) Error(args []any) { p.record(call{op: "error", args: args}) }

func (p *recordingProvider) Report(tag string, level Level, payload any) {
	p.record(call{op: "report", tag: tag, level: level, payload: payload})
}

func (p *recordingProvider) Quack(tag string, err error) {
	p.record(call{op: "quack", tag: tag, err: err})
}

func (p *recordingProvider) getCalls() []call {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]call, len(p.calls))
	copy(result, p.calls)
	return result
}

// closingProvider is a Provider that also supports Flush and Close.
type closingProvider struct {
	recordingProvider
	flushErr error
	closeErr error
	flushed  bool
	closed   bool
}

func (p *closingProvider) Flush(ctx context.Context) error {
	p.flushed = true
	return p.flushErr
}

func (p *closingProvider) Close() error {
	p.closed = true
	return p.closeErr
}

// consoleRecorder replaces the console bindings with recorders for the
// duration of a test and restores them afterwards.
type consoleRecorder struct {
	mu    sync.Mutex
	calls map[console.Channel][][]any
	prev  map[console.Channel]console.Func
}

func newConsoleRecorder() *consoleRecorder {
	r := &consoleRecorder{
		calls: make(map[console.Channel][][]any),
		prev:  make(map[console.Channel]console.Func),
	}
	for _, ch := range console.Channels() {
		ch := ch
		r.prev[ch] = console.Swap(ch, func(args ...any) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.calls[ch] = append(r.calls[ch], args)
		})
	}
	return r
}

func (r *consoleRecorder) get(ch console.Channel) [][]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]any(nil), r.calls[ch]...)
}

func (r *consoleRecorder) restore() {
	for ch, fn := range r.prev {
		console.Swap(ch, fn)
	}
}
