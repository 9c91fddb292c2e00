package multi

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/strongdm/duckbug-go/pkg/duckbug"
)

// mockSink records deliveries and can be configured to return errors.
type mockSink struct {
	mu       sync.Mutex
	logs     []duckbug.LogRecord
	errs     []duckbug.ErrorRecord
	writeErr error
	flushErr error
	closeErr error
	flushed  bool
	closed   bool
}

func (s *mockSink) DeliverLog(ctx context.Context, record duckbug.LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, record)
	return s.writeErr
}

func (s *mockSink) DeliverError(ctx context.Context, record duckbug.ErrorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, record)
	return s.writeErr
}

func (s *mockSink) Flush(ctx context.Context) error {
	s.flushed = true
	return s.flushErr
}

func (s *mockSink) Close() error {
	s.closed = true
	return s.closeErr
}

func TestMultiSink_ImplementsSinkInterface(t *testing.T) {
	var _ duckbug.Sink = NewMultiSink()
}

func TestMultiSink_DeliversToAllSinks(t *testing.T) {
	a, b := &mockSink{}, &mockSink{}
	sink := NewMultiSink(a, b)
	ctx := context.Background()

	if err := sink.DeliverLog(ctx, duckbug.LogRecord{Message: "log"}); err != nil {
		t.Fatalf("DeliverLog returned %v", err)
	}
	if err := sink.DeliverError(ctx, duckbug.ErrorRecord{Message: "err"}); err != nil {
		t.Fatalf("DeliverError returned %v", err)
	}

	for i, s := range []*mockSink{a, b} {
		if len(s.logs) != 1 || s.logs[0].Message != "log" {
			t.Errorf("sink %d logs = %+v", i, s.logs)
		}
		if len(s.errs) != 1 || s.errs[0].Message != "err" {
			t.Errorf("sink %d errors = %+v", i, s.errs)
		}
	}
}

func TestMultiSink_ContinuesAfterError(t *testing.T) {
	errA := errors.New("sink a failed")
	errC := errors.New("sink c failed")
	a := &mockSink{writeErr: errA}
	b := &mockSink{}
	c := &mockSink{writeErr: errC}
	sink := NewMultiSink(a, b, c)

	err := sink.DeliverLog(context.Background(), duckbug.LogRecord{})

	if !errors.Is(err, errA) || !errors.Is(err, errC) {
		t.Errorf("error should join both failures, got %v", err)
	}
	if len(b.logs) != 1 {
		t.Error("healthy sink should still receive the record")
	}
}

func TestMultiSink_FlushAndCloseAll(t *testing.T) {
	flushErr := errors.New("flush failed")
	closeErr := errors.New("close failed")
	a := &mockSink{flushErr: flushErr}
	b := &mockSink{closeErr: closeErr}
	sink := NewMultiSink(a, b)

	if err := sink.Flush(context.Background()); !errors.Is(err, flushErr) {
		t.Errorf("Flush = %v, want %v", err, flushErr)
	}
	if !a.flushed || !b.flushed {
		t.Error("all sinks should be flushed")
	}

	if err := sink.Close(); !errors.Is(err, closeErr) {
		t.Errorf("Close = %v, want %v", err, closeErr)
	}
	if !a.closed || !b.closed {
		t.Error("all sinks should be closed")
	}
}

func TestMultiSink_SkipsNilSinks(t *testing.T) {
	a := &mockSink{}
	sink := NewMultiSink(nil, a, nil)

	if err := sink.DeliverError(context.Background(), duckbug.ErrorRecord{}); err != nil {
		t.Fatalf("DeliverError returned %v", err)
	}
	if len(a.errs) != 1 {
		t.Error("non-nil sink should receive the record")
	}
}

func TestMultiSink_Empty(t *testing.T) {
	sink := NewMultiSink()
	ctx := context.Background()

	if err := sink.DeliverLog(ctx, duckbug.LogRecord{}); err != nil {
		t.Errorf("DeliverLog returned %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("Close returned %v", err)
	}
}
