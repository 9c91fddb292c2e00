package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/strongdm/duckbug-go/pkg/duckbug"
)

// slowSink is a test sink that can be slow and tracks deliveries.
type slowSink struct {
	mu      sync.Mutex
	order   []string
	delay   time.Duration
	fail    error
	flushed bool
	closed  bool
}

func (s *slowSink) DeliverLog(ctx context.Context, record duckbug.LogRecord) error {
	return s.record("log:" + record.Message)
}

func (s *slowSink) DeliverError(ctx context.Context, record duckbug.ErrorRecord) error {
	return s.record("error:" + record.Message)
}

func (s *slowSink) record(entry string) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append(s.order, entry)
	return s.fail
}

func (s *slowSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed = true
	return nil
}

func (s *slowSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *slowSink) getOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]string, len(s.order))
	copy(result, s.order)
	return result
}

func TestAsyncSink_ImplementsSinkInterface(t *testing.T) {
	sink := NewAsyncSink(&slowSink{})
	defer sink.Close()
	var _ duckbug.Sink = sink
}

func TestAsyncSink_Deliver_ReturnsImmediately(t *testing.T) {
	inner := &slowSink{delay: 100 * time.Millisecond}
	sink := NewAsyncSink(inner, WithQueueSize(100))
	defer sink.Close()

	start := time.Now()
	err := sink.DeliverLog(context.Background(), duckbug.LogRecord{Message: "a"})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("DeliverLog returned error: %v", err)
	}
	if elapsed > 10*time.Millisecond {
		t.Errorf("DeliverLog took %v, should return in <10ms", elapsed)
	}
}

func TestAsyncSink_PreservesOrderAcrossKinds(t *testing.T) {
	inner := &slowSink{}
	sink := NewAsyncSink(inner)
	ctx := context.Background()

	sink.DeliverLog(ctx, duckbug.LogRecord{Message: "1"})
	sink.DeliverError(ctx, duckbug.ErrorRecord{Message: "2"})
	sink.DeliverLog(ctx, duckbug.LogRecord{Message: "3"})

	if err := sink.Flush(ctx); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	got := inner.getOrder()
	want := []string{"log:1", "error:2", "log:3"}
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	sink.Close()
}

func TestAsyncSink_DropsOldest_WhenQueueFull(t *testing.T) {
	inner := &slowSink{delay: 50 * time.Millisecond}
	var droppedCount atomic.Int32
	sink := NewAsyncSink(inner,
		WithQueueSize(2),
		WithOnDropped(func(count int) {
			droppedCount.Add(int32(count))
		}),
	)

	for i := 0; i < 10; i++ {
		sink.DeliverLog(context.Background(), duckbug.LogRecord{Message: "x"})
	}
	sink.Close()

	if droppedCount.Load() == 0 {
		t.Error("Should have dropped some records when queue is full")
	}
	delivered := len(inner.getOrder())
	if int(droppedCount.Load())+delivered != 10 {
		t.Errorf("dropped %d + delivered %d != 10", droppedCount.Load(), delivered)
	}
}

func TestAsyncSink_Flush_DrainsQueue(t *testing.T) {
	inner := &slowSink{}
	sink := NewAsyncSink(inner, WithQueueSize(100))

	for i := 0; i < 10; i++ {
		sink.DeliverError(context.Background(), duckbug.ErrorRecord{Message: "e"})
	}

	if err := sink.Flush(context.Background()); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if got := len(inner.getOrder()); got != 10 {
		t.Errorf("Expected 10 records after flush, got %d", got)
	}
	if !inner.flushed {
		t.Error("inner sink should be flushed")
	}
	sink.Close()
}

func TestAsyncSink_Flush_HonorsContext(t *testing.T) {
	inner := &slowSink{delay: 200 * time.Millisecond}
	sink := NewAsyncSink(inner)
	defer sink.Close()

	sink.DeliverLog(context.Background(), duckbug.LogRecord{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := sink.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Flush = %v, want deadline exceeded", err)
	}
}

func TestAsyncSink_Close_DrainsAndClosesInner(t *testing.T) {
	inner := &slowSink{}
	sink := NewAsyncSink(inner, WithQueueSize(100))

	for i := 0; i < 5; i++ {
		sink.DeliverLog(context.Background(), duckbug.LogRecord{})
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if got := len(inner.getOrder()); got != 5 {
		t.Errorf("Expected 5 records after close, got %d", got)
	}
	if !inner.closed {
		t.Error("inner sink should be closed")
	}
}

func TestAsyncSink_DeliverAfterClose_ReturnsError(t *testing.T) {
	sink := NewAsyncSink(&slowSink{})
	sink.Close()

	if err := sink.DeliverLog(context.Background(), duckbug.LogRecord{}); !errors.Is(err, duckbug.ErrSinkClosed) {
		t.Errorf("DeliverLog after Close = %v, want ErrSinkClosed", err)
	}
	if err := sink.DeliverError(context.Background(), duckbug.ErrorRecord{}); !errors.Is(err, duckbug.ErrSinkClosed) {
		t.Errorf("DeliverError after Close = %v, want ErrSinkClosed", err)
	}
}

func TestAsyncSink_InnerFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	inner := &slowSink{fail: errors.New("collector down")}
	sink := NewAsyncSink(inner, WithLogger(zap.New(core)))

	if err := sink.DeliverLog(context.Background(), duckbug.LogRecord{}); err != nil {
		t.Fatalf("DeliverLog returned error: %v", err)
	}
	sink.Close()

	if logs.FilterMessage("async delivery failed").Len() != 1 {
		t.Errorf("expected one failure diagnostic, got %d", logs.Len())
	}
}
