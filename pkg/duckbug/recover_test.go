package duckbug

import (
	"path/filepath"
	"sync"
	"testing"
)

// mockQuacker captures quacks for verification in recover tests.
type mockQuacker struct {
	mu   sync.Mutex
	tags []string
	errs []error
}

func (q *mockQuacker) Quack(tag string, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tags = append(q.tags, tag)
	q.errs = append(q.errs, err)
}

func (q *mockQuacker) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.errs)
}

func TestRecover_CapturesPanic(t *testing.T) {
	q := &mockQuacker{}

	func() {
		defer Recover(q, "handler panic")
		panic("test panic")
	}()

	if q.count() != 1 {
		t.Fatalf("Expected 1 quack, got %d", q.count())
	}
	if q.tags[0] != "handler panic" {
		t.Errorf("tag = %q, want %q", q.tags[0], "handler panic")
	}
	if q.errs[0].Error() != "test panic" {
		t.Errorf("message = %q, want %q", q.errs[0].Error(), "test panic")
	}
}

func TestRecover_StackPointsAtPanic(t *testing.T) {
	q := &mockQuacker{}

	func() {
		defer Recover(q, "tag")
		panic("located")
	}()

	record := BuildErrorRecord(q.errs[0], "tag", 0)
	if filepath.Base(record.File) != "recover_test.go" {
		t.Errorf("File = %q, want recover_test.go", record.File)
	}
	if record.Line == 0 {
		t.Error("Line should be populated")
	}
	if record.Context == nil {
		t.Error("Context should carry the panic message")
	}
}

func TestRecover_NoPanic_NothingQuacked(t *testing.T) {
	q := &mockQuacker{}

	func() {
		defer Recover(q, "tag")
	}()

	if q.count() != 0 {
		t.Errorf("Expected 0 quacks, got %d", q.count())
	}
}

func TestRecover_HandlesErrorPanic(t *testing.T) {
	q := &mockQuacker{}
	cause := &stackError{message: "error panic"}

	func() {
		defer Recover(q, "tag")
		panic(cause)
	}()

	if q.count() != 1 {
		t.Fatalf("Expected 1 quack, got %d", q.count())
	}
	if q.errs[0].Error() != "error panic" {
		t.Errorf("message = %q, want %q", q.errs[0].Error(), "error panic")
	}
	exc, ok := q.errs[0].(*Exception)
	if !ok {
		t.Fatalf("quacked %T, want *Exception", q.errs[0])
	}
	if exc.Unwrap() != cause {
		t.Error("the panic value should be the cause")
	}
}

func TestRecover_ThroughDispatcher(t *testing.T) {
	sink := &testSink{}
	d := newTestDispatcher(t, NewSinkAdapter(sink))

	func() {
		defer Recover(d, "worker crashed")
		panic("boom")
	}()

	errs := sink.getErrors()
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error record, got %d", len(errs))
	}
	if errs[0].Message != "worker crashed" {
		t.Errorf("Message = %q", errs[0].Message)
	}
}
