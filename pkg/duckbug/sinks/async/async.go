// Package async provides a sink wrapper with a bounded queue.
// Records are queued and delivered in the background; the oldest queued
// record is dropped when the queue is full.
package async

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/strongdm/duckbug-go/pkg/duckbug"
)

// AsyncSinkOption configures the async sink.
type AsyncSinkOption func(*asyncSinkConfig)

type asyncSinkConfig struct {
	queueSize    int
	pollInterval time.Duration
	onDropped    func(count int)
	logger       *zap.Logger
}

// WithQueueSize sets the maximum number of queued records (default: 1000).
func WithQueueSize(size int) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithPollInterval sets how often Flush checks for an empty queue (default: 10ms).
func WithPollInterval(d time.Duration) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithOnDropped sets a callback invoked when records are dropped due to queue overflow.
func WithOnDropped(fn func(count int)) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		c.onDropped = fn
	}
}

// WithLogger sets the logger for failed background deliveries.
func WithLogger(logger *zap.Logger) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// item is one queued record; exactly one field is set.
type item struct {
	log *duckbug.LogRecord
	err *duckbug.ErrorRecord
}

type asyncSink struct {
	inner        duckbug.Sink
	queue        chan item
	done         chan struct{}
	pending      atomic.Int64
	pollInterval time.Duration
	onDropped    func(count int)
	logger       *zap.Logger

	closeOnce sync.Once
	closeMu   sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
}

// NewAsyncSink wraps inner with a bounded queue. Deliveries return
// immediately and reach inner from a single background goroutine, in order.
func NewAsyncSink(inner duckbug.Sink, opts ...AsyncSinkOption) duckbug.Sink {
	cfg := &asyncSinkConfig{
		queueSize:    1000,
		pollInterval: 10 * time.Millisecond,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &asyncSink{
		inner:        inner,
		queue:        make(chan item, cfg.queueSize),
		done:         make(chan struct{}),
		pollInterval: cfg.pollInterval,
		onDropped:    cfg.onDropped,
		logger:       cfg.logger,
	}

	s.wg.Add(1)
	go s.processLoop()

	return s
}

func (s *asyncSink) processLoop() {
	defer s.wg.Done()
	for {
		select {
		case it := <-s.queue:
			s.deliver(it)
		case <-s.done:
			// Drain remaining records
			for {
				select {
				case it := <-s.queue:
					s.deliver(it)
				default:
					return
				}
			}
		}
	}
}

func (s *asyncSink) deliver(it item) {
	defer s.pending.Add(-1)

	var err error
	if it.log != nil {
		err = s.inner.DeliverLog(context.Background(), *it.log)
	} else {
		err = s.inner.DeliverError(context.Background(), *it.err)
	}
	if err != nil {
		s.logger.Warn("async delivery failed", zap.Error(err))
	}
}

// DeliverLog enqueues a log record.
func (s *asyncSink) DeliverLog(ctx context.Context, record duckbug.LogRecord) error {
	return s.enqueue(item{log: &record})
}

// DeliverError enqueues an error record.
func (s *asyncSink) DeliverError(ctx context.Context, record duckbug.ErrorRecord) error {
	return s.enqueue(item{err: &record})
}

func (s *asyncSink) enqueue(it item) error {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return duckbug.ErrSinkClosed
	}

	s.pending.Add(1)
	select {
	case s.queue <- it:
		return nil
	default:
		s.dropOldestAndEnqueue(it)
		return nil
	}
}

// dropOldestAndEnqueue drops the oldest record and enqueues the new one.
func (s *asyncSink) dropOldestAndEnqueue(it item) {
	select {
	case <-s.queue:
		s.dropped()
	default:
		// Queue was emptied by processor, try again
	}

	select {
	case s.queue <- it:
	default:
		// Still full, drop the new record
		s.dropped()
	}
}

func (s *asyncSink) dropped() {
	s.pending.Add(-1)
	if s.onDropped != nil {
		s.onDropped(1)
	}
}

// Flush blocks until every accepted record has been delivered, then
// flushes the inner sink.
func (s *asyncSink) Flush(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for s.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return s.inner.Flush(ctx)
}

// Close stops accepting records, drains the queue and closes the inner sink.
func (s *asyncSink) Close() error {
	s.closeOnce.Do(func() {
		s.closeMu.Lock()
		s.closed = true
		s.closeMu.Unlock()

		close(s.done)
		s.wg.Wait()
	})

	return s.inner.Close()
}
