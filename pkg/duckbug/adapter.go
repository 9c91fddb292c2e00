// adapter.go adapts the Provider surface onto a single Sink.

package duckbug

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AdapterOption configures a SinkAdapter.
type AdapterOption func(*adapterConfig)

type adapterConfig struct {
	now    func() time.Time
	logger *zap.Logger
	ctx    context.Context
}

// WithClock sets the time source. It is queried on every call.
func WithClock(now func() time.Time) AdapterOption {
	return func(c *adapterConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithAdapterLogger sets the logger used to report delivery failures.
func WithAdapterLogger(logger *zap.Logger) AdapterOption {
	return func(c *adapterConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDeliveryContext sets the context passed to the sink on every delivery.
func WithDeliveryContext(ctx context.Context) AdapterOption {
	return func(c *adapterConfig) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// SinkAdapter implements Provider on top of one Sink. It owns timestamping
// and argument coercion; errors returned by the sink are logged and dropped.
type SinkAdapter struct {
	sink   Sink
	now    func() time.Time
	logger *zap.Logger
	ctx    context.Context
}

var _ Provider = (*SinkAdapter)(nil)

// NewSinkAdapter creates a Provider that delivers to sink. A nil sink
// discards everything.
func NewSinkAdapter(sink Sink, opts ...AdapterOption) *SinkAdapter {
	cfg := &adapterConfig{
		now:    time.Now,
		logger: zap.NewNop(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	// Default to a noop sink if none provided
	if sink == nil {
		sink = &noopSinkInternal{}
	}

	return &SinkAdapter{
		sink:   sink,
		now:    cfg.now,
		logger: cfg.logger,
		ctx:    cfg.ctx,
	}
}

// Log delivers a console log call at INFO.
func (a *SinkAdapter) Log(args []any) {
	a.deliverConsole(LevelInfo, args)
}

// Warn delivers a console warn call at WARN.
func (a *SinkAdapter) Warn(args []any) {
	a.deliverConsole(LevelWarn, args)
}

// Error delivers a console error call at ERROR.
func (a *SinkAdapter) Error(args []any) {
	a.deliverConsole(LevelError, args)
}

// Report delivers a tagged report. The payload becomes the record context,
// unchanged unless parts of it cannot be encoded as JSON.
func (a *SinkAdapter) Report(tag string, level Level, payload any) {
	a.deliverLog(LogRecord{
		Time:    a.timestamp(),
		Level:   level,
		Message: tag,
		Context: encodable(payload),
	})
}

// Quack normalizes err into an ErrorRecord tagged with tag and delivers it.
func (a *SinkAdapter) Quack(tag string, err error) {
	record := BuildErrorRecord(err, tag, a.timestamp())
	if deliverErr := a.sink.DeliverError(a.ctx, record); deliverErr != nil {
		a.logger.Warn("error delivery failed",
			zap.String("tag", tag),
			zap.Error(deliverErr),
		)
	}
}

// Flush delegates to the sink.
func (a *SinkAdapter) Flush(ctx context.Context) error {
	return a.sink.Flush(ctx)
}

// Close delegates to the sink.
func (a *SinkAdapter) Close() error {
	return a.sink.Close()
}

// deliverConsole maps one console call to a record: the first argument is
// the message, the rest are the context, always as an array.
func (a *SinkAdapter) deliverConsole(level Level, args []any) {
	var message string
	rest := []any{}
	if len(args) > 0 {
		message = Stringify(args[0])
		rest = append(rest, args[1:]...)
	}

	a.deliverLog(LogRecord{
		Time:    a.timestamp(),
		Level:   level,
		Message: message,
		Context: encodable(rest),
	})
}

func (a *SinkAdapter) deliverLog(record LogRecord) {
	if err := a.sink.DeliverLog(a.ctx, record); err != nil {
		a.logger.Warn("log delivery failed",
			zap.String("level", string(record.Level)),
			zap.String("message", record.Message),
			zap.Error(err),
		)
	}
}

func (a *SinkAdapter) timestamp() int64 {
	return a.now().UnixMilli()
}

// noopSinkInternal is an internal noop sink to avoid import cycles.
type noopSinkInternal struct{}

func (s *noopSinkInternal) DeliverLog(ctx context.Context, record LogRecord) error {
	return nil
}

func (s *noopSinkInternal) DeliverError(ctx context.Context, record ErrorRecord) error {
	return nil
}

func (s *noopSinkInternal) Flush(ctx context.Context) error {
	return nil
}

func (s *noopSinkInternal) Close() error {
	return nil
}
