// Package zapsink provides a sink that writes records into a zap logger.
package zapsink

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/strongdm/duckbug-go/pkg/duckbug"
)

// ZapSinkOption configures the zap sink.
type ZapSinkOption func(*zapSinkConfig)

type zapSinkConfig struct {
	errorLevel zapcore.Level
	withFrames bool
}

// WithErrorLevel sets the zap level used for error records (default: error).
// Levels that would terminate the process are ignored.
func WithErrorLevel(level zapcore.Level) ZapSinkOption {
	return func(c *zapSinkConfig) {
		if level < zapcore.DPanicLevel {
			c.errorLevel = level
		}
	}
}

// WithFrames adds the parsed stack frames to error entries.
func WithFrames() ZapSinkOption {
	return func(c *zapSinkConfig) {
		c.withFrames = true
	}
}

type zapSink struct {
	logger     *zap.Logger
	errorLevel zapcore.Level
	withFrames bool
}

// NewZapSink creates a sink writing to logger. A nil logger discards
// everything.
func NewZapSink(logger *zap.Logger, opts ...ZapSinkOption) duckbug.Sink {
	cfg := &zapSinkConfig{errorLevel: zapcore.ErrorLevel}
	for _, opt := range opts {
		opt(cfg)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &zapSink{
		logger:     logger,
		errorLevel: cfg.errorLevel,
		withFrames: cfg.withFrames,
	}
}

// zapLevel maps a record level. FATAL becomes error so the sink never
// exits the process.
func zapLevel(level duckbug.Level) zapcore.Level {
	switch level {
	case duckbug.LevelDebug:
		return zapcore.DebugLevel
	case duckbug.LevelInfo:
		return zapcore.InfoLevel
	case duckbug.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func (s *zapSink) DeliverLog(ctx context.Context, record duckbug.LogRecord) error {
	fields := []zap.Field{
		zap.String("duckbug_level", string(record.Level)),
		zap.Time("time", time.UnixMilli(record.Time)),
	}
	if record.Context != nil {
		fields = append(fields, zap.Any("context", record.Context))
	}
	s.logger.Log(zapLevel(record.Level), record.Message, fields...)
	return nil
}

func (s *zapSink) DeliverError(ctx context.Context, record duckbug.ErrorRecord) error {
	fields := []zap.Field{
		zap.String("tag", record.Message),
		zap.Time("time", time.UnixMilli(record.Time)),
		zap.String("file", record.File),
		zap.Int("line", record.Line),
		zap.String("fingerprint", duckbug.Fingerprint(record)),
		zap.Any("context", record.Context),
	}
	if s.withFrames {
		frames := make([]string, len(record.Stacktrace.Frames))
		for i, f := range record.Stacktrace.Frames {
			frames[i] = f.Content
		}
		fields = append(fields, zap.Strings("frames", frames))
	}
	s.logger.Log(s.errorLevel, "quack", fields...)
	return nil
}

// Flush syncs the logger.
func (s *zapSink) Flush(ctx context.Context) error {
	return s.logger.Sync()
}

// Close is a no-op; the logger is owned by the caller.
func (s *zapSink) Close() error {
	return nil
}
