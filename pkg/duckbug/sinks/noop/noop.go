// Package noop provides a sink that discards all records.
// Useful for testing and for disabling delivery.
package noop

import (
	"context"

	"github.com/strongdm/duckbug-go/pkg/duckbug"
)

// noopSink discards all records.
type noopSink struct{}

// NewNoopSink creates a sink that discards all records.
func NewNoopSink() duckbug.Sink {
	return &noopSink{}
}

// DeliverLog discards the record.
func (s *noopSink) DeliverLog(ctx context.Context, record duckbug.LogRecord) error {
	return nil
}

// DeliverError discards the record.
func (s *noopSink) DeliverError(ctx context.Context, record duckbug.ErrorRecord) error {
	return nil
}

func (s *noopSink) Flush(ctx context.Context) error {
	return nil
}

func (s *noopSink) Close() error {
	return nil
}
