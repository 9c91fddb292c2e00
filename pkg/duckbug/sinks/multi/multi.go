// Package multi provides a sink that fans out to multiple sinks.
// All sinks receive all records; errors are aggregated.
package multi

import (
	"context"
	"errors"

	"github.com/strongdm/duckbug-go/pkg/duckbug"
)

type multiSink struct {
	sinks []duckbug.Sink
}

// NewMultiSink creates a sink that delivers to every sink in order.
// Errors are aggregated via errors.Join; a failing sink never stops the rest.
func NewMultiSink(sinks ...duckbug.Sink) duckbug.Sink {
	var kept []duckbug.Sink
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &multiSink{sinks: kept}
}

func (s *multiSink) DeliverLog(ctx context.Context, record duckbug.LogRecord) error {
	return s.each(func(sink duckbug.Sink) error {
		return sink.DeliverLog(ctx, record)
	})
}

func (s *multiSink) DeliverError(ctx context.Context, record duckbug.ErrorRecord) error {
	return s.each(func(sink duckbug.Sink) error {
		return sink.DeliverError(ctx, record)
	})
}

func (s *multiSink) Flush(ctx context.Context) error {
	return s.each(func(sink duckbug.Sink) error {
		return sink.Flush(ctx)
	})
}

func (s *multiSink) Close() error {
	return s.each(func(sink duckbug.Sink) error {
		return sink.Close()
	})
}

func (s *multiSink) each(fn func(duckbug.Sink) error) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := fn(sink); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
