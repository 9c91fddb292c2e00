// sink.go defines the Sink interface for record destinations.

package duckbug

import (
	"context"
	"errors"
)

// ErrSinkClosed is returned by sinks that reject deliveries after Close.
var ErrSinkClosed = errors.New("duckbug: sink is closed")

// Sink is the destination for finished records.
// Implementations must be safe for concurrent use.
type Sink interface {
	// DeliverLog hands a log record to the destination.
	DeliverLog(ctx context.Context, record LogRecord) error

	// DeliverError hands an error record to the destination.
	DeliverError(ctx context.Context, record ErrorRecord) error

	// Flush ensures any buffered records are delivered.
	// For synchronous sinks, this may be a no-op.
	Flush(ctx context.Context) error

	// Close releases resources held by the sink. Buffering sinks reject
	// later deliveries with ErrSinkClosed.
	Close() error
}
