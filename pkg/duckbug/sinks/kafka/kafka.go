// Package kafka provides a sink that publishes records to a Kafka topic as
// JSON messages.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/strongdm/duckbug-go/pkg/duckbug"
)

// Header values identifying the record kind.
const (
	HeaderKind = "kind"
	KindLog    = "log"
	KindError  = "error"
)

// MessageWriter is the subset of *kafka.Writer used by the sink.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter creates a writer for topic on brokers.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// KafkaSinkOption configures the kafka sink.
type KafkaSinkOption func(*kafkaSinkConfig)

type kafkaSinkConfig struct {
	headers     []kafka.Header
	closeWriter bool
}

// WithHeader adds a static header to every message.
func WithHeader(key, value string) KafkaSinkOption {
	return func(c *kafkaSinkConfig) {
		c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
	}
}

// WithCloseWriter makes Close also close the writer.
func WithCloseWriter() KafkaSinkOption {
	return func(c *kafkaSinkConfig) {
		c.closeWriter = true
	}
}

type kafkaSink struct {
	writer      MessageWriter
	headers     []kafka.Header
	closeWriter bool
}

// NewKafkaSink creates a sink publishing through writer. Log messages are
// keyed by level and error messages by tag.
func NewKafkaSink(writer MessageWriter, opts ...KafkaSinkOption) duckbug.Sink {
	cfg := &kafkaSinkConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &kafkaSink{
		writer:      writer,
		headers:     cfg.headers,
		closeWriter: cfg.closeWriter,
	}
}

func (s *kafkaSink) DeliverLog(ctx context.Context, record duckbug.LogRecord) error {
	return s.publish(ctx, KindLog, string(record.Level), record.Time, record)
}

func (s *kafkaSink) DeliverError(ctx context.Context, record duckbug.ErrorRecord) error {
	return s.publish(ctx, KindError, record.Message, record.Time, record)
}

func (s *kafkaSink) publish(ctx context.Context, kind, key string, ms int64, record any) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("kafka: encode %s record: %w", kind, err)
	}

	headers := make([]kafka.Header, 0, len(s.headers)+1)
	headers = append(headers, kafka.Header{Key: HeaderKind, Value: []byte(kind)})
	headers = append(headers, s.headers...)

	msg := kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
		Time:    time.UnixMilli(ms),
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publish %s record: %w", kind, err)
	}
	return nil
}

// Flush is a no-op; WriteMessages returns once the batch is acknowledged.
func (s *kafkaSink) Flush(ctx context.Context) error {
	return nil
}

func (s *kafkaSink) Close() error {
	if s.closeWriter {
		return s.writer.Close()
	}
	return nil
}
