// Package cxdb provides a sink that persists records to cxdb as
// SystemMessage(error) turns.
package cxdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	cxdbclient "github.com/strongdm/ai-cxdb/clients/go"
	cxdtypes "github.com/strongdm/ai-cxdb/clients/go/types"

	"github.com/strongdm/duckbug-go/pkg/duckbug"
)

// CXDBClient is the minimal interface for cxdb client operations.
// The real *cxdb.Client satisfies this interface.
type CXDBClient interface {
	CreateContext(ctx context.Context, baseTurnID uint64) (*cxdbclient.ContextHead, error)
	AppendTurn(ctx context.Context, req *cxdbclient.AppendRequest) (*cxdbclient.AppendResult, error)
}

type contextIDKey struct{}

// ContextWithID returns a context that routes records delivered with it into
// the cxdb context id, overriding the sink's own context. Pair it with
// duckbug.WithDeliveryContext to bind an adapter to one cxdb context.
func ContextWithID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, contextIDKey{}, id)
}

// contextIDFromContext extracts a routed context ID. Zero counts as unset.
func contextIDFromContext(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(contextIDKey{}).(uint64)
	return id, ok && id != 0
}

// CXDBSinkOption configures the CXDB sink.
type CXDBSinkOption func(*cxdbSinkConfig)

type cxdbSinkConfig struct {
	contextID    uint64
	orphanLabels []string
	clientTag    string
	startTime    *time.Time
	newID        func() string
}

// WithContextID appends every record to an existing context instead of
// creating one.
func WithContextID(id uint64) CXDBSinkOption {
	return func(c *cxdbSinkConfig) {
		c.contextID = id
	}
}

// WithOrphanLabels sets labels for the context created by the sink.
func WithOrphanLabels(labels []string) CXDBSinkOption {
	return func(c *cxdbSinkConfig) {
		c.orphanLabels = labels
	}
}

// WithClientTag sets the client tag for the context created by the sink.
func WithClientTag(tag string) CXDBSinkOption {
	return func(c *cxdbSinkConfig) {
		c.clientTag = tag
	}
}

// WithSystemState attaches process metrics, with uptime measured from
// startTime, to every persisted record.
func WithSystemState(startTime time.Time) CXDBSinkOption {
	return func(c *cxdbSinkConfig) {
		c.startTime = &startTime
	}
}

// withIDGenerator replaces uuid generation in tests.
func withIDGenerator(fn func() string) CXDBSinkOption {
	return func(c *cxdbSinkConfig) {
		c.newID = fn
	}
}

type cxdbSink struct {
	client       CXDBClient
	orphanLabels []string
	clientTag    string
	startTime    *time.Time
	newID        func() string

	mu        sync.Mutex
	contextID uint64
	labeled   bool
}

// NewCXDBSink creates a sink that writes to cxdb. Error records and
// ERROR/FATAL log records are persisted; other log levels are skipped.
func NewCXDBSink(client CXDBClient, opts ...CXDBSinkOption) duckbug.Sink {
	cfg := &cxdbSinkConfig{
		orphanLabels: []string{"error", "duckbug"},
		clientTag:    "duckbug",
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &cxdbSink{
		client:       client,
		orphanLabels: cfg.orphanLabels,
		clientTag:    cfg.clientTag,
		startTime:    cfg.startTime,
		newID:        cfg.newID,
		contextID:    cfg.contextID,
		labeled:      cfg.contextID != 0,
	}
}

// DeliverLog persists ERROR and FATAL records.
func (s *cxdbSink) DeliverLog(ctx context.Context, record duckbug.LogRecord) error {
	if record.Level != duckbug.LevelError && record.Level != duckbug.LevelFatal {
		return nil
	}

	details := map[string]any{
		"kind":    "log",
		"level":   string(record.Level),
		"message": record.Message,
	}
	if record.Context != nil {
		details["context"] = record.Context
	}
	title := string(record.Level) + ": " + record.Message
	return s.append(ctx, record.Time, title, details)
}

// DeliverError persists a quacked error.
func (s *cxdbSink) DeliverError(ctx context.Context, record duckbug.ErrorRecord) error {
	details := map[string]any{
		"kind":        "error",
		"message":     record.Message,
		"file":        record.File,
		"line":        record.Line,
		"fingerprint": duckbug.Fingerprint(record),
		"context":     record.Context,
	}
	if record.Stacktrace.Raw != "" {
		details["stacktrace"] = record.Stacktrace.Raw
	}
	title := "quack: " + record.Message
	return s.append(ctx, record.Time, title, details)
}

func (s *cxdbSink) append(ctx context.Context, timestamp int64, title string, details map[string]any) error {
	if s.startTime != nil {
		details["system_state"] = duckbug.CaptureSystemState(*s.startTime)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := contextIDFromContext(ctx); ok {
		return s.appendTo(ctx, id, false, timestamp, title, details)
	}

	if s.contextID == 0 {
		head, err := s.client.CreateContext(ctx, 0)
		if err != nil {
			return fmt.Errorf("create context: %w", err)
		}
		s.contextID = head.ContextID
	}

	if err := s.appendTo(ctx, s.contextID, !s.labeled, timestamp, title, details); err != nil {
		return err
	}
	s.labeled = true
	return nil
}

// appendTo writes one SystemMessage(error) turn into contextID. withMetadata
// attaches the labels and client tag cxdb expects on a created context's
// first turn.
func (s *cxdbSink) appendTo(ctx context.Context, contextID uint64, withMetadata bool, timestamp int64, title string, details map[string]any) error {
	id := s.newID()
	item := &cxdtypes.ConversationItem{
		ItemType:  cxdtypes.ItemTypeSystem,
		Status:    cxdtypes.ItemStatusComplete,
		Timestamp: timestamp,
		ID:        id,
		System: &cxdtypes.SystemMessage{
			Kind:    cxdtypes.SystemKindError,
			Title:   truncateTitle(title),
			Content: encodeDetails(details),
		},
	}

	if withMetadata {
		item.ContextMetadata = &cxdtypes.ContextMetadata{
			Labels:    s.orphanLabels,
			ClientTag: s.clientTag,
		}
	}

	payload, err := cxdbclient.EncodeMsgpack(item)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req := &cxdbclient.AppendRequest{
		ContextID:      contextID,
		ParentTurnID:   0,
		TypeID:         cxdtypes.TypeIDConversationItem,
		TypeVersion:    cxdtypes.TypeVersionConversationItem,
		Payload:        payload,
		IdempotencyKey: id,
	}
	if _, err := s.client.AppendTurn(ctx, req); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// truncateTitle limits titles to 100 bytes without splitting a rune.
func truncateTitle(title string) string {
	if len(title) <= 100 {
		return title
	}
	cut := 97
	for cut > 0 && !utf8.RuneStart(title[cut]) {
		cut--
	}
	return title[:cut] + "..."
}

func encodeDetails(details map[string]any) string {
	jsonBytes, err := json.Marshal(details)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to encode details: %s"}`, err)
	}
	return string(jsonBytes)
}

// Flush is a no-op for the cxdb sink (writes are synchronous).
func (s *cxdbSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op; the client is owned by the caller.
func (s *cxdbSink) Close() error {
	return nil
}
