// Package remote provides the HTTP transport sink. Log records are posted
// as JSON to {endpoint}/logs and error records to {endpoint}/errors.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/strongdm/duckbug-go/pkg/duckbug"
)

const (
	logsPath    = "/logs"
	errorsPath  = "/errors"
	contentType = "application/json"
)

// Doer performs one HTTP exchange. *fasthttp.Client and *fasthttp.HostClient
// satisfy it.
type Doer interface {
	DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error
}

// RemoteSinkOption configures the remote sink.
type RemoteSinkOption func(*remoteSinkConfig)

type remoteSinkConfig struct {
	timeout   time.Duration
	headers   map[string]string
	userAgent string
	client    Doer
}

// WithTimeout bounds a single delivery (default: 5s).
func WithTimeout(d time.Duration) RemoteSinkOption {
	return func(c *remoteSinkConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) RemoteSinkOption {
	return func(c *remoteSinkConfig) {
		c.headers[key] = value
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) RemoteSinkOption {
	return func(c *remoteSinkConfig) {
		c.userAgent = ua
	}
}

// WithClient replaces the HTTP client.
func WithClient(client Doer) RemoteSinkOption {
	return func(c *remoteSinkConfig) {
		if client != nil {
			c.client = client
		}
	}
}

// StatusError is returned when the collector answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote: %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("remote: %s returned status %d: %s", e.URL, e.StatusCode, e.Body)
}

type remoteSink struct {
	logsURL   string
	errorsURL string
	timeout   time.Duration
	headers   map[string]string
	userAgent string
	client    Doer
}

// NewRemoteSink creates a sink posting to endpoint. The endpoint is used as
// given; an empty endpoint produces requests to a malformed destination.
func NewRemoteSink(endpoint string, opts ...RemoteSinkOption) duckbug.Sink {
	cfg := &remoteSinkConfig{
		timeout:   5 * time.Second,
		headers:   make(map[string]string),
		userAgent: "duckbug-go",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.client == nil {
		cfg.client = &fasthttp.Client{Name: cfg.userAgent}
	}

	base := strings.TrimSuffix(endpoint, "/")
	return &remoteSink{
		logsURL:   base + logsPath,
		errorsURL: base + errorsPath,
		timeout:   cfg.timeout,
		headers:   cfg.headers,
		userAgent: cfg.userAgent,
		client:    cfg.client,
	}
}

// DeliverLog posts the record to {endpoint}/logs.
func (s *remoteSink) DeliverLog(ctx context.Context, record duckbug.LogRecord) error {
	return s.post(ctx, s.logsURL, record)
}

// DeliverError posts the record to {endpoint}/errors.
func (s *remoteSink) DeliverError(ctx context.Context, record duckbug.ErrorRecord) error {
	return s.post(ctx, s.errorsURL, record)
}

func (s *remoteSink) post(ctx context.Context, url string, record any) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("remote: encode record: %w", err)
	}

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return fmt.Errorf("remote: post %s: %w", url, context.DeadlineExceeded)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentType)
	req.Header.SetUserAgent(s.userAgent)
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	req.SetBody(body)

	if err := s.client.DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("remote: post %s: %w", url, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return &StatusError{
			URL:        url,
			StatusCode: status,
			Body:       truncate(string(resp.Body()), 256),
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Flush is a no-op; deliveries are synchronous.
func (s *remoteSink) Flush(ctx context.Context) error {
	return nil
}

// Close releases idle connections held by the default client.
func (s *remoteSink) Close() error {
	if c, ok := s.client.(*fasthttp.Client); ok {
		c.CloseIdleConnections()
	}
	return nil
}
