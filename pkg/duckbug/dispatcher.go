// dispatcher.go provides the public reporting surface.

package duckbug

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Option configures a Dispatcher.
type Option func(*dispatcherConfig)

type dispatcherConfig struct {
	interceptor InterceptorConfig
	intercept   bool
	logger      *zap.Logger
}

// WithInterceptorConfig selects the console channels to intercept.
func WithInterceptorConfig(cfg InterceptorConfig) Option {
	return func(c *dispatcherConfig) {
		c.interceptor = cfg
		c.intercept = true
	}
}

// WithoutInterception leaves the console bindings untouched.
func WithoutInterception() Option {
	return func(c *dispatcherConfig) {
		c.intercept = false
	}
}

// WithLogger sets the logger for provider panics and lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *dispatcherConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Dispatcher fans every report out to its providers in registration order.
// The provider list is fixed at construction.
type Dispatcher struct {
	providers   []Provider
	interceptor *ConsoleInterceptor
	logger      *zap.Logger
}

// New creates a Dispatcher over providers and, unless WithoutInterception is
// given, installs a ConsoleInterceptor feeding the same providers
// (DefaultInterceptorConfig when no config is supplied). It fails with
// ErrInterceptorActive if another interceptor owns the console.
func New(providers []Provider, opts ...Option) (*Dispatcher, error) {
	cfg := &dispatcherConfig{
		interceptor: DefaultInterceptorConfig(),
		intercept:   true,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	d := &Dispatcher{
		providers: append([]Provider(nil), providers...),
		logger:    cfg.logger,
	}

	if cfg.intercept {
		interceptor, err := InstallConsoleInterceptor(d.providers, cfg.interceptor,
			WithInterceptorLogger(cfg.logger))
		if err != nil {
			return nil, err
		}
		d.interceptor = interceptor
	}

	return d, nil
}

// Log reports tag at DEBUG.
func (d *Dispatcher) Log(tag string, payload any) {
	d.report(tag, LevelDebug, payload)
}

// Debug reports tag at DEBUG.
func (d *Dispatcher) Debug(tag string, payload any) {
	d.report(tag, LevelDebug, payload)
}

// Warn reports tag at WARN.
func (d *Dispatcher) Warn(tag string, payload any) {
	d.report(tag, LevelWarn, payload)
}

// Error reports tag at DEBUG. This mirrors the established wire behavior of
// the reporting API; use Report with LevelError for an ERROR-level report.
func (d *Dispatcher) Error(tag string, payload any) {
	d.report(tag, LevelDebug, payload)
}

// Fatal reports tag at FATAL. It does not exit the process.
func (d *Dispatcher) Fatal(tag string, payload any) {
	d.report(tag, LevelFatal, payload)
}

// Report sends tag at an explicit level to every provider.
func (d *Dispatcher) Report(tag string, level Level, payload any) {
	d.report(tag, level, payload)
}

// Quack reports a captured error to every provider.
func (d *Dispatcher) Quack(tag string, err error) {
	for i, p := range d.providers {
		callProvider(d.logger, "quack", i, func() {
			p.Quack(tag, err)
		})
	}
}

// Providers returns a copy of the registered providers.
func (d *Dispatcher) Providers() []Provider {
	return append([]Provider(nil), d.providers...)
}

// Interceptor returns the installed console interceptor, or nil.
func (d *Dispatcher) Interceptor() *ConsoleInterceptor {
	return d.interceptor
}

// Flush flushes every provider that supports it, collecting any errors.
func (d *Dispatcher) Flush(ctx context.Context) error {
	var errs []error
	for _, p := range d.providers {
		if f, ok := p.(interface{ Flush(context.Context) error }); ok {
			if err := f.Flush(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close restores the console and closes every provider that supports it,
// collecting any errors.
func (d *Dispatcher) Close() error {
	if d.interceptor != nil {
		d.interceptor.Restore()
	}

	var errs []error
	for _, p := range d.providers {
		if c, ok := p.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) report(tag string, level Level, payload any) {
	for i, p := range d.providers {
		callProvider(d.logger, "report", i, func() {
			p.Report(tag, level, payload)
		})
	}
}
