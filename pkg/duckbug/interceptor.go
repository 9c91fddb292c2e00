// interceptor.go rewires the console channels into the provider fan-out.

package duckbug

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/strongdm/duckbug-go/pkg/console"
)

// ErrInterceptorActive is returned when a console interceptor is installed
// while another one still owns the console bindings.
var ErrInterceptorActive = errors.New("duckbug: a console interceptor is already installed")

// LogReports selects which console channels are intercepted.
type LogReports struct {
	Log   bool
	Warn  bool
	Error bool
}

// InterceptorConfig configures a ConsoleInterceptor. It is read once, at
// install time.
type InterceptorConfig struct {
	LogReports LogReports
}

// DefaultInterceptorConfig intercepts warn and error, but not log.
func DefaultInterceptorConfig() InterceptorConfig {
	return InterceptorConfig{
		LogReports: LogReports{
			Log:   false,
			Warn:  true,
			Error: true,
		},
	}
}

func (c InterceptorConfig) enabled(ch console.Channel) bool {
	switch ch {
	case console.ChannelLog:
		return c.LogReports.Log
	case console.ChannelWarn:
		return c.LogReports.Warn
	case console.ChannelError:
		return c.LogReports.Error
	default:
		return false
	}
}

// InterceptorOption configures a ConsoleInterceptor.
type InterceptorOption func(*interceptorOptions)

type interceptorOptions struct {
	logger *zap.Logger
}

// WithInterceptorLogger sets the logger for install/restore events and
// provider panics.
func WithInterceptorLogger(logger *zap.Logger) InterceptorOption {
	return func(o *interceptorOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// activeInterceptor is the single interceptor that owns the console.
var (
	activeMu          sync.Mutex
	activeInterceptor *ConsoleInterceptor
)

// ConsoleInterceptor owns the console bindings it replaced and the
// originals captured at install.
type ConsoleInterceptor struct {
	providers []Provider
	config    InterceptorConfig
	logger    *zap.Logger

	mu        sync.Mutex
	originals map[console.Channel]console.Func
	replaced  []console.Channel
	installed bool
}

// InstallConsoleInterceptor captures the current console bindings and
// replaces every channel enabled in cfg with a wrapper that calls the
// original first and then the matching method on each provider. The
// provider list and cfg are snapshotted. Only one interceptor may be
// installed at a time; otherwise ErrInterceptorActive is returned and the
// console is left untouched.
func InstallConsoleInterceptor(providers []Provider, cfg InterceptorConfig, opts ...InterceptorOption) (*ConsoleInterceptor, error) {
	o := &interceptorOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	activeMu.Lock()
	defer activeMu.Unlock()

	if activeInterceptor != nil {
		return nil, ErrInterceptorActive
	}

	c := &ConsoleInterceptor{
		providers: append([]Provider(nil), providers...),
		config:    cfg,
		logger:    o.logger,
		originals: make(map[console.Channel]console.Func, 3),
		installed: true,
	}

	for _, ch := range console.Channels() {
		c.originals[ch] = console.Binding(ch)
	}
	for _, ch := range console.Channels() {
		if !cfg.enabled(ch) {
			continue
		}
		console.Swap(ch, c.wrap(ch, c.originals[ch]))
		c.replaced = append(c.replaced, ch)
	}

	activeInterceptor = c
	c.logger.Debug("console interceptor installed",
		zap.Bool("log", cfg.LogReports.Log),
		zap.Bool("warn", cfg.LogReports.Warn),
		zap.Bool("error", cfg.LogReports.Error),
		zap.Int("providers", len(c.providers)),
	)
	return c, nil
}

// Installed reports whether the interceptor still owns its channels.
func (c *ConsoleInterceptor) Installed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.installed
}

// Config returns the configuration snapshot taken at install.
func (c *ConsoleInterceptor) Config() InterceptorConfig {
	return c.config
}

// Original returns the binding captured for ch at install.
func (c *ConsoleInterceptor) Original(ch console.Channel) console.Func {
	return c.originals[ch]
}

// Restore puts the captured originals back on the replaced channels and
// releases the process-wide guard. It is safe to call more than once.
func (c *ConsoleInterceptor) Restore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.installed {
		return
	}

	activeMu.Lock()
	defer activeMu.Unlock()

	for _, ch := range c.replaced {
		console.Swap(ch, c.originals[ch])
	}
	c.installed = false
	if activeInterceptor == c {
		activeInterceptor = nil
	}
	c.logger.Debug("console interceptor restored")
}

// wrap builds the replacement binding for ch. The original always runs
// first with the exact arguments; providers are called even if it panics,
// and the panic is re-raised afterwards.
func (c *ConsoleInterceptor) wrap(ch console.Channel, original console.Func) console.Func {
	return func(args ...any) {
		var originalPanic any
		func() {
			defer func() {
				originalPanic = recover()
			}()
			original(args...)
		}()

		for i, p := range c.providers {
			callProvider(c.logger, ch.String(), i, func() {
				switch ch {
				case console.ChannelLog:
					p.Log(args)
				case console.ChannelWarn:
					p.Warn(args)
				case console.ChannelError:
					p.Error(args)
				}
			})
		}

		if originalPanic != nil {
			panic(originalPanic)
		}
	}
}

// callProvider runs fn and converts a panic into a logged diagnostic so the
// remaining providers still run.
func callProvider(logger *zap.Logger, op string, index int, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("provider panicked",
				zap.String("op", op),
				zap.Int("provider", index),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	fn()
}
