// fx_module.go integrates the Dispatcher into fx applications.

package duckbug

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// providerGroup is the fx value group collecting Providers.
const providerGroup = `group:"duckbug_providers"`

// FXModule provides a *Dispatcher built from every Provider in the
// duckbug_providers value group and closes it when the application stops.
//
//	app := fx.New(
//	    duckbug.FXModule,
//	    fx.Provide(duckbug.AsProvider(newRemoteAdapter)),
//	)
//
// An optional *InterceptorConfig and *zap.Logger are used when present.
var FXModule = fx.Module("duckbug",
	fx.Provide(NewDispatcherFromParams),
	fx.Invoke(RegisterDispatcherLifecycle),
)

// DispatcherParams are the fx dependencies of the Dispatcher.
type DispatcherParams struct {
	fx.In

	Providers   []Provider         `group:"duckbug_providers"`
	Interceptor *InterceptorConfig `optional:"true"`
	Logger      *zap.Logger        `optional:"true"`
}

// NewDispatcherFromParams builds a Dispatcher from fx dependencies.
func NewDispatcherFromParams(p DispatcherParams) (*Dispatcher, error) {
	var opts []Option
	if p.Interceptor != nil {
		opts = append(opts, WithInterceptorConfig(*p.Interceptor))
	}
	if p.Logger != nil {
		opts = append(opts, WithLogger(p.Logger))
	}
	return New(p.Providers, opts...)
}

// RegisterDispatcherLifecycle flushes and closes the Dispatcher on stop.
func RegisterDispatcherLifecycle(lc fx.Lifecycle, d *Dispatcher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return errors.Join(d.Flush(ctx), d.Close())
		},
	})
}

// AsProvider annotates a constructor so its result joins the provider group.
func AsProvider(constructor any) any {
	return fx.Annotate(
		constructor,
		fx.As(new(Provider)),
		fx.ResultTags(providerGroup),
	)
}
