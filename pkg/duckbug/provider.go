// provider.go defines the fan-out target contract.

package duckbug

// Provider is a registered fan-out target. The console-style methods receive
// the full argument list of one console call as a single ordered slice.
// Implementations should not block; delivery is fire-and-forget.
type Provider interface {
	Log(args []any)
	Warn(args []any)
	Error(args []any)
	Report(tag string, level Level, payload any)
	Quack(tag string, err error)
}

// Quacker reports captured errors. Dispatcher and every Provider satisfy it.
type Quacker interface {
	Quack(tag string, err error)
}
