// Package duckbug provides a client-side logging and error-reporting toolkit.
//
// Application code emits leveled reports, console-style log lines and
// captured errors. duckbug normalizes them into transport-ready records and
// fans them out to every registered provider, optionally by intercepting the
// process-wide console channels of package console.
//
// # Core Components
//
// The library is organized around these concepts:
//
//   - LogRecord / ErrorRecord: The wire records delivered to sinks
//   - ParseStacktrace / ParseContext: Heuristic parsers that recover a source location and structured context from an error
//   - Provider: A fan-out target; SinkAdapter adapts one Sink to the Provider surface
//   - Dispatcher: The public reporting surface that fans out to providers in registration order
//   - ConsoleInterceptor: Rewires console.Log/Warn/Error so every call also reaches the providers
//   - Sink: Destination for records (remote, async, multi, stderr, noop, cxdb, zap, kafka, metrics)
//
// # Quick Start
//
//	sink := async.NewAsyncSink(remote.NewRemoteSink("https://collector.example.com"))
//	d, err := duckbug.New([]duckbug.Provider{duckbug.NewSinkAdapter(sink)})
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
//
//	d.Warn("cache miss", map[string]any{"key": "user:42"})
//	d.Quack("checkout failed", duckbug.Errorf("payment declined"))
//	console.Error("boom") // intercepted: printed and reported
//
// # Design Principles
//
//   - Reporting never fails the caller: provider panics are isolated, sink errors are logged out-of-band
//   - Original console behavior is always preserved when interception is active
//   - Parsers are pure; unrecognized input falls back to documented defaults
package duckbug
