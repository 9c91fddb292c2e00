// Package console holds the process-wide log, warn and error entry points.
//
// Application code writes through Log, Warn and Error. Each channel has a
// replaceable binding so an interceptor can wrap the default behavior and
// mirror every call into a reporting pipeline. Bindings are swapped
// atomically; callers never observe a partially installed wrapper.
package console

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Channel identifies one of the three global entry points.
type Channel int

const (
	// ChannelLog is the plain log channel (stdout by default).
	ChannelLog Channel = iota

	// ChannelWarn is the warning channel (stderr by default).
	ChannelWarn

	// ChannelError is the error channel (stderr by default).
	ChannelError
)

// Channels lists every channel in declaration order.
func Channels() []Channel {
	return []Channel{ChannelLog, ChannelWarn, ChannelError}
}

// String returns the lowercase channel name.
func (c Channel) String() string {
	switch c {
	case ChannelLog:
		return "log"
	case ChannelWarn:
		return "warn"
	case ChannelError:
		return "error"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

func (c Channel) valid() bool {
	return c >= ChannelLog && c <= ChannelError
}

// Func is the signature of a channel binding.
type Func func(args ...any)

var bindings [3]atomic.Pointer[Func]

func init() {
	for _, ch := range Channels() {
		fn := Default(ch)
		bindings[ch].Store(&fn)
	}
}

// Default returns the built-in binding for a channel. The output stream is
// resolved on every call so reassigning os.Stdout or os.Stderr takes effect.
func Default(ch Channel) Func {
	if ch == ChannelLog {
		return writeStdout
	}
	return writeStderr
}

func writeStdout(args ...any) {
	fmt.Fprintln(os.Stdout, args...)
}

func writeStderr(args ...any) {
	fmt.Fprintln(os.Stderr, args...)
}

// Binding returns the function currently bound to ch.
func Binding(ch Channel) Func {
	if !ch.valid() {
		return nil
	}
	return *bindings[ch].Load()
}

// Swap binds fn to ch and returns the previous binding. A nil fn restores the
// default binding. Swapping an unknown channel is a no-op that returns nil.
func Swap(ch Channel, fn Func) Func {
	if !ch.valid() {
		return nil
	}
	if fn == nil {
		fn = Default(ch)
	}
	return *bindings[ch].Swap(&fn)
}

// Log writes args through the log channel.
func Log(args ...any) {
	Binding(ChannelLog)(args...)
}

// Warn writes args through the warn channel.
func Warn(args ...any) {
	Binding(ChannelWarn)(args...)
}

// Error writes args through the error channel.
func Error(args ...any) {
	Binding(ChannelError)(args...)
}

// channelWriter adapts a channel to io.Writer for the standard logger.
type channelWriter struct {
	ch Channel
}

func (w *channelWriter) Write(p []byte) (int, error) {
	msg := string(bytes.TrimSuffix(p, []byte("\n")))
	Binding(w.ch)(msg)
	return len(p), nil
}

// RedirectStandardLogger routes the default logger of the standard library
// log package through ch, so log.Printf and friends reach the same bindings
// as Log, Warn and Error. The returned func restores the previous output.
func RedirectStandardLogger(ch Channel) (restore func()) {
	prev := log.Writer()
	log.SetOutput(&channelWriter{ch: ch})
	return func() {
		log.SetOutput(prev)
	}
}

// Writer returns an io.Writer that emits each Write as one call on ch.
func Writer(ch Channel) io.Writer {
	return &channelWriter{ch: ch}
}
