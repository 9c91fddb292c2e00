// recover.go provides the Recover helper for panic capture.
// Use this in HTTP handlers, goroutines, or other code paths that must not crash.

package duckbug

import "fmt"

// Recover captures a panic, quacks it with the panicking stack, and returns
// the recovered value. Recover does NOT re-panic after reporting.
//
// Use in defer:
//
//	func handler() {
//	    defer duckbug.Recover(dispatcher, "handler panic")
//	    // code that might panic
//	}
//
// Or to capture the recovered value:
//
//	func handler() (err error) {
//	    defer func() {
//	        if r := duckbug.Recover(dispatcher, "handler panic"); r != nil {
//	            err = fmt.Errorf("panic: %v", r)
//	        }
//	    }()
//	    // code that might panic
//	}
func Recover(q Quacker, tag string) any {
	r := recover()
	if r == nil {
		return nil
	}

	message := formatRecovered(r)
	// Skip Recover itself; runtime frames (gopanic) are dropped by the renderer.
	err := &Exception{
		message: message,
		stack:   renderStack(message, 1),
	}
	if cause, ok := r.(error); ok {
		err.cause = cause
	}

	q.Quack(tag, err)
	return r
}

// formatRecovered formats a recovered panic value as a string.
func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}
