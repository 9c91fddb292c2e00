// level.go defines the closed set of report levels.

package duckbug

import (
	"fmt"
	"strings"
)

// Level is the severity tag carried by a LogRecord. Levels are not filtered;
// every level is forwarded.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelFatal Level = "FATAL"
)

// Levels returns all levels in declaration order.
func Levels() []Level {
	return []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal}
}

// Valid reports whether l is one of the declared levels.
func (l Level) Valid() bool {
	for _, known := range Levels() {
		if l == known {
			return true
		}
	}
	return false
}

// ParseLevel converts a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}
