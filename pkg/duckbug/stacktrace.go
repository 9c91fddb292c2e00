// stacktrace.go extracts a source location and frame list from trace text.

package duckbug

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedStack is the result of ParseStacktrace.
type ParsedStack struct {
	File       string
	Line       int
	Stacktrace Stacktrace
}

// Location patterns, tried in order. Only the path and line groups are used.
var (
	// "(path:line:col)" anywhere in the line
	parenLocationPattern = regexp.MustCompile(`\(([^)]+):(\d+):(\d+)\)`)

	// "at fn (path:line:col)"
	atCallLocationPattern = regexp.MustCompile(`at\s+.*?\(([^)]+):(\d+):(\d+)\)`)

	// bare "path:line:col"
	bareLocationPattern = regexp.MustCompile(`([^:()\s]+):(\d+):(\d+)`)

	locationPatterns = []*regexp.Regexp{
		parenLocationPattern,
		atCallLocationPattern,
		bareLocationPattern,
	}
)

// ParseStacktrace parses a trace such as
//
//	Error: boom
//	    at handler (src/app.ts:42:10)
//
// into its location and frames. An empty stack is treated as absent. The
// first line is the header and is never searched for a location.
func ParseStacktrace(stack string) ParsedStack {
	parsed := ParsedStack{
		File:       UnknownFile,
		Line:       0,
		Stacktrace: Stacktrace{Raw: "", Frames: []Frame{}},
	}
	if stack == "" {
		return parsed
	}

	lines := strings.Split(stack, "\n")

	if candidate, ok := firstLocationLine(lines); ok {
		parsed.File, parsed.Line = extractLocation(candidate)
	}

	parsed.Stacktrace.Raw = stack
	for _, line := range lines {
		content := strings.TrimSpace(line)
		if content == "" {
			continue
		}
		parsed.Stacktrace.Frames = append(parsed.Stacktrace.Frames, Frame{
			Index:   len(parsed.Stacktrace.Frames),
			Content: content,
		})
	}

	return parsed
}

// firstLocationLine returns the first line after the header that looks like
// a call site: it contains "at " and either ":" or "(".
func firstLocationLine(lines []string) (string, bool) {
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if strings.Contains(line, "at ") &&
			(strings.Contains(line, ":") || strings.Contains(line, "(")) {
			return line, true
		}
	}
	return "", false
}

func extractLocation(line string) (string, int) {
	for _, pattern := range locationPatterns {
		match := pattern.FindStringSubmatch(line)
		if match == nil || match[1] == "" {
			continue
		}
		return normalizePath(match[1]), parseLineNumber(match[2])
	}
	return UnknownFile, 0
}

// normalizePath strips a file:// scheme and every leading slash.
func normalizePath(path string) string {
	path = strings.TrimPrefix(path, "file://")
	return strings.TrimLeft(path, "/")
}

func parseLineNumber(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
