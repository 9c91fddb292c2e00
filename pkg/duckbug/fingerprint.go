// fingerprint.go generates stable hashes for grouping similar error records.

package duckbug

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Fingerprint generates a hash for grouping similar error records.
// The fingerprint is based on:
//   - the record tag and file
//   - the first 3 call frames after the header, normalized
//
// It ignores variable data like timestamps, context, line and column
// numbers, and memory addresses.
func Fingerprint(record ErrorRecord) string {
	parts := []string{record.Message, record.File}
	parts = append(parts, normalizeFrames(record.Stacktrace.Frames)...)

	input := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(input))

	// Return hex-encoded first 16 bytes (32 hex chars)
	return hex.EncodeToString(hash[:16])
}

var (
	// Match location suffixes like ":42:10" or ":42"
	lineColPattern = regexp.MustCompile(`(:\d+)+`)

	// Match memory addresses like "0x1234abcd"
	memAddrPattern = regexp.MustCompile(`0x[0-9a-fA-F]+`)
)

// normalizeFrames returns up to 3 call frames with location numbers and
// addresses removed. The header frame (index 0) is skipped.
func normalizeFrames(frames []Frame) []string {
	var out []string
	for _, frame := range frames {
		if frame.Index == 0 {
			continue
		}
		content := strings.TrimPrefix(frame.Content, "at ")
		content = memAddrPattern.ReplaceAllString(content, "")
		content = lineColPattern.ReplaceAllString(content, "")
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		out = append(out, content)
		if len(out) >= 3 {
			break
		}
	}
	return out
}
