// context.go recovers structured context from free-text error messages.

package duckbug

import "encoding/json"

// ParseContext decodes text as strict JSON. Text that is not valid JSON is
// wrapped as {"message": text}; empty text yields nil. No repair of
// malformed JSON is attempted.
func ParseContext(text string) any {
	if text == "" {
		return nil
	}

	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return map[string]any{"message": text}
	}
	return value
}
