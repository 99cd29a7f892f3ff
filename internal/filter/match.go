package filter

import (
	"bytes"
	"fmt"
	"strings"
)

// matchEquality performs exact, byte-for-byte equality matching.
// Values are opaque and no case folding is applied.
func matchEquality(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// matchSubstring checks if a value matches a substring filter pattern.
// Each component is searched for strictly after the end of the previous
// match, so components can neither overlap nor be reordered.
func matchSubstring(value []byte, initial []byte, any [][]byte, final []byte) bool {
	pos := 0

	// Check initial substring
	if len(initial) > 0 {
		if !bytes.HasPrefix(value, initial) {
			return false
		}
		pos = len(initial)
	}

	// Check middle substrings (any)
	for _, substr := range any {
		if len(substr) == 0 {
			continue
		}
		idx := bytes.Index(value[pos:], substr)
		if idx < 0 {
			return false
		}
		pos += idx + len(substr)
	}

	// Check final substring
	if len(final) > 0 {
		if !bytes.HasSuffix(value[pos:], final) {
			return false
		}
	}

	return true
}

// escapeValue escapes the characters that carry meaning in the text form
// of a filter as \XX hex pairs.
func escapeValue(v []byte) string {
	var sb strings.Builder
	for _, b := range v {
		switch b {
		case '*', '(', ')', '\\', 0x00:
			fmt.Fprintf(&sb, "\\%02x", b)
		default:
			sb.WriteByte(b)
		}
	}
	return sb.String()
}
