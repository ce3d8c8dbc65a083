package services

import (
	"strings"
	"unicode"
)

// Normalize collapses raw extracted text into a canonical form: C0/C1
// control characters are dropped, whitespace runs (including newlines)
// collapse to a single space, and the result is trimmed. Idempotent;
// empty input yields an empty string.
func Normalize(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	inSpace := false
	for _, r := range raw {
		switch {
		case unicode.IsSpace(r):
			inSpace = true
		case unicode.IsControl(r):
			// covers both the C0 and C1 ranges
		default:
			if inSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			inSpace = false
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
