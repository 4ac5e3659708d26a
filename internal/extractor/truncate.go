package extractor

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to truncated snippets
const Ellipsis = "..."

// maxEntityLen is the longest named character reference we back off over
const maxEntityLen = 10

// TruncateHTML caps s at maxChars runes, Ellipsis included. When the cut
// lands inside a tag the result is shortened to the '<' that opened it, and
// a dangling character reference is dropped the same way. Output never
// exceeds maxChars, so applying the same budget again is a no-op.
// maxChars <= 0 disables truncation.
func TruncateHTML(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}

	budget := maxChars - len(Ellipsis)
	if budget <= 0 {
		return Ellipsis[:maxChars]
	}

	cut := len(s)
	count := 0
	for i := range s {
		if count == budget {
			cut = i
			break
		}
		count++
	}

	out := s[:cut]
	if lt := strings.LastIndexByte(out, '<'); lt > strings.LastIndexByte(out, '>') {
		out = out[:lt]
	}
	if amp := strings.LastIndexByte(out, '&'); amp >= 0 &&
		amp > strings.LastIndexByte(out, ';') &&
		len(out)-amp <= maxEntityLen &&
		!strings.ContainsAny(out[amp:], " <>") {
		out = out[:amp]
	}
	return out + Ellipsis
}
