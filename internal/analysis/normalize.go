package analysis

import "strings"

// IsLetter reports whether r is an ASCII letter.
func IsLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// letterIndex maps an ASCII letter to 0-25. ok is false for anything else.
func letterIndex(r rune) (idx int, ok bool) {
	switch {
	case r >= 'A' && r <= 'Z':
		return int(r - 'A'), true
	case r >= 'a' && r <= 'z':
		return int(r - 'a'), true
	default:
		return 0, false
	}
}

// Normalize strips every non-letter from text and upper-cases the rest. The
// result is only meant for statistics; plaintext reconstruction always works on
// the original text so casing and punctuation survive.
func Normalize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if idx, ok := letterIndex(r); ok {
			sb.WriteByte(byte('A' + idx))
		}
	}
	return sb.String()
}

// LetterCount returns the number of ASCII letters in text.
func LetterCount(text string) int {
	n := 0
	for _, r := range text {
		if IsLetter(r) {
			n++
		}
	}
	return n
}
