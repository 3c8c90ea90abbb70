package cipher

import (
	"strings"

	"github.com/RowanDark/cipherlab/internal/analysis"
)

const alphabetSize = 26

// normalizeShift folds any integer shift into 0-25.
func normalizeShift(shift int) int {
	return ((shift % alphabetSize) + alphabetSize) % alphabetSize
}

// rotate shifts an ASCII letter forward by shift (0-25) within its own case.
// Every other rune is returned unchanged.
func rotate(r rune, shift int) rune {
	switch {
	case r >= 'A' && r <= 'Z':
		return 'A' + (r-'A'+rune(shift))%alphabetSize
	case r >= 'a' && r <= 'z':
		return 'a' + (r-'a'+rune(shift))%alphabetSize
	default:
		return r
	}
}

// CaesarEncrypt rotates every ASCII letter of text forward by shift.
func CaesarEncrypt(text string, shift int) string {
	s := normalizeShift(shift)
	if s == 0 {
		return text
	}
	return strings.Map(func(r rune) rune { return rotate(r, s) }, text)
}

// CaesarDecrypt undoes CaesarEncrypt with the same shift.
func CaesarDecrypt(text string, shift int) string {
	return CaesarEncrypt(text, alphabetSize-normalizeShift(shift))
}

// NormalizeKey upper-cases a Vigenère key and drops anything that is not a
// letter.
func NormalizeKey(key string) string {
	return analysis.Normalize(key)
}

// VigenereEncrypt adds the repeating key to the letters of text. Non-letters
// pass through and do not consume a key position. An empty key leaves text
// unchanged.
func VigenereEncrypt(text, key string) string {
	return vigenere(text, key, 1)
}

// VigenereDecrypt subtracts the repeating key from the letters of text.
func VigenereDecrypt(text, key string) string {
	return vigenere(text, key, -1)
}

func vigenere(text, key string, sign int) string {
	k := NormalizeKey(key)
	if k == "" {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	idx := 0
	for _, r := range text {
		if analysis.IsLetter(r) {
			shift := int(k[idx%len(k)] - 'A')
			r = rotate(r, normalizeShift(sign*shift))
			idx++
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// zigzag returns the rail each of n positions lands on when writing down and
// up across rails rows.
func zigzag(n, rails int) []int {
	rows := make([]int, n)
	row, dir := 0, 1
	for i := 0; i < n; i++ {
		rows[i] = row
		if row == 0 {
			dir = 1
		} else if row == rails-1 {
			dir = -1
		}
		row += dir
	}
	return rows
}

// railFenceDegenerate reports whether no transposition is possible.
func railFenceDegenerate(n, rails int) bool {
	return rails <= 1 || rails >= n
}

// RailFenceEncrypt writes text along a zig-zag over rails rows and reads the
// rows back top to bottom. With rails <= 1 or rails >= the number of runes
// the text is returned as is.
func RailFenceEncrypt(text string, rails int) string {
	runes := []rune(text)
	n := len(runes)
	if railFenceDegenerate(n, rails) {
		return text
	}

	rows := zigzag(n, rails)
	out := make([]rune, 0, n)
	for r := 0; r < rails; r++ {
		for i, row := range rows {
			if row == r {
				out = append(out, runes[i])
			}
		}
	}
	return string(out)
}

// RailFenceDecrypt inverts RailFenceEncrypt. The zig-zag path is marked
// first, the marked cells are filled row by row from the ciphertext, and the
// path is then walked again to read the plaintext in order.
func RailFenceDecrypt(text string, rails int) string {
	runes := []rune(text)
	n := len(runes)
	if railFenceDegenerate(n, rails) {
		return text
	}

	rows := zigzag(n, rails)
	fence := make([]rune, n)
	next := 0
	for r := 0; r < rails; r++ {
		for i, row := range rows {
			if row == r {
				fence[i] = runes[next]
				next++
			}
		}
	}
	return string(fence)
}
