// Package wordstats measures how much of a candidate plaintext is made of
// recognisable English words.
package wordstats

import (
	"bufio"
	_ "embed"
	"strings"
	"sync"
	"unicode"
)

//go:embed words.txt
var wordsFile string

// Stats reports how many words of a text were recognised.
type Stats struct {
	Count      int     `json:"count"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

var dictionary = sync.OnceValue(func() map[string]struct{} {
	words := make(map[string]struct{}, 1024)
	scanner := bufio.NewScanner(strings.NewReader(wordsFile))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words[strings.ToLower(line)] = struct{}{}
	}
	return words
})

// Known reports whether word is in the embedded dictionary, ignoring case and
// surrounding punctuation.
func Known(word string) bool {
	w := clean(word)
	if w == "" {
		return false
	}
	_, ok := dictionary()[w]
	return ok
}

// Recognize splits text on whitespace and counts the words found in the
// dictionary. Tokens with no letters are not counted at all.
func Recognize(text string) Stats {
	var stats Stats
	for _, token := range strings.Fields(text) {
		w := clean(token)
		if w == "" {
			continue
		}
		stats.Total++
		if _, ok := dictionary()[w]; ok {
			stats.Count++
		}
	}
	if stats.Total > 0 {
		stats.Percentage = 100 * float64(stats.Count) / float64(stats.Total)
	}
	return stats
}

// Size returns the number of dictionary entries.
func Size() int {
	return len(dictionary())
}

// clean lower-cases a token and trims leading and trailing non-letters, so
// "Hello," and "(hello)" both become "hello".
func clean(token string) string {
	trimmed := strings.TrimFunc(token, func(r rune) bool { return !unicode.IsLetter(r) })
	return strings.ToLower(trimmed)
}
