package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/segmentio/asm/ascii"
)

// Scorer rates how plausible a candidate plaintext is. Higher is better.
type Scorer interface {
	Score(text string) float64
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(text string) float64

// Score calls f(text).
func (f ScorerFunc) Score(text string) float64 { return f(text) }

// EnglishScorer scores with EnglishScore.
type EnglishScorer struct{}

// Score implements Scorer.
func (EnglishScorer) Score(text string) float64 { return EnglishScore(text) }

// VigenereScorer scores with VigenereScore.
type VigenereScorer struct{}

// Score implements Scorer.
func (VigenereScorer) Score(text string) float64 { return VigenereScore(text) }

// ChiSquared measures the distance between observed and ReferenceFrequencies:
// sum((o-e)^2/e) over every letter with a non-zero expectation. Lower means a
// closer match to English and the result is never negative.
func ChiSquared(observed FrequencyTable) float64 {
	chi := 0.0
	for i, expected := range ReferenceFrequencies {
		if expected <= 0 {
			continue
		}
		diff := observed[i] - expected
		chi += diff * diff / expected
	}
	return chi
}

// ShiftedChiSquared is ChiSquared of the table obtained by rotating every
// letter of observed back by shift, which is what the letter frequencies of a
// Caesar decryption with that shift look like.
func ShiftedChiSquared(observed FrequencyTable, shift int) float64 {
	shift = ((shift % 26) + 26) % 26
	var rotated FrequencyTable
	for i := range observed {
		rotated[i] = observed[(i+shift)%26]
	}
	return ChiSquared(rotated)
}

// PatternScore counts case-insensitive, overlapping occurrences of
// CommonPatterns in text and adds a flat bonus when spaces make up between 10%
// and 25% of the characters.
func PatternScore(text string) float64 {
	score := 0
	for _, pattern := range CommonPatterns {
		score += countFold(text, pattern)
	}

	result := float64(score)
	length := len(text)
	if !ascii.ValidString(text) {
		length = utf8.RuneCountInString(text)
	}
	if length > 0 {
		ratio := float64(strings.Count(text, " ")) / float64(length)
		if ratio > spaceRatioLow && ratio < spaceRatioHigh {
			result += spaceBonus
		}
	}
	return result
}

// countFold counts overlapping case-insensitive matches of an ASCII pattern.
func countFold(text, pattern string) int {
	n := 0
	for i := 0; i+len(pattern) <= len(text); i++ {
		if ascii.EqualFoldString(text[i:i+len(pattern)], pattern) {
			n++
		}
	}
	return n
}

// EnglishScore is the plausibility score used for Caesar candidates.
func EnglishScore(text string) float64 {
	return PatternScore(text)
}

// VigenereScore adds 1000 times the index of coincidence to PatternScore so
// that decryptions whose letter distribution looks monoalphabetic win.
func VigenereScore(text string) float64 {
	return PatternScore(text) + icWeight*IndexOfCoincidence(text)
}
