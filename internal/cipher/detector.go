package cipher

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/RowanDark/cipherlab/internal/analysis"
)

const (
	// monoalphabetic texts keep an English-like IC; below this it looks polyalphabetic
	monoICLow  = 0.045
	monoICHigh = 0.060
	// chi-squared against English above which a histogram no longer fits
	chiFitCeiling    = 1.5
	minConfidence    = 0.3
	defaultMinLetter = 20
)

// ClassicalDetector guesses which of the supported ciphers produced a text
// from its letter statistics alone.
type ClassicalDetector struct {
	// MinLetters is the sample size below which confidences are damped
	MinLetters int
}

// NewClassicalDetector creates a detector with default settings
func NewClassicalDetector() *ClassicalDetector {
	return &ClassicalDetector{MinLetters: defaultMinLetter}
}

// Detect ranks the cipher families by how well the statistics of input fit
// each of them.
func (d *ClassicalDetector) Detect(ctx context.Context, input []byte) ([]DetectionResult, error) {
	text := string(input)
	_, total := analysis.Counts(text)
	if total == 0 {
		return nil, NewUserError(KindEmptyInput, "Input contains no letters to analyse")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := sampleStats{
		letters: total,
		ic:      analysis.IndexOfCoincidence(text),
		freq:    analysis.Frequencies(text),
	}
	s.chiPlain = analysis.ChiSquared(s.freq)
	s.bestShift, s.chiBest = bestShift(s.freq)

	results := []DetectionResult{}
	results = append(results, d.detectTransposition(s)...)
	results = append(results, d.detectCaesar(s)...)
	results = append(results, d.detectVigenere(s)...)

	if total < d.minLetters() {
		for i := range results {
			results[i].Confidence *= 0.6
			results[i].Reasoning += fmt.Sprintf(" (only %d letters, low confidence)", total)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	filtered := []DetectionResult{}
	for _, r := range results {
		if r.Confidence >= minConfidence {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// SupportedCiphers returns the cipher families this detector can identify
func (d *ClassicalDetector) SupportedCiphers() []Kind {
	return Kinds()
}

func (d *ClassicalDetector) minLetters() int {
	if d.MinLetters <= 0 {
		return defaultMinLetter
	}
	return d.MinLetters
}

type sampleStats struct {
	letters   int
	ic        float64
	freq      analysis.FrequencyTable
	chiPlain  float64
	bestShift int
	chiBest   float64
}

// detectTransposition: a transposition moves letters around without changing
// them, so the histogram already fits English.
func (d *ClassicalDetector) detectTransposition(s sampleStats) []DetectionResult {
	if s.bestShift != 0 {
		return nil
	}
	confidence := 0.9 * monoLikelihood(s.ic) * fit(s.chiPlain)
	return []DetectionResult{{
		Cipher:     RailFence,
		Confidence: confidence,
		Reasoning:  fmt.Sprintf("Letter frequencies already match English (chi² %.2f, IC %.3f); consistent with a transposition", s.chiPlain, s.ic),
	}}
}

// detectCaesar: a shift keeps the IC but rotates the histogram.
func (d *ClassicalDetector) detectCaesar(s sampleStats) []DetectionResult {
	if s.bestShift == 0 {
		return nil
	}
	shift := s.bestShift
	confidence := 0.95 * monoLikelihood(s.ic) * fit(s.chiBest)
	return []DetectionResult{{
		Cipher:     Caesar,
		Confidence: confidence,
		Reasoning:  fmt.Sprintf("English-like IC %.3f and the histogram fits English after shifting back by %d (chi² %.2f vs %.2f unshifted)", s.ic, shift, s.chiBest, s.chiPlain),
		Shift:      &shift,
	}}
}

// detectVigenere: a repeating key flattens the distribution towards random.
func (d *ClassicalDetector) detectVigenere(s sampleStats) []DetectionResult {
	poly := 1 - monoLikelihood(s.ic)
	if poly <= 0 {
		return nil
	}
	estimate := friedmanEstimate(s.ic, s.letters)
	return []DetectionResult{{
		Cipher:            Vigenere,
		Confidence:        math.Min(0.3+0.6*poly, 0.9),
		Reasoning:         fmt.Sprintf("IC %.3f is below English (%.3f); a polyalphabetic key of length ~%d is likely", s.ic, analysis.EnglishIC, estimate),
		KeyLengthEstimate: estimate,
	}}
}

// bestShift finds the Caesar shift whose decryption fits English best.
func bestShift(freq analysis.FrequencyTable) (int, float64) {
	best, bestChi := 0, math.Inf(1)
	for shift := 0; shift < alphabetSize; shift++ {
		chi := analysis.ShiftedChiSquared(freq, shift)
		if chi < bestChi {
			best, bestChi = shift, chi
		}
	}
	return best, bestChi
}

// friedmanEstimate approximates the Vigenère key length from the IC of a
// sample of n letters.
func friedmanEstimate(ic float64, n int) int {
	N := float64(n)
	denom := (N-1)*ic - analysis.RandomIC*N + analysis.EnglishIC
	if denom <= 0 {
		return 0
	}
	k := int(math.Round((analysis.EnglishIC - analysis.RandomIC) * N / denom))
	if k < 1 {
		k = 1
	}
	return k
}

func monoLikelihood(ic float64) float64 {
	return clamp01((ic - monoICLow) / (monoICHigh - monoICLow))
}

func fit(chi float64) float64 {
	return clamp01(1 - chi/chiFitCeiling)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
