package crack

import "unicode/utf8"

// PreviewLength is the number of runes of a candidate shown in listings.
const PreviewLength = 100

// CaesarCandidate is the decryption of a ciphertext under one shift.
type CaesarCandidate struct {
	Shift      int     `json:"shift"`
	Preview    string  `json:"preview"`
	Plaintext  string  `json:"plaintext"`
	ChiSquared float64 `json:"chiSquared"`
	Score      float64 `json:"score"`
}

// CaesarResult ranks the 26 shifts two ways. The heuristic score and the
// chi-squared fit can disagree, so both rankings are kept.
type CaesarResult struct {
	TopByScore      []CaesarCandidate `json:"topByScore"`
	TopByChiSquared []CaesarCandidate `json:"topByChiSquared"`
	BestShift       int               `json:"bestShift"`
	BestPlaintext   string            `json:"bestPlaintext"`
}

// VigenereCandidate is the decryption of a ciphertext under one trial key.
type VigenereCandidate struct {
	Key                string  `json:"key"`
	KeyLength          int     `json:"keyLength"`
	Preview            string  `json:"preview"`
	Plaintext          string  `json:"plaintext"`
	ChiSquared         float64 `json:"chiSquared"`
	Score              float64 `json:"score"`
	IndexOfCoincidence float64 `json:"indexOfCoincidence"`
}

// VigenereResult holds the best trial keys, highest score first.
type VigenereResult struct {
	TopResults    []VigenereCandidate `json:"topResults"`
	BestKey       string              `json:"bestKey"`
	BestPlaintext string              `json:"bestPlaintext"`
	// KeysTried counts every key decrypted across all key lengths.
	KeysTried int `json:"keysTried"`
}

// RailFenceCandidate is the decryption under one rail count.
type RailFenceCandidate struct {
	Rails int    `json:"rails"`
	Text  string `json:"text"`
}

// RailFenceResult lists every rail count tried, in increasing order.
type RailFenceResult struct {
	Candidates []RailFenceCandidate `json:"candidates"`
}

// Preview returns the first PreviewLength runes of text, followed by "..."
// when anything was cut.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:PreviewLength]) + "..."
}
