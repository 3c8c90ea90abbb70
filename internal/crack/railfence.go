package crack

import (
	"strings"
	"unicode/utf8"

	"github.com/RowanDark/cipherlab/internal/cipher"
)

// maxRails bounds the rail counts tried regardless of text length.
const maxRails = 10

// RailFence decrypts ciphertext with every rail count from 2 to
// min(n/2, 10), n being its length in runes. Nothing is scored: the key space
// is small enough to show every candidate. Text shorter than four runes has no
// rail count in range and yields an empty list.
func RailFence(ciphertext string) (RailFenceResult, error) {
	if strings.TrimSpace(ciphertext) == "" {
		return RailFenceResult{}, errNoCiphertext
	}

	limit := min(utf8.RuneCountInString(ciphertext)/2, maxRails)
	result := RailFenceResult{Candidates: make([]RailFenceCandidate, 0, max(limit-1, 0))}
	for rails := 2; rails <= limit; rails++ {
		result.Candidates = append(result.Candidates, RailFenceCandidate{
			Rails: rails,
			Text:  cipher.RailFenceDecrypt(ciphertext, rails),
		})
	}
	return result, nil
}
