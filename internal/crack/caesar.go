package crack

import (
	"sort"

	"github.com/RowanDark/cipherlab/internal/analysis"
	"github.com/RowanDark/cipherlab/internal/cipher"
)

const (
	caesarTopByScore = 5
	caesarTopByChi   = 3
)

var errNoCiphertext = cipher.NewUserError(cipher.KindEmptyInput, "Please enter valid ciphertext")

// Caesar tries all 26 shifts and ranks the decryptions by EnglishScore and by
// chi-squared fit. Ties keep the lower shift first.
func Caesar(ciphertext string) (CaesarResult, error) {
	if analysis.LetterCount(ciphertext) == 0 {
		return CaesarResult{}, errNoCiphertext
	}

	candidates := make([]CaesarCandidate, 0, 26)
	for shift := 0; shift < 26; shift++ {
		plain := cipher.CaesarDecrypt(ciphertext, shift)
		candidates = append(candidates, CaesarCandidate{
			Shift:      shift,
			Preview:    Preview(plain),
			Plaintext:  plain,
			ChiSquared: analysis.ChiSquared(analysis.Frequencies(plain)),
			Score:      analysis.EnglishScore(plain),
		})
	}

	byScore := append([]CaesarCandidate(nil), candidates...)
	sort.SliceStable(byScore, func(i, j int) bool {
		return byScore[i].Score > byScore[j].Score
	})

	byChi := append([]CaesarCandidate(nil), candidates...)
	sort.SliceStable(byChi, func(i, j int) bool {
		return byChi[i].ChiSquared < byChi[j].ChiSquared
	})

	return CaesarResult{
		TopByScore:      byScore[:caesarTopByScore],
		TopByChiSquared: byChi[:caesarTopByChi],
		BestShift:       byScore[0].Shift,
		BestPlaintext:   byScore[0].Plaintext,
	}, nil
}
