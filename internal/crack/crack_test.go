package crack

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/cipherlab/internal/analysis"
	"github.com/RowanDark/cipherlab/internal/cipher"
	"github.com/RowanDark/cipherlab/internal/testutil"
)

const dickens = testutil.Dickens

func shifts(cands []CaesarCandidate) []int {
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.Shift
	}
	return out
}

func TestCaesarShortMessage(t *testing.T) {
	res, err := Caesar("Khoor, Zruog!")
	require.NoError(t, err)

	require.Len(t, res.TopByScore, 5)
	require.Len(t, res.TopByChiSquared, 3)
	assert.Contains(t, shifts(res.TopByScore), 3)
	assert.Contains(t, shifts(res.TopByChiSquared), 3)

	for _, c := range res.TopByScore {
		if c.Shift == 3 {
			assert.Equal(t, "Hello, World!", c.Plaintext)
		}
	}
}

func TestCaesarRanking(t *testing.T) {
	res, err := Caesar("Aol xbpjr iyvdu mve qbtwz vcly aol shgf kvn.")
	require.NoError(t, err)

	assert.Equal(t, []int{7, 2, 3, 8, 21}, shifts(res.TopByScore))
	assert.Equal(t, []int{7, 13, 23}, shifts(res.TopByChiSquared))
	assert.Equal(t, 7, res.BestShift)
	assert.Equal(t, "The quick brown fox jumps over the lazy dog.", res.BestPlaintext)
	assert.Equal(t, 13.0, res.TopByScore[0].Score)
}

func TestCaesarLongText(t *testing.T) {
	res, err := Caesar(cipher.CaesarEncrypt(dickens, 11))
	require.NoError(t, err)

	assert.Equal(t, 11, res.BestShift)
	assert.Equal(t, 11, res.TopByChiSquared[0].Shift)
	assert.Equal(t, dickens, res.BestPlaintext)
	assert.True(t, strings.HasSuffix(res.TopByScore[0].Preview, "..."))
	assert.Equal(t, PreviewLength+3, len([]rune(res.TopByScore[0].Preview)))
}

func TestCaesarSortsAreStableAndOrdered(t *testing.T) {
	res, err := Caesar(cipher.CaesarEncrypt(dickens, 4))
	require.NoError(t, err)

	for i := 1; i < len(res.TopByScore); i++ {
		assert.GreaterOrEqual(t, res.TopByScore[i-1].Score, res.TopByScore[i].Score)
	}
	for i := 1; i < len(res.TopByChiSquared); i++ {
		assert.LessOrEqual(t, res.TopByChiSquared[i-1].ChiSquared, res.TopByChiSquared[i].ChiSquared)
	}
	for _, c := range append(res.TopByScore, res.TopByChiSquared...) {
		assert.Equal(t, cipher.CaesarDecrypt(cipher.CaesarEncrypt(dickens, 4), c.Shift), c.Plaintext)
	}
}

func TestVigenereRecoversKey(t *testing.T) {
	ct := cipher.VigenereEncrypt(dickens, "KEY")
	res, err := Vigenere(ct, VigenereOptions{MaxKeyLength: 10})
	require.NoError(t, err)

	require.Len(t, res.TopResults, 10)
	assert.Equal(t, "KEY", res.BestKey)
	assert.Equal(t, dickens, res.BestPlaintext)
	assert.Equal(t, 3, res.TopResults[0].KeyLength)
	assert.InDelta(t, 146.022, res.TopResults[0].Score, 0.01)
	assert.Equal(t, []string{"KEY", "KEYKEY", "KEYKEYKEY"}, []string{
		res.TopResults[0].Key, res.TopResults[1].Key, res.TopResults[2].Key,
	})

	for i, c := range res.TopResults {
		assert.Equal(t, cipher.VigenereDecrypt(ct, c.Key), c.Plaintext, "candidate %d", i)
		assert.Equal(t, len(c.Key), c.KeyLength)
		assert.InDelta(t, analysis.IndexOfCoincidence(c.Plaintext), c.IndexOfCoincidence, 1e-12)
		if i > 0 {
			assert.GreaterOrEqual(t, res.TopResults[i-1].Score, c.Score)
		}
	}
}

func TestVigenereKeyLengthLimits(t *testing.T) {
	ct := cipher.VigenereEncrypt(dickens, "KEY")

	res, err := Vigenere(ct, VigenereOptions{MaxKeyLength: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.KeysTried)
	assert.Equal(t, []string{"K", "E"}, []string{res.TopResults[0].Key, res.TopResults[1].Key})

	// Lengths beyond the letter count are skipped: 1 + 2*2 keys.
	res, err = Vigenere("Ab", VigenereOptions{MaxKeyLength: 10})
	require.NoError(t, err)
	assert.Equal(t, 6, res.KeysTried)
	assert.Equal(t, "WX", res.BestKey)
}

func TestVigenereCombinationCapIsBounded(t *testing.T) {
	ct := cipher.VigenereEncrypt(dickens, "KEY")

	res, err := Vigenere(ct, VigenereOptions{MaxKeyLength: MaxKeyLengthLimit, CombinationCap: 1000})
	require.NoError(t, err)
	assert.LessOrEqual(t, res.KeysTried, MaxKeyLengthLimit*DefaultCombinationCap)

	capped, err := Vigenere(ct, VigenereOptions{MaxKeyLength: MaxKeyLengthLimit})
	require.NoError(t, err)
	assert.Equal(t, capped.KeysTried, res.KeysTried)
}

func TestVigenereCustomScorer(t *testing.T) {
	flat := analysis.ScorerFunc(func(string) float64 { return 0 })
	res, err := Vigenere(cipher.VigenereEncrypt(dickens, "KEY"), VigenereOptions{MaxKeyLength: 2, Scorer: flat})
	require.NoError(t, err)

	// All scores tie, so the stable sort keeps generation order.
	assert.Equal(t, 1, res.TopResults[0].KeyLength)
	assert.Equal(t, 6, res.KeysTried)
}

func TestParseMaxKeyLength(t *testing.T) {
	tests := map[string]int{
		"10":   10,
		" 7 ":  7,
		"0":    1,
		"-4":   1,
		"99":   15,
		"abc":  10,
		"":     10,
		"3.5":  10,
		"15":   15,
		"16":   15,
		"+2":   2,
		"1e3":  10,
		"0x0F": 10,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseMaxKeyLength(in), "input %q", in)
	}
}

func TestRailFenceCandidates(t *testing.T) {
	ct := cipher.RailFenceEncrypt("WEAREDISCOVEREDFLEEATONCE", 3)
	res, err := RailFence(ct)
	require.NoError(t, err)

	require.Len(t, res.Candidates, 9)
	for i, c := range res.Candidates {
		assert.Equal(t, i+2, c.Rails)
		assert.Equal(t, cipher.RailFenceDecrypt(ct, c.Rails), c.Text)
	}
	assert.Equal(t, "WEAREDISCOVEREDFLEEATONCE", res.Candidates[1].Text)
}

func TestRailFenceRange(t *testing.T) {
	res, err := RailFence("abcdefgh")
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 3)

	for _, short := range []string{"a", "ab", "abc"} {
		res, err = RailFence(short)
		require.NoError(t, err, short)
		assert.NotNil(t, res.Candidates, short)
		assert.Empty(t, res.Candidates, short)
	}

	res, err = RailFence("abcd")
	require.NoError(t, err)
	assert.Equal(t, []RailFenceCandidate{{Rails: 2, Text: cipher.RailFenceDecrypt("abcd", 2)}}, res.Candidates)
}

func TestEmptyInput(t *testing.T) {
	_, err := Caesar("")
	assert.True(t, errors.Is(err, cipher.ErrEmptyInput))

	_, err = Caesar("1234 !!")
	assert.True(t, errors.Is(err, cipher.ErrEmptyInput))

	_, err = Vigenere("", VigenereOptions{MaxKeyLength: 5})
	assert.True(t, errors.Is(err, cipher.ErrEmptyInput))

	_, err = RailFence("   ")
	assert.True(t, errors.Is(err, cipher.ErrEmptyInput))

	ue, ok := cipher.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, "Please enter valid ciphertext", ue.Message)
}

func TestKeyCombinations(t *testing.T) {
	options := [][]int{{1, 2}, {3, 4}}

	all := slices.Collect(keyCombinations(options, 30))
	assert.Equal(t, []string{"BD", "BE", "CD", "CE"}, all)

	capped := keyCombinations(options, 3)
	assert.Equal(t, []string{"BD", "BE", "CD"}, slices.Collect(capped))
	// Ranging again restarts from the first key.
	assert.Equal(t, []string{"BD", "BE", "CD"}, slices.Collect(capped))

	var first []string
	for key := range keyCombinations(options, 30) {
		first = append(first, key)
		break
	}
	assert.Equal(t, []string{"BD"}, first)

	assert.Empty(t, slices.Collect(keyCombinations(nil, 30)))
	assert.Empty(t, slices.Collect(keyCombinations([][]int{{0}, {}}, 30)))
	assert.Empty(t, slices.Collect(keyCombinations(options, 0)))
}

func TestKeyCombinationsCapOnLongKeys(t *testing.T) {
	options := make([][]int, 15)
	for i := range options {
		options[i] = []int{0, 25}
	}
	keys := slices.Collect(keyCombinations(options, 30))
	require.Len(t, keys, 30)
	assert.Equal(t, strings.Repeat("A", 15), keys[0])
	assert.Equal(t, strings.Repeat("A", 14)+"Z", keys[1])
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short"))
	exact := strings.Repeat("é", PreviewLength)
	assert.Equal(t, exact, Preview(exact))
	assert.Equal(t, exact+"...", Preview(exact+"x"))
}
