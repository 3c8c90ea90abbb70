package crack

import (
	"sort"
	"strconv"
	"strings"

	"github.com/RowanDark/cipherlab/internal/analysis"
	"github.com/RowanDark/cipherlab/internal/cipher"
)

const (
	DefaultMaxKeyLength      = 10
	MaxKeyLengthLimit        = 15
	DefaultShiftsPerPosition = 2
	DefaultCombinationCap    = 30
	vigenereTopResults       = 10
)

// VigenereOptions tunes the key search. Zero fields take the defaults.
type VigenereOptions struct {
	// MaxKeyLength is the longest key tried, clamped to [1, 15].
	MaxKeyLength int
	// ShiftsPerPosition is how many of the best-fitting shifts are kept for
	// each key position.
	ShiftsPerPosition int
	// CombinationCap bounds the keys tried per key length, at most 30.
	CombinationCap int
	// Scorer ranks decryptions; analysis.VigenereScorer when nil.
	Scorer analysis.Scorer
}

func (o VigenereOptions) withDefaults() VigenereOptions {
	switch {
	case o.MaxKeyLength <= 0:
		o.MaxKeyLength = DefaultMaxKeyLength
	case o.MaxKeyLength > MaxKeyLengthLimit:
		o.MaxKeyLength = MaxKeyLengthLimit
	}
	if o.ShiftsPerPosition <= 0 {
		o.ShiftsPerPosition = DefaultShiftsPerPosition
	}
	o.ShiftsPerPosition = min(o.ShiftsPerPosition, 26)
	if o.CombinationCap <= 0 {
		o.CombinationCap = DefaultCombinationCap
	}
	o.CombinationCap = min(o.CombinationCap, DefaultCombinationCap)
	if o.Scorer == nil {
		o.Scorer = analysis.VigenereScorer{}
	}
	return o
}

// ParseMaxKeyLength reads a user-typed maximum key length. Anything that is
// not an integer falls back to the default; integers are clamped to [1, 15].
func ParseMaxKeyLength(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return DefaultMaxKeyLength
	}
	return max(1, min(n, MaxKeyLengthLimit))
}

// Vigenere searches key lengths 1..MaxKeyLength. For each length the letters
// are dealt into interleaved columns, each column keeps its best-fitting
// Caesar shifts, and combinations of those shifts are tried as keys. Every
// trial decryption is scored and the ten best across all lengths are
// returned, highest score first.
func Vigenere(ciphertext string, opts VigenereOptions) (VigenereResult, error) {
	letters := analysis.Normalize(ciphertext)
	if letters == "" {
		return VigenereResult{}, errNoCiphertext
	}
	opts = opts.withDefaults()

	var pool []VigenereCandidate
	maxLen := min(opts.MaxKeyLength, len(letters))
	for keyLength := 1; keyLength <= maxLen; keyLength++ {
		options := columnShifts(letters, keyLength, opts.ShiftsPerPosition)
		for key := range keyCombinations(options, opts.CombinationCap) {
			pool = append(pool, scoreKey(ciphertext, key, opts.Scorer))
		}
	}

	if len(pool) == 0 {
		return VigenereResult{}, cipher.NewUserError(cipher.KindNoViableCandidates,
			"Could not find any viable keys. Try different ciphertext or adjust parameters.")
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	top := pool[:min(len(pool), vigenereTopResults)]
	return VigenereResult{
		TopResults:    append([]VigenereCandidate(nil), top...),
		BestKey:       top[0].Key,
		BestPlaintext: top[0].Plaintext,
		KeysTried:     len(pool),
	}, nil
}

// columnShifts returns, for each of the keyLength columns of letters, the
// keep shifts whose Caesar decryption of that column fits English best.
func columnShifts(letters string, keyLength, keep int) [][]int {
	columns := make([]strings.Builder, keyLength)
	for i := 0; i < len(letters); i++ {
		columns[i%keyLength].WriteByte(letters[i])
	}

	options := make([][]int, keyLength)
	for pos := range columns {
		freq := analysis.Frequencies(columns[pos].String())
		var chi [26]float64
		shifts := make([]int, 26)
		for s := range shifts {
			shifts[s] = s
			chi[s] = analysis.ShiftedChiSquared(freq, s)
		}
		sort.SliceStable(shifts, func(i, j int) bool {
			return chi[shifts[i]] < chi[shifts[j]]
		})
		options[pos] = shifts[:keep]
	}
	return options
}

func scoreKey(ciphertext, key string, scorer analysis.Scorer) VigenereCandidate {
	plain := cipher.VigenereDecrypt(ciphertext, key)
	return VigenereCandidate{
		Key:                key,
		KeyLength:          len(key),
		Preview:            Preview(plain),
		Plaintext:          plain,
		ChiSquared:         analysis.ChiSquared(analysis.Frequencies(plain)),
		Score:              scorer.Score(plain),
		IndexOfCoincidence: analysis.IndexOfCoincidence(plain),
	}
}
