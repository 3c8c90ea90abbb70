package analysis

// FrequencyTable holds the relative frequency of each letter A-Z. It sums to 1
// when the source text had at least one letter and is all zeros otherwise.
type FrequencyTable [26]float64

// Of returns the frequency recorded for letter, which may be either case.
// Non-letters report 0.
func (t FrequencyTable) Of(letter rune) float64 {
	idx, ok := letterIndex(letter)
	if !ok {
		return 0
	}
	return t[idx]
}

// Sum adds up every entry in the table.
func (t FrequencyTable) Sum() float64 {
	total := 0.0
	for _, v := range t {
		total += v
	}
	return total
}

// Counts tallies the letters of text case-insensitively and returns the
// per-letter counts together with their total.
func Counts(text string) (counts [26]int, total int) {
	for _, r := range text {
		if idx, ok := letterIndex(r); ok {
			counts[idx]++
			total++
		}
	}
	return counts, total
}

// Frequencies computes the relative letter frequencies of text.
func Frequencies(text string) FrequencyTable {
	counts, total := Counts(text)
	var table FrequencyTable
	if total == 0 {
		return table
	}
	for i, c := range counts {
		table[i] = float64(c) / float64(total)
	}
	return table
}

// IndexOfCoincidence returns the probability that two letters drawn without
// replacement from text are identical: sum(n_i*(n_i-1)) / (N*(N-1)). English
// sits near 0.067 while uniformly random letters sit near 0.038. Texts with
// one letter or fewer report 0.
func IndexOfCoincidence(text string) float64 {
	counts, total := Counts(text)
	return icFromCounts(counts, total)
}

func icFromCounts(counts [26]int, total int) float64 {
	if total <= 1 {
		return 0
	}
	sum := 0
	for _, n := range counts {
		sum += n * (n - 1)
	}
	return float64(sum) / float64(total*(total-1))
}
