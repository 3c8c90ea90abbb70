package crack

import "iter"

// keyCombinations yields keys built from one shift per position, taken from
// options[i] for position i, in odometer order: the last position changes
// fastest. At most limit keys are produced. Each range over the returned
// sequence starts again from the first key.
func keyCombinations(options [][]int, limit int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if len(options) == 0 || limit <= 0 {
			return
		}
		for _, opts := range options {
			if len(opts) == 0 {
				return
			}
		}

		idx := make([]int, len(options))
		key := make([]byte, len(options))
		for produced := 0; produced < limit; produced++ {
			for pos, opts := range options {
				key[pos] = byte('A' + opts[idx[pos]])
			}
			if !yield(string(key)) {
				return
			}

			pos := len(idx) - 1
			for ; pos >= 0; pos-- {
				idx[pos]++
				if idx[pos] < len(options[pos]) {
					break
				}
				idx[pos] = 0
			}
			if pos < 0 {
				return
			}
		}
	}
}
