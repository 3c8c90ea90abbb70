package wordstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecognize(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		count int
		total int
	}{
		{"all english", "It was the best of times", 6, 6},
		{"punctuation and case", "Hello, World!", 2, 2},
		{"gibberish", "Khoor, Zruog!", 0, 2},
		{"mixed", "the qzx dog", 2, 3},
		{"numbers ignored", "1984 was the year", 3, 3},
		{"empty", "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := Recognize(tt.text)
			assert.Equal(t, tt.count, stats.Count)
			assert.Equal(t, tt.total, stats.Total)
			if tt.total > 0 {
				assert.InDelta(t, 100*float64(tt.count)/float64(tt.total), stats.Percentage, 1e-9)
			} else {
				assert.Zero(t, stats.Percentage)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("THE"))
	assert.True(t, Known("(secret)"))
	assert.False(t, Known("zruog"))
	assert.False(t, Known("..."))
	assert.Greater(t, Size(), 400)
}
