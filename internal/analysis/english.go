package analysis

// ReferenceFrequencies is the expected relative frequency of each letter A-Z
// in English prose.
var ReferenceFrequencies = FrequencyTable{
	0.0812, // A
	0.0149, // B
	0.0271, // C
	0.0432, // D
	0.1202, // E
	0.0230, // F
	0.0203, // G
	0.0592, // H
	0.0731, // I
	0.0010, // J
	0.0069, // K
	0.0398, // L
	0.0261, // M
	0.0695, // N
	0.0768, // O
	0.0182, // P
	0.0011, // Q
	0.0602, // R
	0.0628, // S
	0.0910, // T
	0.0288, // U
	0.0111, // V
	0.0209, // W
	0.0017, // X
	0.0211, // Y
	0.0007, // Z
}

// CommonPatterns lists the English fragments PatternScore looks for. Order is
// irrelevant to the score.
var CommonPatterns = [...]string{
	"the", "and", "ing", "ent", "ion",
	"to", "ed", "is", "it", "in",
	"at", "es", "re", "on", "an",
	"er", "nd", "as", "or", "ar",
}

const (
	spaceBonus     = 10.0
	spaceRatioLow  = 0.10
	spaceRatioHigh = 0.25
	icWeight       = 1000.0
	EnglishIC      = 0.067
	RandomIC       = 0.038
)
