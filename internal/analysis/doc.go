// Package analysis holds the statistics used to judge whether a candidate
// plaintext looks like English.
//
// # Overview
//
// Three families of measurements are provided:
//   - Letter statistics: Normalize, Frequencies and IndexOfCoincidence work on
//     the ASCII letters of a text and ignore everything else.
//   - Goodness of fit: ChiSquared compares an observed FrequencyTable with
//     ReferenceFrequencies. Lower is better.
//   - Heuristic scores: PatternScore, EnglishScore and VigenereScore count
//     common English fragments and reward a natural space ratio. Higher is
//     better.
//
// Chi-squared and the heuristic scores can disagree, so callers rank by each
// independently rather than folding them into a single number.
//
// # Thread Safety
//
// Every function is pure. The reference tables are package-level values that
// are never written after initialisation and can be shared freely.
package analysis
