package textutil

import "math"

// Fingerprint represents a term-frequency vector for text similarity comparison.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint creates a fingerprint from the provided text.
// Returns nil if the text produces no tokens.
func NewFingerprint(text string) *Fingerprint {
	return FingerprintTokens(Words(text))
}

// FingerprintTokens builds a fingerprint from already folded tokens.
func FingerprintTokens(tokens []string) *Fingerprint {
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		if token == "" {
			continue
		}
		counts[token]++
	}
	if len(counts) == 0 {
		return nil
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return &Fingerprint{
		tokens: counts,
		norm:   math.Sqrt(norm),
	}
}
