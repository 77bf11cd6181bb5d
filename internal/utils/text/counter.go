// Package text provides small text-processing utilities shared across the
// aggregation pipeline.
package text

// CountRunes counts Unicode characters rather than bytes, so a summary length
// cap does not cut a multi-byte character in half.
func CountRunes(text string) int {
	return len([]rune(text))
}
