// Package zipf converts between word frequencies and the Zipf scale.
//
// The Zipf scale is log10 of a frequency per billion words: a word with
// zipf value 6 appears once per thousand words, and each unit is a factor of
// ten. Zero is reserved for words that were never observed.
package zipf

import "math"

// FromFreq returns the zipf value of frequency f, or 0 when f <= 0.
func FromFreq(f float64) float64 {
	if f <= 0 {
		return 0
	}
	return math.Log10(f) + 9
}

// ToFreq is the inverse of FromFreq for positive zipf values.
func ToFreq(z float64) float64 {
	return math.Pow(10, z-9)
}

// Round2 rounds a zipf value to two decimals, the precision reference word
// lists are published at.
func Round2(z float64) float64 {
	return math.Round(z*100) / 100
}
