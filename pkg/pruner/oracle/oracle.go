// Package oracle defines the reference word-frequency source the pruner
// compares a corpus against, and the word-list format used to populate it.
package oracle

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cognicore/pruner/pkg/pruner/ingest"
	"github.com/cognicore/pruner/pkg/pruner/internalerr"
	"github.com/cognicore/pruner/pkg/pruner/language"
)

// Oracle reports baseline frequencies of tokens in natural language.
type Oracle interface {
	// Frequency returns the probability of token in lang, 0 if never seen.
	Frequency(token string, lang language.Identity) float64
	// ZipfFrequency returns the zipf value of token in lang, 0 if never seen.
	ZipfFrequency(token string, lang language.Identity) float64
}

// ParseWordList reads a word list with one "token weight" entry per line.
// The weight may be a raw count or a frequency; a missing weight counts as
// 1. Blank lines and lines starting with # are skipped, repeated tokens are
// summed and tokens are lowercased.
func ParseWordList(r io.Reader) (map[string]float64, error) {
	counts := make(map[string]float64)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		weight := 1.0
		if len(parts) > 1 {
			w, err := strconv.ParseFloat(parts[1], 64)
			if err != nil || w < 0 {
				return nil, fmt.Errorf("word list line %d: bad weight %q: %w", lineNo, parts[1], internalerr.ErrInvalidInput)
			}
			weight = w
		}
		counts[strings.ToLower(parts[0])] += weight
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Normalize divides every count by the total so the result sums to 1.
// Zero-weight entries are dropped.
func Normalize(counts map[string]float64) map[string]float64 {
	var total float64
	for _, c := range counts {
		total += c
	}
	freqs := make(map[string]float64, len(counts))
	if total == 0 {
		return freqs
	}
	for token, c := range counts {
		if c > 0 {
			freqs[token] = c / total
		}
	}
	return freqs
}

// NormalizeTokens rekeys a table by ingest.TokenNormalizer for lang, summing
// entries that map to the same token and dropping those that normalize to
// nothing.
func NormalizeTokens(lang language.Identity, table map[string]float64) map[string]float64 {
	normalize := ingest.TokenNormalizer(lang)
	out := make(map[string]float64, len(table))
	for token, v := range table {
		if key := normalize(token); key != "" {
			out[key] += v
		}
	}
	return out
}
