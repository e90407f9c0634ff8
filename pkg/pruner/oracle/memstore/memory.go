package memstore

import (
	"io"
	"sync"

	"github.com/cognicore/pruner/pkg/pruner/language"
	"github.com/cognicore/pruner/pkg/pruner/oracle"
	"github.com/cognicore/pruner/pkg/pruner/zipf"
)

// minSeenZipf keeps observed tokens distinguishable from unseen ones after
// rounding.
const minSeenZipf = 0.01

// Oracle is an in-memory implementation of oracle.Oracle holding one
// frequency table per language.
type Oracle struct {
	mu     sync.RWMutex
	tables map[string]map[string]float64 // ISO 639-2 code -> token -> probability
}

var _ oracle.Oracle = (*Oracle)(nil)

// New creates an empty oracle. Every token is unseen until a table is set.
func New() *Oracle {
	return &Oracle{tables: make(map[string]map[string]float64)}
}

// SetCounts replaces the table for lang with counts normalized to
// probabilities.
func (o *Oracle) SetCounts(lang language.Identity, counts map[string]float64) {
	o.SetFrequencies(lang, oracle.Normalize(counts))
}

// SetFrequencies replaces the table for lang with freqs. Tokens are
// normalized the way the tokenizer normalizes corpus words in lang; entries
// that collapse onto the same token are summed.
func (o *Oracle) SetFrequencies(lang language.Identity, freqs map[string]float64) {
	table := oracle.NormalizeTokens(lang, freqs)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.tables[lang.Code3] = table
}

// LoadWordList parses a word list (see oracle.ParseWordList) into the table
// for lang.
func (o *Oracle) LoadWordList(lang language.Identity, r io.Reader) error {
	counts, err := oracle.ParseWordList(r)
	if err != nil {
		return err
	}
	o.SetCounts(lang, counts)
	return nil
}

// Frequency implements oracle.Oracle.
func (o *Oracle) Frequency(token string, lang language.Identity) float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.tables[lang.Code3][token]
}

// ZipfFrequency implements oracle.Oracle. Values are rounded to two
// decimals; a seen token never reports 0.
func (o *Oracle) ZipfFrequency(token string, lang language.Identity) float64 {
	f := o.Frequency(token, lang)
	if f <= 0 {
		return 0
	}
	z := zipf.Round2(zipf.FromFreq(f))
	if z < minSeenZipf {
		return minSeenZipf
	}
	return z
}

// Frequencies returns a copy of the table for lang.
func (o *Oracle) Frequencies(lang language.Identity) map[string]float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()

	table := o.tables[lang.Code3]
	out := make(map[string]float64, len(table))
	for token, f := range table {
		out[token] = f
	}
	return out
}

// Len returns the number of tokens known for lang.
func (o *Oracle) Len(lang language.Identity) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.tables[lang.Code3])
}
