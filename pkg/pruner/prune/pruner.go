// Package prune removes sentences whose vocabulary is anomalous compared to
// a reference frequency model.
//
// A Pruner wraps a read-only corpus and an ExclusionSet. Each pruning
// method looks only at the sentences retained by earlier calls and adds the
// sentences it rejects to the set; nothing is ever un-excluded.
//
// The pervasive passes compare how often a token (or n-gram) occurs in the
// corpus with how often it occurs in natural language. For each unit a
// ceiling count is derived from the baseline zipf value plus minZipfDiff,
// scaled by the number of units currently retained. Sentences are then
// walked in order with running counts; a sentence that would push a unit
// past both minCount and its ceiling is rejected and its own occurrences
// are not counted, so it does not penalize the sentences after it. Each
// epoch recomputes the ceilings over the smaller retained set.
//
// A Pruner is not safe for concurrent use.
package prune

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/cognicore/pruner/pkg/pruner/corpus"
	"github.com/cognicore/pruner/pkg/pruner/internalerr"
	"github.com/cognicore/pruner/pkg/pruner/language"
	"github.com/cognicore/pruner/pkg/pruner/ngram"
	"github.com/cognicore/pruner/pkg/pruner/oracle"
	"github.com/cognicore/pruner/pkg/pruner/zipf"
)

// Defaults for the pervasive passes.
const (
	DefaultEpochs        = 3
	DefaultMinZipfDiff   = 1.0
	DefaultTokenMinCount = 0
	DefaultNgramSize     = 3
	DefaultNgramMinCount = 1000
)

// NgramBaseline reports the baseline zipf value of an n-gram, 0 if unseen.
type NgramBaseline interface {
	ZipfFrequency(ngram []string) float64
}

// NgramProvider supplies the baseline model for a language and n.
type NgramProvider interface {
	Baseline(lang language.Identity, n int) (NgramBaseline, error)
}

// NgramProviderFunc adapts a function to NgramProvider.
type NgramProviderFunc func(lang language.Identity, n int) (NgramBaseline, error)

// Baseline implements NgramProvider.
func (f NgramProviderFunc) Baseline(lang language.Identity, n int) (NgramBaseline, error) {
	return f(lang, n)
}

// StoreProvider serves baselines from persisted n-gram models.
func StoreProvider(s *ngram.Store) NgramProvider {
	return NgramProviderFunc(func(lang language.Identity, n int) (NgramBaseline, error) {
		m, err := s.Model(lang, n)
		if err != nil {
			return nil, err
		}
		return m, nil
	})
}

// Options configures a Pruner.
type Options struct {
	Oracle oracle.Oracle // token baseline; nil treats every token as unseen
	Ngrams NgramProvider // required by PrunePervasiveNgrams
	Logger *slog.Logger
}

// Pruner accumulates sentence exclusions over a corpus.
type Pruner struct {
	corpus   *corpus.Corpus
	oracle   oracle.Oracle
	ngrams   NgramProvider
	logger   *slog.Logger
	excluded ExclusionSet
}

// New creates a pruner with an empty exclusion set.
func New(c *corpus.Corpus, opts Options) *Pruner {
	if opts.Oracle == nil {
		opts.Oracle = emptyOracle{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Pruner{
		corpus: c,
		oracle: opts.Oracle,
		ngrams: opts.Ngrams,
		logger: opts.Logger.With("lang", c.Language().Code3),
	}
}

// Corpus returns the underlying corpus.
func (p *Pruner) Corpus() *corpus.Corpus {
	return p.corpus
}

// Retained yields the sentences not excluded so far, in index order.
func (p *Pruner) Retained() iter.Seq[corpus.Sentence] {
	return p.filter(false)
}

// Excluded yields the excluded sentences, in index order.
func (p *Pruner) Excluded() iter.Seq[corpus.Sentence] {
	return p.filter(true)
}

func (p *Pruner) filter(excluded bool) iter.Seq[corpus.Sentence] {
	return func(yield func(corpus.Sentence) bool) {
		for s := range p.corpus.All() {
			if p.excluded.Contains(s.Index) != excluded {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

// Exclusions returns a copy of the current exclusion set.
func (p *Pruner) Exclusions() ExclusionSet {
	return p.excluded.Clone()
}

// PruneLongSentences excludes retained sentences with more than maxTokens
// tokens and returns how many were newly excluded.
func (p *Pruner) PruneLongSentences(maxTokens int) int {
	var bad []int
	for s := range p.Retained() {
		if len(s.Tokens) > maxTokens {
			bad = append(bad, s.Index)
		}
	}
	return p.exclude("long_sentences", bad)
}

// PruneUnknownTokens excludes retained sentences holding at least one token
// the oracle has never seen.
func (p *Pruner) PruneUnknownTokens() int {
	lang := p.corpus.Language()
	var bad []int
	for s := range p.Retained() {
		if p.hasUnknownToken(s.Tokens, lang) {
			bad = append(bad, s.Index)
		}
	}
	return p.exclude("unknown_tokens", bad)
}

func (p *Pruner) hasUnknownToken(tokens []string, lang language.Identity) bool {
	for _, tok := range tokens {
		if p.oracle.ZipfFrequency(tok, lang) == 0 {
			return true
		}
	}
	return false
}

// PrunePervasiveTokens runs epochs passes excluding sentences with tokens
// that are over-represented against the oracle by at least minZipfDiff.
// Repeated calls may exclude more sentences since every call recomputes its
// ceilings over a smaller retained set.
func (p *Pruner) PrunePervasiveTokens(minCount int, minZipfDiff float64, epochs int) int {
	lang := p.corpus.Language()
	units := func(tokens []string) [][]string {
		return ngram.Windows(tokens, 1)
	}
	baseline := func(unit []string) float64 {
		return p.oracle.ZipfFrequency(unit[0], lang)
	}
	return p.prunePervasive("pervasive_tokens", units, baseline, minCount, minZipfDiff, epochs)
}

// PrunePervasiveNgrams is PrunePervasiveTokens over n-token windows, using
// the n-gram model for the corpus language as baseline.
func (p *Pruner) PrunePervasiveNgrams(n, minCount int, minZipfDiff float64, epochs int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("prune pervasive n-grams: n must be positive, got %d: %w", n, internalerr.ErrInvalidInput)
	}
	if p.ngrams == nil {
		return 0, fmt.Errorf("prune pervasive n-grams: no n-gram provider: %w", internalerr.ErrInvalidInput)
	}
	model, err := p.ngrams.Baseline(p.corpus.Language(), n)
	if err != nil {
		return 0, fmt.Errorf("prune pervasive n-grams: %w", err)
	}

	units := func(tokens []string) [][]string {
		return ngram.Windows(tokens, n)
	}
	kind := fmt.Sprintf("pervasive_%dgrams", n)
	return p.prunePervasive(kind, units, model.ZipfFrequency, minCount, minZipfDiff, epochs), nil
}

func (p *Pruner) prunePervasive(
	kind string,
	units func(tokens []string) [][]string,
	baseline func(unit []string) float64,
	minCount int,
	minZipfDiff float64,
	epochs int,
) int {
	added := 0
	for e := 0; e < epochs; e++ {
		ceilings := p.ceilings(units, baseline, minZipfDiff)

		counts := make(map[string]int, len(ceilings))
		var bad []int
		for s := range p.Retained() {
			if !commitIfFits(counts, keysOf(units(s.Tokens)), ceilings, minCount) {
				bad = append(bad, s.Index)
			}
		}

		n := p.excluded.Union(bad)
		added += n
		p.logger.Debug("pruning epoch done", "kind", kind, "epoch", e, "excluded", n)
	}

	p.logger.Info("pruned sentences", "kind", kind, "excluded", added, "epochs", epochs, "retained", p.corpus.Len()-p.excluded.Len())
	return added
}

// ceilings returns, for every unit of the retained sentences, the count at
// which its corpus frequency reaches its baseline zipf plus minZipfDiff.
func (p *Pruner) ceilings(units func([]string) [][]string, baseline func([]string) float64, minZipfDiff float64) map[string]int {
	t := newTally()
	for s := range p.Retained() {
		t.add(units(s.Tokens))
	}

	ceilings := make(map[string]int, len(t.counts))
	for key, unit := range t.units {
		ceilings[key] = ceilingCount(zipf.ToFreq(baseline(unit)+minZipfDiff) * float64(t.total))
	}
	return ceilings
}

func (p *Pruner) exclude(kind string, bad []int) int {
	added := p.excluded.Union(bad)
	p.logger.Info("pruned sentences", "kind", kind, "excluded", added, "retained", p.corpus.Len()-p.excluded.Len())
	return added
}

type emptyOracle struct{}

func (emptyOracle) Frequency(string, language.Identity) float64     { return 0 }
func (emptyOracle) ZipfFrequency(string, language.Identity) float64 { return 0 }
