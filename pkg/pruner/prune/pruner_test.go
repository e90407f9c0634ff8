package prune

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/pruner/pkg/pruner/corpus"
	"github.com/cognicore/pruner/pkg/pruner/internalerr"
	"github.com/cognicore/pruner/pkg/pruner/language"
	"github.com/cognicore/pruner/pkg/pruner/ngram"
	"github.com/cognicore/pruner/pkg/pruner/oracle/memstore"
	"github.com/cognicore/pruner/pkg/pruner/zipf"
)

var english = language.MustResolve("en")

// zipfOracle returns fixed zipf values per token.
type zipfOracle map[string]float64

func (o zipfOracle) Frequency(token string, _ language.Identity) float64 {
	if z := o[token]; z > 0 {
		return zipf.ToFreq(z)
	}
	return 0
}

func (o zipfOracle) ZipfFrequency(token string, _ language.Identity) float64 {
	return o[token]
}

// zipfBaseline returns fixed zipf values per n-gram.
type zipfBaseline map[string]float64

func (b zipfBaseline) ZipfFrequency(ngram []string) float64 {
	return b[strings.Join(ngram, " ")]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPruner(texts []string, opts Options) *Pruner {
	c := corpus.New(english, nil)
	c.AddSentences(texts)
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	return New(c, opts)
}

func indexes(seq func(func(corpus.Sentence) bool)) []int {
	out := []int{}
	for s := range seq {
		out = append(out, s.Index)
	}
	return out
}

func assertPartition(t *testing.T, p *Pruner) {
	t.Helper()
	seen := make(map[int]int)
	for _, i := range indexes(p.Retained()) {
		seen[i]++
	}
	for _, i := range indexes(p.Excluded()) {
		seen[i]++
	}
	if len(seen) != p.Corpus().Len() {
		t.Errorf("Retained and excluded cover %d of %d sentences", len(seen), p.Corpus().Len())
	}
	for i, n := range seen {
		if n != 1 {
			t.Errorf("Sentence %d appears %d times across retained and excluded", i, n)
		}
		if i < 0 || i >= p.Corpus().Len() {
			t.Errorf("Index %d is out of range", i)
		}
	}
}

func TestNewPrunerRetainsEverything(t *testing.T) {
	p := newTestPruner([]string{"a b", "c"}, Options{})

	if got := indexes(p.Retained()); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("Expected all sentences retained, got %v", got)
	}
	if got := indexes(p.Excluded()); len(got) != 0 {
		t.Errorf("Expected nothing excluded, got %v", got)
	}
	assertPartition(t, p)
}

func TestUnknownTokensEndToEnd(t *testing.T) {
	o := memstore.New()
	o.SetCounts(english, map[string]float64{"the": 50, "cat": 5, "sat": 2, "on": 20})

	p := newTestPruner([]string{"the cat sat", "the cat sat", "the cat sat", "xyzzy plugh wobble"}, Options{Oracle: o})

	if n := p.PruneUnknownTokens(); n != 1 {
		t.Errorf("Expected 1 sentence excluded, got %d", n)
	}
	if got := indexes(p.Retained()); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("Expected first three retained in order, got %v", got)
	}
	if got := indexes(p.Excluded()); !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("Expected only sentence 3 excluded, got %v", got)
	}
	assertPartition(t, p)
}

func TestUnknownTokensIffZeroZipf(t *testing.T) {
	o := zipfOracle{"known": 3, "also": 0.01}
	p := newTestPruner([]string{"known also", "known mystery", "", "mystery"}, Options{Oracle: o})

	p.PruneUnknownTokens()

	if got := indexes(p.Excluded()); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("Expected [1 3] excluded, got %v", got)
	}
}

func TestUnknownTokensIdempotent(t *testing.T) {
	o := zipfOracle{"a": 5}
	p := newTestPruner([]string{"a", "b", "a b"}, Options{Oracle: o})

	if n := p.PruneUnknownTokens(); n != 2 {
		t.Errorf("Expected 2 excluded, got %d", n)
	}
	if n := p.PruneUnknownTokens(); n != 0 {
		t.Errorf("Second call should exclude nothing, got %d", n)
	}
}

func TestNilOracleTreatsTokensAsUnknown(t *testing.T) {
	p := newTestPruner([]string{"a", ""}, Options{})

	p.PruneUnknownTokens()
	if got := indexes(p.Retained()); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("Only the empty sentence should survive, got %v", got)
	}
}

func TestPruneLongSentences(t *testing.T) {
	p := newTestPruner([]string{"one two three", "one", "one two three four", ""}, Options{})

	if n := p.PruneLongSentences(3); n != 1 {
		t.Errorf("Expected 1 excluded, got %d", n)
	}
	for s := range p.Retained() {
		if len(s.Tokens) > 3 {
			t.Errorf("Retained sentence %d has %d tokens", s.Index, len(s.Tokens))
		}
	}
	for s := range p.Excluded() {
		if len(s.Tokens) <= 3 {
			t.Errorf("Excluded sentence %d has only %d tokens", s.Index, len(s.Tokens))
		}
	}

	if n := p.PruneLongSentences(3); n != 0 {
		t.Errorf("Second call should exclude nothing, got %d", n)
	}

	if n := p.PruneLongSentences(0); n != 2 {
		t.Errorf("maxTokens=0 should exclude every non-empty retained sentence, got %d", n)
	}
	if got := indexes(p.Retained()); !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("Empty sentence should pass, got %v", got)
	}
	assertPartition(t, p)
}

func TestExclusionsMonotonic(t *testing.T) {
	o := zipfOracle{"a": 8, "b": 8, "c": 8}
	p := newTestPruner([]string{"a b c d", "a", "b c", "x", "a a a a a"}, Options{Oracle: o})

	prev := p.Exclusions()
	steps := []func(){
		func() { p.PruneLongSentences(3) },
		func() { p.PruneUnknownTokens() },
		func() { p.PrunePervasiveTokens(0, 1, 3) },
	}
	for i, step := range steps {
		step()
		cur := p.Exclusions()
		if cur.Len() < prev.Len() {
			t.Errorf("Step %d shrank the exclusion set", i)
		}
		for _, idx := range prev.Indices() {
			if !cur.Contains(idx) {
				t.Errorf("Step %d dropped index %d", i, idx)
			}
		}
		prev = cur
		assertPartition(t, p)
	}
}

func TestExclusionsIsCopy(t *testing.T) {
	p := newTestPruner([]string{"a b c"}, Options{})
	ex := p.Exclusions()
	ex.Union([]int{0})

	if got := indexes(p.Excluded()); len(got) != 0 {
		t.Errorf("Mutating the copy should not exclude sentences, got %v", got)
	}
}

func TestPervasiveTokensBasic(t *testing.T) {
	// spam is rare in the baseline so its ceiling is 0; everything else is
	// common enough to never reach its ceiling.
	o := zipfOracle{"spam": 3, "eggs": 8, "ham": 8, "toast": 8}
	p := newTestPruner([]string{"spam eggs", "spam ham", "spam toast", "eggs ham"}, Options{Oracle: o})

	n := p.PrunePervasiveTokens(1, 1.0, 3)

	if n != 2 {
		t.Errorf("Expected 2 excluded, got %d", n)
	}
	if got := indexes(p.Excluded()); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Expected [1 2] excluded, got %v", got)
	}
}

func TestPervasiveTokensDiscardsRejectedCounts(t *testing.T) {
	// total tokens = 4, so the eggs ceiling is int(10^-0.2 * 4) = 2.
	// Sentence 1 is rejected on spam; its eggs must not count against
	// sentence 2.
	o := zipfOracle{"spam": 3, "eggs": 7.8}
	p := newTestPruner([]string{"spam", "eggs spam", "eggs"}, Options{Oracle: o})

	p.PrunePervasiveTokens(1, 1.0, 1)

	if got := indexes(p.Excluded()); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("Expected only sentence 1 excluded, got %v", got)
	}
}

func TestPervasiveTokensMinCountProtects(t *testing.T) {
	o := zipfOracle{"spam": 3}
	p := newTestPruner([]string{"spam", "spam", "spam"}, Options{Oracle: o})

	if n := p.PrunePervasiveTokens(3, 1.0, 3); n != 0 {
		t.Errorf("Counts up to minCount should never be pruned, got %d", n)
	}
	if n := p.PrunePervasiveTokens(2, 1.0, 3); n != 1 {
		t.Errorf("Expected the third spam sentence excluded, got %d", n)
	}
	if got := indexes(p.Excluded()); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("Expected [2] excluded, got %v", got)
	}
}

func TestPervasiveTokensNotIdempotent(t *testing.T) {
	// Epoch one removes the junk sentences, which shrinks the total so
	// spam's ceiling falls to 0 on the next pass.
	o := zipfOracle{"a": 9, "b": 9, "c": 9, "d": 9, "spam": 7}
	var texts []string
	for i := 0; i < 20; i++ {
		texts = append(texts, "a b c d junk")
	}
	for i := 0; i < 4; i++ {
		texts = append(texts, "spam")
	}

	p := newTestPruner(texts, Options{Oracle: o})
	if n := p.PrunePervasiveTokens(0, 1.0, 1); n != 20 {
		t.Fatalf("First call should exclude the 20 junk sentences, got %d", n)
	}
	if n := p.PrunePervasiveTokens(0, 1.0, 1); n != 4 {
		t.Errorf("Second call should exclude the spam sentences, got %d", n)
	}

	multi := newTestPruner(texts, Options{Oracle: o})
	if n := multi.PrunePervasiveTokens(0, 1.0, 2); n != 24 {
		t.Errorf("Two epochs in one call should match two calls, got %d", n)
	}
}

func TestPervasiveTokensZeroEpochs(t *testing.T) {
	p := newTestPruner([]string{"junk junk"}, Options{})
	if n := p.PrunePervasiveTokens(0, 1.0, 0); n != 0 {
		t.Errorf("Zero epochs should do nothing, got %d", n)
	}
}

func TestPervasiveNgrams(t *testing.T) {
	baseline := zipfBaseline{"the cat": 9}
	provider := NgramProviderFunc(func(lang language.Identity, n int) (NgramBaseline, error) {
		if n != 2 {
			t.Errorf("Expected n=2, got %d", n)
		}
		return baseline, nil
	})
	p := newTestPruner([]string{"the cat", "the cat", "dog bark", "dog bark"}, Options{Ngrams: provider})

	n, err := p.PrunePervasiveNgrams(2, 1, 1.0, 3)
	if err != nil {
		t.Fatalf("PrunePervasiveNgrams: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 excluded, got %d", n)
	}
	if got := indexes(p.Excluded()); !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("Expected [3] excluded, got %v", got)
	}
}

func TestPervasiveNgramsShortSentencesPass(t *testing.T) {
	provider := NgramProviderFunc(func(language.Identity, int) (NgramBaseline, error) {
		return zipfBaseline{}, nil
	})
	p := newTestPruner([]string{"one two", "one", ""}, Options{Ngrams: provider})

	n, err := p.PrunePervasiveNgrams(3, 0, 1.0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Sentences shorter than n have no n-grams and should pass, got %d", n)
	}
}

func TestPervasiveNgramsErrors(t *testing.T) {
	p := newTestPruner([]string{"a b c"}, Options{})
	if _, err := p.PrunePervasiveNgrams(3, 0, 1, 1); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Missing provider should be ErrInvalidInput, got %v", err)
	}

	boom := errors.New("boom")
	p = newTestPruner([]string{"a b c"}, Options{Ngrams: NgramProviderFunc(func(language.Identity, int) (NgramBaseline, error) {
		return nil, boom
	})})
	if _, err := p.PrunePervasiveNgrams(0, 0, 1, 1); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("n=0 should be ErrInvalidInput, got %v", err)
	}
	if _, err := p.PrunePervasiveNgrams(3, 0, 1, 1); !errors.Is(err, boom) {
		t.Errorf("Provider error should propagate, got %v", err)
	}
}

func TestPervasiveNgramsWithStoredModel(t *testing.T) {
	store := ngram.NewStore(ngram.Options{Dir: t.TempDir(), Logger: quietLogger()})
	model, err := store.Model(english, 2)
	if err != nil {
		t.Fatal(err)
	}
	source := strings.Repeat("the cat sat on the mat\n", 10) + "buy cheap pills now\n"
	if err := model.Build(strings.NewReader(source)); err != nil {
		t.Fatal(err)
	}

	var texts []string
	for i := 0; i < 5; i++ {
		texts = append(texts, "the cat sat", "buy cheap pills")
	}
	p := newTestPruner(texts, Options{Ngrams: StoreProvider(store)})

	if _, err := p.PrunePervasiveNgrams(2, 1, 1.0, 3); err != nil {
		t.Fatal(err)
	}

	// "buy cheap" is 1/53 of the baseline bigrams but 1/4 of the corpus ones.
	for s := range p.Retained() {
		if strings.HasPrefix(s.Text, "buy") && s.Index > 2 {
			t.Errorf("Over-represented sentence %d should have been pruned", s.Index)
		}
	}
	assertPartition(t, p)
}

func TestPervasiveTokensHugeZipfDiffPrunesNothing(t *testing.T) {
	o := zipfOracle{"a": 5, "b": 5}
	p := newTestPruner([]string{"a b", "a", "b"}, Options{Oracle: o})

	if n := p.PrunePervasiveTokens(0, 30, 1); n != 0 {
		t.Errorf("Ceilings beyond the int range are unreachable, excluded %d", n)
	}
	assertPartition(t, p)
}

func TestCeilingCount(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{-1, 0},
		{math.Inf(-1), 0},
		{2.9, 2},
		{1e30, math.MaxInt},
		{float64(math.MaxInt), math.MaxInt},
		{math.Inf(1), math.MaxInt},
		{math.NaN(), math.MaxInt},
	}
	for _, tt := range tests {
		if got := ceilingCount(tt.in); got != tt.want {
			t.Errorf("ceilingCount(%g) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
