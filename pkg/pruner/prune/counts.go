package prune

import (
	"math"

	"github.com/cognicore/pruner/pkg/pruner/ngram"
)

// tally counts units (tokens or n-grams) and remembers the order in which
// each distinct unit was first seen.
type tally struct {
	total  int
	counts map[string]int
	order  []string
	units  map[string][]string
}

func newTally() *tally {
	return &tally{
		counts: make(map[string]int),
		units:  make(map[string][]string),
	}
}

// add counts every unit of one sentence.
func (t *tally) add(units [][]string) {
	for _, u := range units {
		key := ngram.Key(u)
		if _, ok := t.counts[key]; !ok {
			t.order = append(t.order, key)
			t.units[key] = u
		}
		t.counts[key]++
		t.total++
	}
}

// commitIfFits tentatively increments the running counts for the units of
// one sentence. If any unit ends above minCount and at or above its
// ceiling the sentence is rejected and counts is left untouched; otherwise
// the increments are committed.
func commitIfFits(counts map[string]int, keys []string, ceilings map[string]int, minCount int) bool {
	tentative := make(map[string]int, len(keys))
	for _, k := range keys {
		c, ok := tentative[k]
		if !ok {
			c = counts[k]
		}
		c++
		tentative[k] = c
		if c > minCount && c >= ceilings[k] {
			return false
		}
	}
	for k, c := range tentative {
		counts[k] = c
	}
	return true
}

func keysOf(units [][]string) []string {
	keys := make([]string, len(units))
	for i, u := range units {
		keys[i] = ngram.Key(u)
	}
	return keys
}

const maxCeiling = float64(math.MaxInt)

// ceilingCount truncates a ceiling to a count. Ceilings beyond the int
// range, including +Inf and NaN, saturate at math.MaxInt and stay
// unreachable.
func ceilingCount(c float64) int {
	if !(c < maxCeiling) {
		return math.MaxInt
	}
	if c <= 0 {
		return 0
	}
	return int(c)
}
