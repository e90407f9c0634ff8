package prune

import (
	"github.com/cognicore/pruner/pkg/pruner/ngram"
	"github.com/cognicore/pruner/pkg/pruner/zipf"
)

// StatsRow compares the corpus frequency of one token with its baseline.
type StatsRow struct {
	Token         string  `json:"token"`
	Count         int     `json:"count"`
	RefCount      int     `json:"ref_count"`
	CountDiff     int     `json:"count_diff"`
	Zipf          float64 `json:"zf"`
	RefZipf       float64 `json:"ref_zf"`
	ZipfDiff      float64 `json:"zf_diff"`
	Pervasiveness float64 `json:"pervasiveness"` // Zipf + ZipfDiff
}

// FrequencyStats returns one row per distinct token of the retained
// sentences, in order of first appearance.
func (p *Pruner) FrequencyStats() []StatsRow {
	t := newTally()
	for s := range p.Retained() {
		t.add(ngram.Windows(s.Tokens, 1))
	}
	if t.total == 0 {
		return nil
	}

	lang := p.corpus.Language()
	total := float64(t.total)
	rows := make([]StatsRow, 0, len(t.order))
	for _, token := range t.order {
		count := t.counts[token]
		refCount := int(p.oracle.Frequency(token, lang) * total)
		zf := zipf.FromFreq(float64(count) / total)
		refZf := p.oracle.ZipfFrequency(token, lang)
		diff := zf - refZf
		rows = append(rows, StatsRow{
			Token:         token,
			Count:         count,
			RefCount:      refCount,
			CountDiff:     count - refCount,
			Zipf:          zf,
			RefZipf:       refZf,
			ZipfDiff:      diff,
			Pervasiveness: zf + diff,
		})
	}
	return rows
}

// Thresholds selects pervasive rows; every test is inclusive.
type Thresholds struct {
	MinCount         int
	MinZipf          float64
	MinZipfDiff      float64
	MinPervasiveness float64
}

// FilterPervasive returns the rows passing all four thresholds.
func FilterPervasive(rows []StatsRow, th Thresholds) []StatsRow {
	var out []StatsRow
	for _, r := range rows {
		if r.Count >= th.MinCount &&
			r.Zipf >= th.MinZipf &&
			r.ZipfDiff >= th.MinZipfDiff &&
			r.Pervasiveness >= th.MinPervasiveness {
			out = append(out, r)
		}
	}
	return out
}
