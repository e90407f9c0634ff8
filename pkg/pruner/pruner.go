// Package pruner runs a configured sequence of pruning steps over a corpus.
//
// The heavy lifting lives in the subpackages: corpus holds the sentences,
// prune decides which ones to exclude, oracle and ngram provide the
// reference frequencies. This package ties them together the way the
// command line tool uses them.
package pruner

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/pruner/pkg/pruner/config"
	"github.com/cognicore/pruner/pkg/pruner/corpus"
	"github.com/cognicore/pruner/pkg/pruner/ingest"
	"github.com/cognicore/pruner/pkg/pruner/internalerr"
	"github.com/cognicore/pruner/pkg/pruner/prune"
)

// Engine holds the components loaded from one configuration.
type Engine struct {
	cfg    *config.Config
	comp   *config.Components
	logger *slog.Logger
}

// New loads the components named by cfg. A nil cfg uses config.Default.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	comp, err := (&config.Loader{Config: cfg, Logger: logger}).Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, comp: comp, logger: logger}, nil
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *config.Config { return e.cfg }

// Components returns the loaded components.
func (e *Engine) Components() *config.Components { return e.comp }

// Corpus builds a corpus in the configured language from raw texts,
// stripping markup first when the input is configured as HTML.
func (e *Engine) Corpus(texts []string) *corpus.Corpus {
	if e.cfg.Input.StripHTML {
		stripped := make([]string, len(texts))
		for i, t := range texts {
			stripped[i] = ingest.StripHTML(t)
		}
		texts = stripped
	}
	c := corpus.New(e.comp.Language, e.comp.Tokenizer)
	c.AddSentences(texts)
	return c
}

// Pruner returns a pruner over c wired to the engine's oracle and n-gram
// models.
func (e *Engine) Pruner(c *corpus.Corpus) *prune.Pruner {
	return prune.New(c, prune.Options{
		Oracle: e.comp.Oracle,
		Ngrams: prune.StoreProvider(e.comp.Ngrams),
		Logger: e.logger,
	})
}

// Prune builds a corpus from texts and applies the configured steps.
func (e *Engine) Prune(texts []string) (*prune.Pruner, Report, error) {
	p := e.Pruner(e.Corpus(texts))
	rep, err := Run(p, e.cfg.Steps)
	return p, rep, err
}

// StepReport records what one step excluded.
type StepReport struct {
	Kind     config.StepKind `json:"kind"`
	Excluded int             `json:"excluded"`
	Retained int             `json:"retained"`
}

// Report summarizes a pruning run.
type Report struct {
	RunID      string       `json:"run_id"`
	Language   string       `json:"language"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMS int64        `json:"duration_ms"`
	Total      int          `json:"total"`
	Retained   int          `json:"retained"`
	Excluded   int          `json:"excluded"`
	Steps      []StepReport `json:"steps"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newRunID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Run applies steps to p in order and reports the outcome. On error the
// report covers the steps applied before the failing one.
func Run(p *prune.Pruner, steps []config.Step) (Report, error) {
	start := time.Now()
	c := p.Corpus()
	rep := Report{
		RunID:     newRunID(start),
		Language:  c.Language().String(),
		StartedAt: start.UTC(),
		Total:     c.Len(),
		Steps:     make([]StepReport, 0, len(steps)),
	}

	var runErr error
	for i, s := range steps {
		n, err := Apply(p, s)
		if err != nil {
			runErr = fmt.Errorf("step %d (%s): %w", i+1, s.Kind, err)
			break
		}
		ex := p.Exclusions()
		rep.Steps = append(rep.Steps, StepReport{
			Kind:     s.Kind,
			Excluded: n,
			Retained: rep.Total - ex.Len(),
		})
	}

	ex := p.Exclusions()
	rep.Excluded = ex.Len()
	rep.Retained = rep.Total - rep.Excluded
	rep.DurationMS = time.Since(start).Milliseconds()
	return rep, runErr
}

// Apply runs a single step and returns the number of newly excluded
// sentences.
func Apply(p *prune.Pruner, s config.Step) (int, error) {
	switch s.Kind {
	case config.StepLongSentences:
		return p.PruneLongSentences(s.MaxTokens), nil
	case config.StepUnknownTokens:
		return p.PruneUnknownTokens(), nil
	case config.StepPervasiveTokens:
		return p.PrunePervasiveTokens(s.MinCount, s.MinZipfDiff, s.Epochs), nil
	case config.StepPervasiveNgrams:
		return p.PrunePervasiveNgrams(s.N, s.MinCount, s.MinZipfDiff, s.Epochs)
	}
	return 0, fmt.Errorf("unknown step kind %q: %w", s.Kind, internalerr.ErrInvalidConfig)
}
