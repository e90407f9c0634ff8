// Package config loads and validates pruning configuration from YAML.
//
// A configuration names the corpus language, where the reference word
// frequencies come from, where n-gram models are stored, and the ordered
// list of pruning steps to apply.
package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/pruner/pkg/pruner/internalerr"
	"github.com/cognicore/pruner/pkg/pruner/language"
	"github.com/cognicore/pruner/pkg/pruner/prune"
)

// StepKind names a pruning pass.
type StepKind string

const (
	StepLongSentences   StepKind = "long_sentences"
	StepUnknownTokens   StepKind = "unknown_tokens"
	StepPervasiveTokens StepKind = "pervasive_tokens"
	StepPervasiveNgrams StepKind = "pervasive_ngrams"
)

// DefaultMaxTokens is the long-sentence limit when none is configured.
const DefaultMaxTokens = 50

// Config is the full pruning configuration.
type Config struct {
	Language string `yaml:"language"`
	DataDir  string `yaml:"data_dir"`
	Oracle   Oracle `yaml:"oracle"`
	Input    Input  `yaml:"input"`
	Log      Log    `yaml:"log"`
	Steps    []Step `yaml:"steps"`
}

// Oracle locates the reference word frequencies.
type Oracle struct {
	WordList string `yaml:"wordlist"` // "token weight" lines
	SQLite   string `yaml:"sqlite"`   // database holding imported tables
}

// Input controls how raw sentences are read.
type Input struct {
	StripHTML bool `yaml:"strip_html"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Step is one pruning pass. Fields a kind does not use are ignored.
type Step struct {
	Kind        StepKind `yaml:"kind"`
	MaxTokens   int      `yaml:"max_tokens,omitempty"`
	N           int      `yaml:"n,omitempty"`
	MinCount    int      `yaml:"min_count,omitempty"`
	MinZipfDiff float64  `yaml:"min_zipf_diff,omitempty"`
	Epochs      int      `yaml:"epochs,omitempty"`
}

// DefaultStep returns a step of the given kind with default parameters.
func DefaultStep(kind StepKind) Step {
	switch kind {
	case StepLongSentences:
		return Step{Kind: kind, MaxTokens: DefaultMaxTokens}
	case StepPervasiveTokens:
		return Step{
			Kind:        kind,
			MinCount:    prune.DefaultTokenMinCount,
			MinZipfDiff: prune.DefaultMinZipfDiff,
			Epochs:      prune.DefaultEpochs,
		}
	case StepPervasiveNgrams:
		return Step{
			Kind:        kind,
			N:           prune.DefaultNgramSize,
			MinCount:    prune.DefaultNgramMinCount,
			MinZipfDiff: prune.DefaultMinZipfDiff,
			Epochs:      prune.DefaultEpochs,
		}
	}
	return Step{Kind: kind}
}

// UnmarshalYAML fills parameters missing from the document with the
// defaults of the step kind.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	var head struct {
		Kind StepKind `yaml:"kind"`
	}
	if err := value.Decode(&head); err != nil {
		return err
	}
	*s = DefaultStep(head.Kind)

	type plain Step
	return value.Decode((*plain)(s))
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Language: "en",
		Log:      Log{Level: "info", Format: "auto"},
		Steps: []Step{
			DefaultStep(StepUnknownTokens),
			DefaultStep(StepPervasiveTokens),
		},
	}
}

// Load reads a YAML configuration file on top of Default and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and step.
func (c *Config) Validate() error {
	if _, err := language.Resolve(c.Language); err != nil {
		return invalid("language: %v", err)
	}

	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return invalid("log level: unsupported value %q", c.Log.Level)
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "", "auto", "console", "json":
	default:
		return invalid("log format: unsupported value %q", c.Log.Format)
	}

	for i, s := range c.Steps {
		if err := s.validate(); err != nil {
			return invalid("step %d: %v", i+1, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	switch s.Kind {
	case StepLongSentences:
		if s.MaxTokens < 1 {
			return fmt.Errorf("max_tokens must be positive, got %d", s.MaxTokens)
		}
	case StepUnknownTokens:
	case StepPervasiveNgrams:
		if s.N < 1 {
			return fmt.Errorf("n must be positive, got %d", s.N)
		}
		fallthrough
	case StepPervasiveTokens:
		if s.MinCount < 0 {
			return fmt.Errorf("min_count must not be negative, got %d", s.MinCount)
		}
		if math.IsNaN(s.MinZipfDiff) || math.IsInf(s.MinZipfDiff, 0) {
			return fmt.Errorf("min_zipf_diff must be finite, got %g", s.MinZipfDiff)
		}
		if s.Epochs < 1 {
			return fmt.Errorf("epochs must be positive, got %d", s.Epochs)
		}
	case "":
		return fmt.Errorf("missing kind")
	default:
		return fmt.Errorf("unknown kind %q", s.Kind)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), internalerr.ErrInvalidConfig)
}
