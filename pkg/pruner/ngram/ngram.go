// Package ngram builds, persists and queries n-gram frequency tables for one
// (language, n) pair.
//
// A model is built once from a source text with one sentence per line,
// saved under the managed data directory as
// <iso639-3>_<n>gram_frequencies.ngf and loaded again whenever a model for
// the same pair is opened. N-grams never cross sentence boundaries.
package ngram

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/cognicore/pruner/internal/datadir"
	"github.com/cognicore/pruner/pkg/pruner/ingest"
	"github.com/cognicore/pruner/pkg/pruner/internalerr"
	"github.com/cognicore/pruner/pkg/pruner/language"
	"github.com/cognicore/pruner/pkg/pruner/zipf"
)

// keySep joins the tokens of an n-gram into a map key. Tokenizers never
// emit control characters.
const keySep = "\x1f"

// Key returns the map key of an n-gram.
func Key(ngram []string) string {
	return strings.Join(ngram, keySep)
}

func splitKey(key string) []string {
	return strings.Split(key, keySep)
}

// Windows returns every contiguous window of n tokens. The windows share
// memory with tokens.
func Windows(tokens []string, n int) [][]string {
	if n < 1 || len(tokens) < n {
		return nil
	}
	windows := make([][]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		windows = append(windows, tokens[i:i+n:i+n])
	}
	return windows
}

// Tokenizer splits a standardized sentence into tokens.
type Tokenizer interface {
	Tokenize(text string, lang language.Identity) []string
}

// Options configures where models live and how source text is tokenized.
type Options struct {
	Dir       string // data directory; resolved with datadir.Resolve when empty
	Tokenizer Tokenizer
	Logger    *slog.Logger
}

// Model is the n-gram frequency table of one language.
type Model struct {
	lang   language.Identity
	n      int
	dir    string
	tok    Tokenizer
	logger *slog.Logger
	freqs  map[string]float64
}

// Open creates a model for (lang, n) and loads it from disk. A missing or
// unreadable file is not an error: it is logged and the model starts empty,
// so every n-gram reads as unseen until Build is called.
func Open(lang language.Identity, n int, opts Options) (*Model, error) {
	if lang.IsZero() {
		return nil, fmt.Errorf("open n-gram model: no language: %w", internalerr.ErrInvalidInput)
	}
	if n < 1 {
		return nil, fmt.Errorf("open n-gram model: n must be positive, got %d: %w", n, internalerr.ErrInvalidInput)
	}

	dir, err := datadir.Resolve(opts.Dir)
	if err != nil {
		return nil, err
	}
	if opts.Tokenizer == nil {
		opts.Tokenizer = ingest.NewTokenizer()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	m := &Model{
		lang:   lang,
		n:      n,
		dir:    dir,
		tok:    opts.Tokenizer,
		logger: opts.Logger.With("lang", lang.Code3, "n", n),
		freqs:  map[string]float64{},
	}

	freqs, err := m.load()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		m.logger.Warn("n-gram model not found, build it before pruning", "path", m.Path())
	case err != nil:
		m.logger.Warn("n-gram model unreadable, starting empty", "path", m.Path(), "error", err)
	default:
		m.freqs = freqs
		m.logger.Debug("n-gram model loaded", "path", m.Path(), "entries", len(freqs))
	}

	return m, nil
}

// Language returns the model language.
func (m *Model) Language() language.Identity { return m.lang }

// N returns the n-gram size.
func (m *Model) N() int { return m.n }

// Len returns the number of distinct n-grams.
func (m *Model) Len() int { return len(m.freqs) }

// Path returns the file the model is persisted to.
func (m *Model) Path() string {
	name := fmt.Sprintf("%s_%dgram_frequencies%s", m.lang.Code3, m.n, fileExt)
	return filepath.Join(m.dir, name)
}

// Frequency returns the probability of ngram, 0 if it was never observed.
func (m *Model) Frequency(ngram []string) float64 {
	if len(ngram) != m.n {
		return 0
	}
	return m.freqs[Key(ngram)]
}

// ZipfFrequency returns the zipf value of ngram, 0 if it was never observed.
func (m *Model) ZipfFrequency(ngram []string) float64 {
	return zipf.FromFreq(m.Frequency(ngram))
}

// Build counts every n-gram of the source, one sentence per line, replaces
// the in-memory table with the normalized counts and persists it.
func (m *Model) Build(r io.Reader) error {
	counts := make(map[string]int64)
	var total int64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		tokens := m.tok.Tokenize(ingest.Standardize(scanner.Text()), m.lang)
		for _, w := range Windows(tokens, m.n) {
			counts[Key(w)]++
			total++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	if total == 0 {
		return fmt.Errorf("build %d-gram model: source has no %d-token sentence: %w", m.n, m.n, internalerr.ErrInvalidInput)
	}

	freqs := make(map[string]float64, len(counts))
	for k, c := range counts {
		freqs[k] = float64(c) / float64(total)
	}
	m.freqs = freqs

	if err := m.save(); err != nil {
		return fmt.Errorf("save n-gram model: %w", err)
	}
	m.logger.Info("n-gram model built", "path", m.Path(), "entries", len(freqs), "windows", total)
	return nil
}

// BuildFile builds the model from the file at path.
func (m *Model) BuildFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.Build(f)
}

// save writes the model through a temporary file, holding a lock so
// concurrent builders of the same model do not interleave.
func (m *Model) save() error {
	path := m.Path()
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(m.dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, m.lang.Code3, m.n, m.freqs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (m *Model) load() (map[string]float64, error) {
	f, err := os.Open(m.Path())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, freqs, err := decode(f)
	if err != nil {
		return nil, err
	}
	if h.Lang != m.lang.Code3 || h.N != m.n {
		return nil, fmt.Errorf("file holds %s %d-grams: %w", h.Lang, h.N, internalerr.ErrCorruptModel)
	}
	return freqs, nil
}
