package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cognicore/pruner/internal/datadir"
	"github.com/cognicore/pruner/pkg/pruner/ingest"
	"github.com/cognicore/pruner/pkg/pruner/language"
	"github.com/cognicore/pruner/pkg/pruner/ngram"
	"github.com/cognicore/pruner/pkg/pruner/oracle"
	"github.com/cognicore/pruner/pkg/pruner/oracle/memstore"
	"github.com/cognicore/pruner/pkg/pruner/oracle/sqlite"
)

// Loader constructs the pruning components a configuration describes
type Loader struct {
	Config *Config
	Logger *slog.Logger
}

// Components holds all loaded configuration components
type Components struct {
	Language  language.Identity
	DataDir   string
	Tokenizer *ingest.Tokenizer
	Oracle    *memstore.Oracle
	Ngrams    *ngram.Store
}

// Load resolves the language and data directory, reads the reference
// frequencies and prepares the n-gram model store.
//
// When both a word list and a SQLite database are configured, the word list
// seeds the database only if it holds no table for the language yet; an
// existing table is replaced with the oracle import command, never here.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg := l.Config
	if cfg == nil {
		cfg = Default()
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lang, err := language.Resolve(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("resolve language: %w", err)
	}
	dir, err := datadir.Resolve(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	comp := &Components{
		Language:  lang,
		DataDir:   dir,
		Tokenizer: ingest.NewTokenizer(),
		Oracle:    memstore.New(),
	}

	var counts map[string]float64
	if cfg.Oracle.WordList != "" {
		counts, err = loadWordList(cfg.Oracle.WordList)
		if err != nil {
			return nil, fmt.Errorf("load word list: %w", err)
		}
	}

	switch {
	case cfg.Oracle.SQLite != "":
		if err := loadSQLite(ctx, logger, cfg.Oracle.SQLite, lang, counts, comp.Oracle); err != nil {
			return nil, fmt.Errorf("load frequency database: %w", err)
		}
	case counts != nil:
		comp.Oracle.SetCounts(lang, counts)
	default:
		logger.Warn("no reference frequencies configured, every token will read as unknown")
	}
	logger.Debug("reference frequencies loaded", "lang", lang.Code3, "tokens", comp.Oracle.Len(lang))

	comp.Ngrams = ngram.NewStore(ngram.Options{
		Dir:       dir,
		Tokenizer: comp.Tokenizer,
		Logger:    logger,
	})

	return comp, nil
}

func loadWordList(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return oracle.ParseWordList(f)
}

func loadSQLite(ctx context.Context, logger *slog.Logger, path string, lang language.Identity, counts map[string]float64, o *memstore.Oracle) error {
	st, err := sqlite.Open(ctx, path)
	if err != nil {
		return err
	}
	defer st.Close()

	if counts != nil {
		stored, err := st.Count(ctx, lang)
		if err != nil {
			return err
		}
		if stored == 0 {
			n, err := st.ImportCounts(ctx, lang, counts)
			if err != nil {
				return err
			}
			logger.Info("seeded frequency database from word list", "path", path, "lang", lang.Code3, "tokens", n)
		} else {
			logger.Debug("frequency database already holds language, word list ignored", "path", path, "lang", lang.Code3, "tokens", stored)
		}
	}
	_, err = st.LoadInto(ctx, o, lang)
	return err
}
