package ngram

import (
	"github.com/cognicore/pruner/pkg/pruner/language"
)

type storeKey struct {
	lang string
	n    int
}

// Store opens models on first use and keeps them for later lookups.
// It is not safe for concurrent use.
type Store struct {
	opts   Options
	models map[storeKey]*Model
}

// NewStore creates a store sharing opts across every model it opens.
func NewStore(opts Options) *Store {
	return &Store{opts: opts, models: make(map[storeKey]*Model)}
}

// Model returns the model for (lang, n), opening it if needed.
func (s *Store) Model(lang language.Identity, n int) (*Model, error) {
	key := storeKey{lang: lang.Code3, n: n}
	if m, ok := s.models[key]; ok {
		return m, nil
	}
	m, err := Open(lang, n, s.opts)
	if err != nil {
		return nil, err
	}
	s.models[key] = m
	return m, nil
}
