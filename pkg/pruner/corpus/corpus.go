// Package corpus holds an append-only, in-memory sequence of tokenized
// sentences in one language.
package corpus

import (
	"iter"

	"github.com/cognicore/pruner/pkg/pruner/ingest"
	"github.com/cognicore/pruner/pkg/pruner/language"
)

// Tokenizer splits a standardized sentence into tokens.
type Tokenizer interface {
	Tokenize(text string, lang language.Identity) []string
}

// Sentence is one stored sentence. Index is its insertion position and is
// never reused.
type Sentence struct {
	Index  int
	Text   string
	Tokens []string
}

// Corpus is an ordered collection of sentences.
type Corpus struct {
	lang      language.Identity
	tokenizer Tokenizer
	sentences []Sentence
}

// New creates an empty corpus. A nil tokenizer selects ingest.Tokenizer.
func New(lang language.Identity, tok Tokenizer) *Corpus {
	if tok == nil {
		tok = ingest.NewTokenizer()
	}
	return &Corpus{lang: lang, tokenizer: tok}
}

// AddSentences standardizes, tokenizes and appends texts in order.
func (c *Corpus) AddSentences(texts []string) {
	for _, text := range texts {
		tokens := c.tokenizer.Tokenize(ingest.Standardize(text), c.lang)
		c.sentences = append(c.sentences, Sentence{
			Index:  len(c.sentences),
			Text:   text,
			Tokens: tokens,
		})
	}
}

// All yields every sentence in insertion order.
func (c *Corpus) All() iter.Seq[Sentence] {
	return func(yield func(Sentence) bool) {
		for _, s := range c.sentences {
			if !yield(s) {
				return
			}
		}
	}
}

// Sentence returns the sentence with index i.
func (c *Corpus) Sentence(i int) (Sentence, bool) {
	if i < 0 || i >= len(c.sentences) {
		return Sentence{}, false
	}
	return c.sentences[i], true
}

// Len returns the number of stored sentences.
func (c *Corpus) Len() int {
	return len(c.sentences)
}

// Language returns the language used for every frequency lookup.
func (c *Corpus) Language() language.Identity {
	return c.lang
}
