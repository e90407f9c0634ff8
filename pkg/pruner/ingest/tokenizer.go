package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"

	"github.com/cognicore/pruner/pkg/pruner/language"
)

// Tokenizer splits standardized text into lowercase word tokens.
//
// Letters, digits and combining marks form words; an apostrophe inside a
// word is kept ("don't"). Han, Hiragana and Katakana characters are emitted
// one token per character since those scripts carry no word separators.
type Tokenizer struct{}

// NewTokenizer creates a new tokenizer
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize splits text into tokens, lowercasing with the rules of lang.
func (t *Tokenizer) Tokenize(text string, lang language.Identity) []string {
	lower := cases.Lower(tagFor(lang))

	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if word := cleanToken(current.String()); word != "" {
			tokens = append(tokens, lower.String(word))
		}
		current.Reset()
	}

	for _, r := range text {
		switch {
		case isLogographic(r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r):
			current.WriteRune(r)
		case r == '\'' && current.Len() > 0:
			current.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// cleanToken strips apostrophes left dangling at the end of a word
func cleanToken(token string) string {
	return strings.TrimRight(token, "'")
}

func isLogographic(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana)
}

func tagFor(lang language.Identity) xlanguage.Tag {
	if lang.IsZero() {
		return xlanguage.Und
	}
	tag, err := xlanguage.Parse(lang.String())
	if err != nil {
		return xlanguage.Und
	}
	return tag
}

// TokenNormalizer returns a function mapping a single reference token onto
// the form Tokenize gives the same word in lang, so frequency tables built
// from word lists are keyed like corpus tokens.
func TokenNormalizer(lang language.Identity) func(string) string {
	lower := cases.Lower(tagFor(lang))
	return func(token string) string {
		return lower.String(cleanToken(Standardize(strings.TrimSpace(token))))
	}
}
