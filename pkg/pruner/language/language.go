// Package language resolves language codes into an explicit identity value
// carrying every code variant the frequency oracle and the n-gram model
// storage need.
//
// ISO 639-1 codes, ISO 639-2 terminological and bibliographic codes, BCP-47
// tags (region and script subtags are dropped) and common English language
// names are all accepted.
package language

import (
	"fmt"
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/cognicore/pruner/pkg/pruner/internalerr"
)

// Identity is a canonical language.
type Identity struct {
	Code2 string // ISO 639-1, empty when the language has no 2-letter code
	Code3 string // ISO 639-2/T
	Name  string // English display name
}

// String returns the shortest code for the language.
func (id Identity) String() string {
	if id.Code2 != "" {
		return id.Code2
	}
	return id.Code3
}

// IsZero reports whether id was never resolved.
func (id Identity) IsZero() bool {
	return id.Code3 == ""
}

// bibliographic maps ISO 639-2/B codes onto their terminological form.
var bibliographic = map[string]string{
	"alb": "sqi",
	"arm": "hye",
	"baq": "eus",
	"bur": "mya",
	"chi": "zho",
	"cze": "ces",
	"dut": "nld",
	"fre": "fra",
	"geo": "kat",
	"ger": "deu",
	"gre": "ell",
	"ice": "isl",
	"mac": "mkd",
	"mao": "mri",
	"may": "msa",
	"per": "fas",
	"rum": "ron",
	"slo": "slk",
	"tib": "bod",
	"wel": "cym",
}

var byName = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "nb",
	"finnish":    "fi",
}

// Resolve maps a language code or name to its Identity.
func Resolve(code string) (Identity, error) {
	key := strings.ToLower(strings.TrimSpace(code))
	if key == "" {
		return Identity{}, fmt.Errorf("language code is empty: %w", internalerr.ErrInvalidInput)
	}
	if c, ok := byName[key]; ok {
		key = c
	}
	if c, ok := bibliographic[key]; ok {
		key = c
	}

	tag, err := xlanguage.Parse(key)
	if err != nil {
		return Identity{}, fmt.Errorf("language code %q: %v: %w", code, err, internalerr.ErrInvalidInput)
	}
	base, _ := tag.Base()
	if base.String() == "und" {
		return Identity{}, fmt.Errorf("language code %q is undetermined: %w", code, internalerr.ErrInvalidInput)
	}

	id := Identity{
		Code3: base.ISO3(),
		Name:  display.English.Languages().Name(base),
	}
	if short := base.String(); len(short) == 2 {
		id.Code2 = short
	}
	return id, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve(code string) Identity {
	id, err := Resolve(code)
	if err != nil {
		panic(err)
	}
	return id
}
