package ingest

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// standardReplacer unifies visually equivalent apostrophes and spaces.
var standardReplacer = strings.NewReplacer(
	"\u2019", "'",
	"\u2018", "'",
	"\u02bc", "'",
	"\u00a0", " ",
	"\u202f", " ",
	"\u2007", " ",
)

// Standardize maps punctuation and space variants to one canonical form and
// composes the result to NFC.
func Standardize(text string) string {
	return norm.NFC.String(standardReplacer.Replace(text))
}

// StripHTML returns the text content of an HTML fragment. Script and style
// elements are dropped. Input that fails to parse is returned as is.
func StripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
		if n.Type == html.ElementNode && isBlock(n.Data) {
			buf.WriteByte(' ')
		}
	}
	extractText(doc)

	return strings.Join(strings.Fields(buf.String()), " ")
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "td", "th", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}
