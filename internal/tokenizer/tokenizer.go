// Package tokenizer implements the shared text-to-terms pipeline used both
// when indexing a fetched document and when normalizing a search query, so
// the two sides of the inverted index agree on what a "term" is.
package tokenizer

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	minTermLength = 3
	maxTermLength = 32
)

var (
	markupRe = regexp.MustCompile(`<[^>]*>`)
	// punctuationRe matches the exact character set the spec calls out:
	// \n \r \t . , ! ? : ; " ' ( ) { } [ ] \ / @ # $ % ^ & * + = < > ` ~ |
	punctuationRe = regexp.MustCompile("[\\n\\r\\t.,!?:;\"'(){}\\[\\]\\\\/@#$%^&*+=<>`~|]")
	caser         = cases.Lower(language.Und)
)

// Tokenizer converts raw HTML into a term-frequency map, applying the same
// normalization a Query goes through.
type Tokenizer struct {
	stopwords map[string]struct{}
}

// New builds a Tokenizer. stopwords may be nil, meaning no filtering.
func New(stopwords map[string]struct{}) *Tokenizer {
	return &Tokenizer{stopwords: stopwords}
}

// Tokenize strips markup and punctuation from html, splits on whitespace,
// normalizes each token, drops tokens outside [3,32] runes and, if
// configured, stopwords, and returns term -> frequency.
func (t *Tokenizer) Tokenize(html string) map[string]int {
	stripped := markupRe.ReplaceAllString(html, " ")
	stripped = punctuationRe.ReplaceAllString(stripped, " ")

	freq := make(map[string]int)
	for _, raw := range strings.Fields(stripped) {
		term := Normalize(raw)
		if term == "" {
			continue
		}
		if t.stopwords != nil {
			if _, stop := t.stopwords[term]; stop {
				continue
			}
		}
		freq[term]++
	}
	return freq
}

// Normalize lowercases and Unicode-normalizes (NFC) a single token and
// enforces the [3,32] rune-length bound, returning "" if the token is
// rejected. Used for both indexed terms and incoming query terms so the two
// sides of the index always agree.
func Normalize(raw string) string {
	term := norm.NFC.String(caser.String(raw))
	length := len([]rune(term))
	if length < minTermLength || length > maxTermLength {
		return ""
	}
	return term
}

// NormalizeQuery splits a raw query string on whitespace and normalizes
// each term, dropping any that fail the length bound. Stopwords are never
// filtered from queries — a query of all stopwords is still a valid (if
// unproductive) query.
func NormalizeQuery(q string) []string {
	fields := strings.Fields(q)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := Normalize(f); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// LoadStopwords reads one lowercase term per line from raw text content
// (as read from stopwords.txt), ignoring blank lines.
func LoadStopwords(content string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		set[Normalize(line)] = struct{}{}
	}
	delete(set, "")
	return set
}
