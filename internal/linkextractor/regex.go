package linkextractor

import "regexp"

var hrefRe = regexp.MustCompile(`(?i)<a\s+(?:[^>]*?\s+)?href=["'](.*?)["']`)

// RegexExtractor finds href attributes on anchor tags with a single
// regular expression, matching the spec's literal link-discovery contract.
type RegexExtractor struct{}

// NewRegexExtractor returns the default LinkExtractor.
func NewRegexExtractor() RegexExtractor {
	return RegexExtractor{}
}

func (RegexExtractor) Extract(html string) []string {
	matches := hrefRe.FindAllStringSubmatch(html, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		links = append(links, m[1])
	}
	return links
}
