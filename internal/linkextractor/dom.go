package linkextractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DOMExtractor discovers links by parsing the document into a DOM tree and
// selecting every anchor's href attribute, rather than scanning with a
// regular expression. Selectable via the crawler.link_extractor=dom config
// key; more tolerant of malformed markup than RegexExtractor.
type DOMExtractor struct{}

// NewDOMExtractor returns a DOM-based LinkExtractor.
func NewDOMExtractor() DOMExtractor {
	return DOMExtractor{}
}

func (DOMExtractor) Extract(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			links = append(links, href)
		}
	})
	return links
}
