package linkextractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegexExtractorFindsHrefs(t *testing.T) {
	html := `<a href="/b">b</a> and <a class="x" href='http://other/c'>c</a>`
	links := NewRegexExtractor().Extract(html)
	assert.Equal(t, []string{"/b", "http://other/c"}, links)
}

func TestRegexExtractorCaseInsensitiveTag(t *testing.T) {
	html := `<A HREF="/b">b</A>`
	links := NewRegexExtractor().Extract(html)
	assert.Equal(t, []string{"/b"}, links)
}

func TestRegexExtractorNoLinks(t *testing.T) {
	links := NewRegexExtractor().Extract("<p>no links here</p>")
	assert.Empty(t, links)
}
