package searchserver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ryzhov/crawlsearch/internal/storage"
)

func TestFirstFieldValue(t *testing.T) {
	assert.Equal(t, "hello+world", firstFieldValue("q=hello+world"))
	assert.Equal(t, "", firstFieldValue("noequalsign"))
	assert.Equal(t, "b=c", firstFieldValue("a=b=c"))
}

func TestRenderResultsEmpty(t *testing.T) {
	assert.Equal(t, "<p><em>Ничего не найдено.</em></p>", renderResults(nil))
}

func TestRenderResultsEscapesURL(t *testing.T) {
	out := renderResults([]storage.Result{{URL: `http://h/?a=1&b=2`, Score: 5}})
	assert.Contains(t, out, "&amp;")
	assert.Contains(t, out, "рейтинг: 5")
	assert.NotContains(t, out, `?a=1&b=2"`)
}
