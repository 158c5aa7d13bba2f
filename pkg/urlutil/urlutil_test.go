package urlutil

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("http://example.com"))
	assert.True(t, IsHTTPURL("https://example.com"))
	assert.False(t, IsHTTPURL("/relative"))
	assert.False(t, IsHTTPURL("ftp://example.com"))
}

func TestIsRelativeURL(t *testing.T) {
	assert.True(t, IsRelativeURL("/a/b"))
	assert.False(t, IsRelativeURL(""))
	assert.False(t, IsRelativeURL("http://example.com"))
	assert.False(t, IsRelativeURL("a/b"))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "http://h/b", Resolve("http://h/a", "/b"))
	assert.Equal(t, "https://other.com/path", Resolve("https://other.com/x/y", "/path"))
}

func TestResolveIdempotentOnAbsolute(t *testing.T) {
	base := "http://h/a"
	absolute := "http://h/already/absolute"
	assert.Equal(t, absolute, Resolve(base, "/already/absolute"))
	assert.Equal(t, absolute, Resolve(Resolve(base, "/already/absolute"), "/already/absolute"))
}

func TestCanonicalizeStripsDefaultPortAndTrailingSlash(t *testing.T) {
	u, err := url.Parse("HTTP://Example.com:80/path/#frag?q=1")
	require.NoError(t, err)
	u.RawQuery = "q=1"
	u.Fragment = "frag"
	u.Path = "/path/"

	canon := Canonicalize(*u)
	assert.Equal(t, "http", canon.Scheme)
	assert.Equal(t, "example.com", canon.Host)
	assert.Equal(t, "/path", canon.Path)
	assert.Equal(t, "", canon.Fragment)
	assert.Equal(t, "", canon.RawQuery)
}

func TestCanonicalizeRootPathUnaffected(t *testing.T) {
	u, _ := url.Parse("http://example.com/")
	canon := Canonicalize(*u)
	assert.Equal(t, "/", canon.Path)
}
