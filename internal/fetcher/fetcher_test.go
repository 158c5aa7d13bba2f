package fetcher

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLoopbackServer starts a plain-TCP httptest server whose Listener we can
// dial directly, since HTTPFetcher speaks raw HTTP/1.1 rather than using
// net/http's client transport.
func newLoopbackServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchReturnsBodyOn200(t *testing.T) {
	srv := newLoopbackServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello world"))
	})

	f := NewHTTPFetcher("test-agent", time.Second)
	result, err := f.Fetch(srv.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, "hello world", result.Body)
	assert.Equal(t, http.StatusOK, result.Status)
}

func TestFetchFollowsRedirect(t *testing.T) {
	srv := newLoopbackServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			w.Header().Set("Location", "/final")
			w.WriteHeader(http.StatusFound)
			return
		}
		w.Write([]byte("final page"))
	})

	f := NewHTTPFetcher("test-agent", time.Second)
	result, err := f.Fetch(srv.URL + "/start")
	require.NoError(t, err)
	assert.Equal(t, "final page", result.Body)
}

func TestFetchNon2xxStatusIsError(t *testing.T) {
	srv := newLoopbackServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	f := NewHTTPFetcher("test-agent", time.Second)
	_, err := f.Fetch(srv.URL + "/")
	assert.Error(t, err)
}

func TestFetchDialFailureIsError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close() // nothing listens here now

	f := NewHTTPFetcher("test-agent", 200*time.Millisecond)
	_, err = f.Fetch("http://" + addr + "/")
	assert.Error(t, err)
}
