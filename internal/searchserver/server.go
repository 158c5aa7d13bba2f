// Package searchserver implements the minimal HTTP front-end: a static
// search form and a POST endpoint that consults the storage layer.
package searchserver

import (
	"context"
	"fmt"
	"html"
	"io"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"strings"

	"github.com/ryzhov/crawlsearch/internal/logging"
	"github.com/ryzhov/crawlsearch/internal/storage"
	"github.com/ryzhov/crawlsearch/internal/tokenizer"
)

const resultsMarker = "<!--RESULTS-->"

// Server is the search HTTP front-end.
type Server struct {
	Store       *storage.Store
	Logger      *logging.Logger
	FormHTML    string
	ResultsHTML string

	httpServer *http.Server
	sem        chan struct{}
}

// New builds a Server. formHTML and resultsHTML are the verbatim contents
// of html/search_form.html and html/search_results.html.
func New(store *storage.Store, logger *logging.Logger, formHTML, resultsHTML string) *Server {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	return &Server{
		Store:       store,
		Logger:      logger,
		FormHTML:    formHTML,
		ResultsHTML: resultsHTML,
		sem:         make(chan struct{}, workers),
	}
}

// ListenAndServe binds addr and serves until ctx is cancelled, then
// performs a graceful shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.dispatch("/", s.handleForm))
	mux.HandleFunc("/search", s.dispatch("/search", s.handleSearch))

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
		ConnState: func(_ net.Conn, state http.ConnState) {
			_ = state
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return s.httpServer.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// dispatch bounds concurrent in-flight handlers to the server's worker
// pool size, matching the "event loop + worker pool sized to hardware
// concurrency" contract, and returns 404 for any path other than exact.
func (s *Server) dispatch(exact string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Connection", "close")

		if r.URL.Path != exact {
			http.Error(w, "404 Not Found", http.StatusNotFound)
			return
		}

		s.sem <- struct{}{}
		defer func() { <-s.sem }()

		handler(w, r)
	}
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "404 Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	io.WriteString(w, s.FormHTML)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "404 Not Found", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.Logger.Error("read search body failed", "err", err.Error())
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
		return
	}

	query := firstFieldValue(string(body))
	decoded, err := url.QueryUnescape(query)
	if err != nil {
		decoded = query
	}

	terms := tokenizer.NormalizeQuery(decoded)

	results, err := s.Store.Search(r.Context(), terms)
	if err != nil {
		s.Logger.Error("search failed", "err", err.Error())
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	io.WriteString(w, strings.Replace(s.ResultsHTML, resultsMarker, renderResults(results), 1))
}

// firstFieldValue extracts the value of the first urlencoded field (the
// substring after the first '=') without decoding it.
func firstFieldValue(body string) string {
	idx := strings.IndexByte(body, '=')
	if idx < 0 {
		return ""
	}
	return body[idx+1:]
}

func renderResults(results []storage.Result) string {
	if len(results) == 0 {
		return "<p><em>Ничего не найдено.</em></p>"
	}

	var b strings.Builder
	b.WriteString("<ul>")
	for _, r := range results {
		escaped := html.EscapeString(r.URL)
		fmt.Fprintf(&b, "<li><a href='%s'>%s</a> — рейтинг: %d</li>", escaped, escaped, r.Score)
	}
	b.WriteString("</ul>")
	return b.String()
}
