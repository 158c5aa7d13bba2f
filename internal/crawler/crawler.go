// Package crawler implements the bounded-depth, deduplicated BFS worker
// pool: it pulls entries from the frontier, fetches them, tokenizes and
// persists the result, and extracts further links.
package crawler

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ryzhov/crawlsearch/internal/fetcher"
	"github.com/ryzhov/crawlsearch/internal/frontier"
	"github.com/ryzhov/crawlsearch/internal/linkextractor"
	"github.com/ryzhov/crawlsearch/internal/logging"
	"github.com/ryzhov/crawlsearch/internal/storage"
	"github.com/ryzhov/crawlsearch/internal/tokenizer"
	"github.com/ryzhov/crawlsearch/pkg/failure"
	"github.com/ryzhov/crawlsearch/pkg/hashutil"
	"github.com/ryzhov/crawlsearch/pkg/limiter"
	"github.com/ryzhov/crawlsearch/pkg/urlutil"
)

// Crawler orchestrates the worker pool over a single Frontier.
type Crawler struct {
	Fetcher   fetcher.Fetcher
	Extractor linkextractor.LinkExtractor
	Tokenizer *tokenizer.Tokenizer
	Store     *storage.Store
	Limiter   limiter.RateLimiter
	Logger    *logging.Logger
	MaxDepth  int
	SeedURL   string
	// Timeout is the wall-clock ceiling wrapped around every fetch, as
	// defense in depth in case the fetcher's own socket deadline isn't
	// honored.
	Timeout time.Duration

	frontier *frontier.Frontier
}

// Run seeds the frontier with c.SeedURL and runs workers (sized to
// hardware concurrency, minimum 1) until the frontier is quiescent. When
// ctx is cancelled the frontier is closed: no new links are enqueued, and
// workers exit once the entries already queued have been processed.
func (c *Crawler) Run(ctx context.Context) {
	c.frontier = frontier.New(c.SeedURL)

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.frontier.Close()
		case <-stop:
		}
	}()
	defer close(stop)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			c.worker()
		}()
	}
	wg.Wait()
}

func (c *Crawler) worker() {
	for {
		entry, ok := c.frontier.Pop()
		if !ok {
			return
		}
		fatal := c.process(entry)
		c.frontier.Done()
		if fatal {
			// A fatal error (e.g. the storage connection itself is
			// unusable) means no further work can make progress; close the
			// frontier so no new links are accepted and end this worker.
			// Other workers still pop entries already queued.
			c.frontier.Close()
			return
		}
	}
}

// process handles a single frontier entry end to end and reports whether
// it hit a fatal (crawl-ending) error, as opposed to a recoverable one
// that just skips this URL.
func (c *Crawler) process(entry frontier.Entry) bool {
	if entry.Depth > c.MaxDepth {
		return false
	}

	if host := hostOf(entry.URL); host != "" && c.Limiter != nil {
		c.Limiter.Wait(host)
	}

	result, err := c.fetchWithTimeout(entry.URL)
	if err != nil {
		severity := failure.SeverityOf(err)
		c.Logger.Warn("fetch failed", "url", entry.URL, "depth", entry.Depth, "severity", severity.String(), "err", err.Error())
		return severity == failure.SeverityFatal
	}
	if result.Body == "" {
		c.Logger.Warn("empty body", "url", entry.URL, "depth", entry.Depth)
		return false
	}

	contentHash := hashutil.HashBytes(hashutil.AlgoBlake3, []byte(result.Body))

	if prevHash, found, err := c.Store.ContentHash(context.Background(), result.FinalURL); err != nil {
		severity := failure.SeverityOf(err)
		c.Logger.Error("content hash lookup failed", "url", result.FinalURL, "severity", severity.String(), "err", err.Error())
		if severity == failure.SeverityFatal {
			return true
		}
	} else if found && prevHash == contentHash {
		c.Logger.Info("skipping unchanged document", "url", result.FinalURL, "depth", entry.Depth)
	} else {
		freq := c.Tokenizer.Tokenize(result.Body)
		if err := c.Store.SaveDocument(context.Background(), result.FinalURL, contentHash, freq); err != nil {
			severity := failure.SeverityOf(err)
			c.Logger.Error("save document failed", "url", result.FinalURL, "severity", severity.String(), "err", err.Error())
			if severity == failure.SeverityFatal {
				return true
			}
			return false
		}
		c.Logger.Info("indexed document", "url", result.FinalURL, "depth", entry.Depth, "terms", len(freq))
	}

	nextDepth := entry.Depth + 1
	if nextDepth > c.MaxDepth {
		return false
	}

	for _, href := range c.Extractor.Extract(result.Body) {
		link := resolveLink(result.FinalURL, href)
		if link == "" {
			continue
		}
		c.frontier.TryPush(link, nextDepth)
	}
	return false
}

// fetchWithTimeout wraps the fetcher call in a wall-clock timeout on top
// of its own socket deadline, as defense in depth in case the fetcher
// cannot honor that deadline itself.
func (c *Crawler) fetchWithTimeout(rawURL string) (fetcher.Result, error) {
	if c.Timeout <= 0 {
		return c.Fetcher.Fetch(rawURL)
	}

	type outcome struct {
		result fetcher.Result
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		result, err := c.Fetcher.Fetch(rawURL)
		ch <- outcome{result, err}
	}()

	select {
	case out := <-ch:
		return out.result, out.err
	case <-time.After(c.Timeout):
		return fetcher.Result{}, failure.Wrap(failure.SeverityRecoverable,
			fmt.Errorf("crawler: wall-clock timeout fetching %s", rawURL))
	}
}

func resolveLink(base, href string) string {
	switch {
	case urlutil.IsHTTPURL(href):
		return href
	case urlutil.IsRelativeURL(href):
		return urlutil.Resolve(base, href)
	default:
		return ""
	}
}

func hostOf(rawURL string) string {
	if idx := len("https://"); len(rawURL) > idx && rawURL[:idx] == "https://" {
		return hostFromAfterScheme(rawURL[idx:])
	}
	if idx := len("http://"); len(rawURL) > idx && rawURL[:idx] == "http://" {
		return hostFromAfterScheme(rawURL[idx:])
	}
	return ""
}

func hostFromAfterScheme(rest string) string {
	for i, r := range rest {
		if r == '/' {
			return rest[:i]
		}
	}
	return rest
}
