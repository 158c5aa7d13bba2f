// Package fetcher implements the crawler's HTTP GET: a raw TCP (or TLS)
// connection with a single deadline spanning connect, handshake, request
// write, and response read, manually following redirects. No retries are
// performed anywhere in this package.
package fetcher

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/ryzhov/crawlsearch/pkg/failure"
)

const maxRedirects = 10

// Fetcher retrieves the body of a URL.
type Fetcher interface {
	Fetch(rawURL string) (Result, error)
}

// Result is the outcome of a successful fetch.
type Result struct {
	FinalURL string
	Body     string
	Status   int
}

// HTTPFetcher is the default Fetcher, speaking raw HTTP/1.1 over a
// manually-dialed connection.
type HTTPFetcher struct {
	UserAgent string
	Timeout   time.Duration
}

// NewHTTPFetcher builds an HTTPFetcher with the given User-Agent and
// per-request timeout (covering the full connect/handshake/write/read
// sequence for every hop).
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{UserAgent: userAgent, Timeout: timeout}
}

// Fetch follows redirects (up to 10) starting from rawURL and returns the
// final response body. A non-2xx status, I/O error, or TLS failure at any
// hop is reported as a recoverable error (no retry): the caller is
// expected to skip this URL and continue the crawl.
func (f *HTTPFetcher) Fetch(rawURL string) (Result, error) {
	current := rawURL

	for hop := 0; hop <= maxRedirects; hop++ {
		deadline := time.Now().Add(f.Timeout)

		u, err := url.Parse(current)
		if err != nil {
			return Result{}, recoverable("fetcher: parse url %q: %w", current, err)
		}

		resp, body, err := f.performFetch(u, deadline)
		if err != nil {
			return Result{}, failure.Wrap(failure.SeverityRecoverable, err)
		}

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			loc := resp.Header.Get("Location")
			if loc == "" {
				return Result{}, recoverable("fetcher: redirect %d without Location", resp.StatusCode)
			}
			next, err := u.Parse(loc)
			if err != nil {
				return Result{}, recoverable("fetcher: invalid redirect location %q: %w", loc, err)
			}
			current = next.String()
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return Result{}, recoverable("fetcher: non-2xx status %d for %s", resp.StatusCode, current)
		}

		return Result{FinalURL: current, Body: string(body), Status: resp.StatusCode}, nil
	}

	return Result{}, recoverable("fetcher: exceeded %d redirects starting from %s", maxRedirects, rawURL)
}

func recoverable(format string, args ...any) error {
	return failure.Wrap(failure.SeverityRecoverable, fmt.Errorf(format, args...))
}

func (f *HTTPFetcher) performFetch(u *url.URL, deadline time.Time) (*http.Response, []byte, error) {
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}
	addr := net.JoinHostPort(host, port)

	dialer := &net.Dialer{Deadline: deadline}
	rawConn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("fetcher: dial %s: %w", addr, err)
	}
	defer rawConn.Close()

	var conn net.Conn = rawConn
	if u.Scheme == "https" {
		tlsConn := tls.Client(rawConn, &tls.Config{ServerName: host})
		if err := tlsConn.SetDeadline(deadline); err != nil {
			return nil, nil, fmt.Errorf("fetcher: set tls deadline: %w", err)
		}
		if err := tlsConn.Handshake(); err != nil {
			return nil, nil, fmt.Errorf("fetcher: tls handshake %s: %w", addr, err)
		}
		conn = tlsConn
	}

	if err := conn.SetDeadline(deadline); err != nil {
		return nil, nil, fmt.Errorf("fetcher: set deadline: %w", err)
	}

	path := u.RequestURI()
	req := fmt.Sprintf("GET %s HTTP/1.1\r\nHost: %s\r\nUser-Agent: %s\r\nConnection: close\r\nAccept: */*\r\n\r\n",
		path, u.Host, f.UserAgent)

	if _, err := io.WriteString(conn, req); err != nil {
		return nil, nil, fmt.Errorf("fetcher: write request: %w", err)
	}

	reader := bufio.NewReader(conn)
	resp, err := http.ReadResponse(reader, &http.Request{Method: http.MethodGet})
	if err != nil {
		return nil, nil, fmt.Errorf("fetcher: read response: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("fetcher: read body: %w", err)
	}

	return resp, body, nil
}
