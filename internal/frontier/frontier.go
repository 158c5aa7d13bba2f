// Package frontier implements the crawl queue: a FIFO of pending URLs, a
// visited set keyed by canonicalized URL, and the quiescence signal workers
// use to know when the crawl is finished.
//
// Termination does not poll. Each worker is "active" from the moment it
// pops an entry until it has finished extracting and enqueuing that page's
// links; the frontier is quiescent, and Pop returns ok=false to every
// blocked worker, only once the queue is empty AND no worker is active.
// This replaces a fixed-interval poll, which can observe a transiently
// empty queue while a worker is mid-extraction about to enqueue more work
// and terminate prematurely.
package frontier

import (
	"net/url"
	"sync"

	"github.com/ryzhov/crawlsearch/pkg/urlutil"
)

// Entry is a single pending crawl target.
type Entry struct {
	URL   string
	Depth int
}

// Frontier is safe for concurrent use by many crawl workers.
type Frontier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   *FIFOQueue[Entry]
	visited *Set[string]
	active  int
	closed  bool
}

// New returns a Frontier seeded with a single entry at depth 1.
func New(seedURL string) *Frontier {
	f := &Frontier{
		queue:   NewFIFOQueue[Entry](),
		visited: NewSet[string](),
	}
	f.cond = sync.NewCond(&f.mu)

	key := dedupKey(seedURL)
	f.visited.Add(key)
	f.queue.Push(Entry{URL: seedURL, Depth: 1})
	return f
}

func dedupKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	canon := urlutil.Canonicalize(*u)
	return canon.String()
}

// TryPush enqueues url at depth if it has not already been visited,
// reporting whether it was newly enqueued.
func (f *Frontier) TryPush(rawURL string, depth int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}

	key := dedupKey(rawURL)
	if !f.visited.Add(key) {
		return false
	}

	f.queue.Push(Entry{URL: rawURL, Depth: depth})
	f.cond.Broadcast()
	return true
}

// Pop blocks until an entry is available or the frontier becomes
// quiescent (queue empty and no worker active), in which case ok is
// false and the caller should exit. A successful Pop marks the caller
// active; the caller must call Done when it has finished processing the
// entry (including enqueuing any links it discovered).
func (f *Frontier) Pop() (entry Entry, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		if e, popped := f.queue.Pop(); popped {
			f.active++
			return e, true
		}
		if f.active == 0 || f.closed {
			f.closed = true
			f.cond.Broadcast()
			return Entry{}, false
		}
		f.cond.Wait()
	}
}

// Done marks the caller's previously-popped entry as fully processed.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active--
	f.cond.Broadcast()
}

// VisitedCount returns the number of distinct canonical URLs seen so far.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Len()
}

// Close stops TryPush from enqueuing anything further and makes Pop return
// ok=false as soon as the queue is empty, without waiting for active
// workers. Entries already queued are still handed out by Pop. Used by the
// signal handler / context cancellation path, external to the normal
// queue-empty-and-no-worker-active quiescence condition.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cond.Broadcast()
}
