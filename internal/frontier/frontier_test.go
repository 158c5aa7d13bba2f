package frontier

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeedsAtDepth1(t *testing.T) {
	f := New("http://h/a")
	entry, ok := f.Pop()
	require.True(t, ok)
	assert.Equal(t, "http://h/a", entry.URL)
	assert.Equal(t, 1, entry.Depth)
}

func TestTryPushDedupesByCanonicalURL(t *testing.T) {
	f := New("http://h/a")
	_, _ = f.Pop()

	assert.True(t, f.TryPush("http://h/b", 2))
	assert.False(t, f.TryPush("http://h/b/", 2), "trailing slash should canonicalize to the same key")
	assert.False(t, f.TryPush("HTTP://H/b", 2), "scheme/host case should canonicalize to the same key")
}

func TestPopReturnsFalseWhenQuiescent(t *testing.T) {
	f := New("http://h/a")
	entry, ok := f.Pop()
	require.True(t, ok)

	f.Done()

	_, ok = f.Pop()
	assert.False(t, ok, "empty queue with zero active workers must signal quiescence")
	_ = entry
}

func TestPopWaitsForActiveWorkerToEnqueueMore(t *testing.T) {
	f := New("http://h/a")
	entry, ok := f.Pop()
	require.True(t, ok)

	var wg sync.WaitGroup
	wg.Add(1)
	results := make(chan bool, 1)
	go func() {
		defer wg.Done()
		_, popOK := f.Pop()
		results <- popOK
	}()

	f.TryPush("http://h/b", entry.Depth+1)
	f.Done()

	wg.Wait()
	popped := <-results
	assert.True(t, popped, "a worker blocked on Pop must receive the entry pushed while the first worker was still active")
}

func TestCloseForcesQuiescence(t *testing.T) {
	f := New("http://h/a")
	f.Close()

	_, ok := f.Pop()
	assert.True(t, ok, "the seed entry already in queue is still delivered")

	_, ok = f.Pop()
	assert.False(t, ok)
}
