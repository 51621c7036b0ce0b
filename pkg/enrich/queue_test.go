package enrich

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingEnricher parks every call until released, so tests can observe
// the in-flight set.
type blockingEnricher struct {
	started chan string
	release chan struct{}
	err     error

	mu    sync.Mutex
	calls []string
}

func newBlockingEnricher() *blockingEnricher {
	return &blockingEnricher{
		started: make(chan string, 16),
		release: make(chan struct{}),
	}
}

func (e *blockingEnricher) EnrichToken(address string) error {
	e.mu.Lock()
	e.calls = append(e.calls, address)
	e.mu.Unlock()
	e.started <- address
	<-e.release
	return e.err
}

func (e *blockingEnricher) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestQueueDeduplicatesPendingTokens(t *testing.T) {
	q := NewTokenQueue(newBlockingEnricher(), nil, 3)

	q.AddToken("MintA")
	q.AddToken("MintA")
	q.AddToken("MintB")
	q.AddToken("")

	pending, inFlight := q.Stats()
	assert.Equal(t, 2, pending)
	assert.Equal(t, 0, inFlight)
}

func TestQueueSkipsKnownTokens(t *testing.T) {
	q := NewTokenQueue(newBlockingEnricher(), func(address string) (bool, error) {
		return address == "KnownMint", nil
	}, 3)

	q.AddToken("KnownMint")
	q.AddToken("NewMint")

	pending, _ := q.Stats()
	assert.Equal(t, 1, pending)

	// a failed existence check keeps the token queued rather than losing it
	q2 := NewTokenQueue(newBlockingEnricher(), func(address string) (bool, error) {
		return false, assert.AnError
	}, 3)
	q2.AddToken("MintX")
	pending, _ = q2.Stats()
	assert.Equal(t, 1, pending)
}

func TestQueueRespectsConcurrencyCeiling(t *testing.T) {
	enricher := newBlockingEnricher()
	q := NewTokenQueue(enricher, nil, 3)

	for _, mint := range []string{"MintA", "MintB", "MintC", "MintD", "MintE"} {
		q.AddToken(mint)
	}

	q.ProcessTick()
	waitFor(t, func() bool { return enricher.callCount() == 3 })

	pending, inFlight := q.Stats()
	assert.Equal(t, 2, pending)
	assert.Equal(t, 3, inFlight)

	// another tick while saturated starts nothing new
	q.ProcessTick()
	assert.Equal(t, 3, enricher.callCount())

	// a duplicate of an in-flight mint is dropped
	q.AddToken("MintA")
	pending, _ = q.Stats()
	assert.Equal(t, 2, pending)

	close(enricher.release)
	waitFor(t, func() bool {
		_, inFlight := q.Stats()
		return inFlight == 0
	})

	q.ProcessTick()
	waitFor(t, func() bool { return enricher.callCount() == 5 })
}

func TestQueueDoesNotRequeueFailures(t *testing.T) {
	enricher := newBlockingEnricher()
	enricher.err = assert.AnError
	close(enricher.release)

	q := NewTokenQueue(enricher, nil, 3)
	q.AddToken("MintA")
	q.ProcessTick()

	waitFor(t, func() bool {
		pending, inFlight := q.Stats()
		return pending == 0 && inFlight == 0
	})
	assert.Equal(t, 1, enricher.callCount())

	// the next sighting of the mint enqueues it again
	q.AddToken("MintA")
	pending, _ := q.Stats()
	require.Equal(t, 1, pending)
}

func TestQueueStartStop(t *testing.T) {
	q := NewTokenQueue(newBlockingEnricher(), nil, 3)
	require.NoError(t, q.Start())
	assert.Error(t, q.Start())
	q.Stop()
	require.NoError(t, q.Start())
	q.Stop()
}
