package enrich

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const (
	defaultMaxConcurrent = 3
	// every two seconds, cron spec with seconds field
	defaultTickSpec = "*/2 * * * * *"
)

// Enricher resolves one mint; the queue does not care how.
type Enricher interface {
	EnrichToken(address string) error
}

// ExistsFunc reports whether a mint already has a stored metadata row.
type ExistsFunc func(address string) (bool, error)

// TokenQueue feeds newly seen mints to the enricher with bounded
// concurrency. A mint is held at most once across the pending and
// in-flight sets; failed lookups are not requeued automatically, the next
// swap on that mint enqueues it again.
type TokenQueue struct {
	enricher      Enricher
	exists        ExistsFunc
	maxConcurrent int

	mu         sync.Mutex
	pending    []string
	pendingSet map[string]struct{}
	inFlight   map[string]struct{}

	cron *cron.Cron
}

func NewTokenQueue(enricher Enricher, exists ExistsFunc, maxConcurrent int) *TokenQueue {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &TokenQueue{
		enricher:      enricher,
		exists:        exists,
		maxConcurrent: maxConcurrent,
		pendingSet:    make(map[string]struct{}),
		inFlight:      make(map[string]struct{}),
	}
}

// AddToken enqueues a mint for enrichment. Duplicates of a pending or
// in-flight mint and mints already stored are dropped.
func (q *TokenQueue) AddToken(address string) {
	if address == "" {
		return
	}

	q.mu.Lock()
	if _, ok := q.pendingSet[address]; ok {
		q.mu.Unlock()
		return
	}
	if _, ok := q.inFlight[address]; ok {
		q.mu.Unlock()
		return
	}
	// reserve the slot before the existence check so a concurrent AddToken
	// for the same mint cannot slip in
	q.pendingSet[address] = struct{}{}
	q.mu.Unlock()

	if q.exists != nil {
		known, err := q.exists(address)
		if err != nil {
			log.Errorf("failed to check token %s before enqueue: %v", address, err)
		}
		if err == nil && known {
			q.mu.Lock()
			delete(q.pendingSet, address)
			q.mu.Unlock()
			return
		}
	}

	q.mu.Lock()
	q.pending = append(q.pending, address)
	q.mu.Unlock()
}

// ProcessTick starts enrichment for queued mints up to the concurrency
// ceiling. Called from the cron schedule; safe to call directly.
func (q *TokenQueue) ProcessTick() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 || len(q.inFlight) >= q.maxConcurrent {
			q.mu.Unlock()
			return
		}
		address := q.pending[0]
		q.pending = q.pending[1:]
		delete(q.pendingSet, address)
		q.inFlight[address] = struct{}{}
		q.mu.Unlock()

		go q.process(address)
	}
}

func (q *TokenQueue) process(address string) {
	defer func() {
		q.mu.Lock()
		delete(q.inFlight, address)
		q.mu.Unlock()
	}()

	if err := q.enricher.EnrichToken(address); err != nil {
		log.Errorf("token enrichment failed for %s: %v", address, err)
	}
}

// Start schedules the queue drain.
func (q *TokenQueue) Start() error {
	if q.cron != nil {
		return fmt.Errorf("token queue is already running")
	}
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(defaultTickSpec, q.ProcessTick); err != nil {
		return fmt.Errorf("failed to schedule token queue: %w", err)
	}
	c.Start()
	q.cron = c
	log.WithField("max_concurrent", q.maxConcurrent).Info("token enrichment queue started")
	return nil
}

// Stop halts the schedule; in-flight enrichments run to completion.
func (q *TokenQueue) Stop() {
	if q.cron != nil {
		q.cron.Stop()
		q.cron = nil
	}
}

// Stats reports the queued and in-flight counts.
func (q *TokenQueue) Stats() (pending, inFlight int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending), len(q.inFlight)
}
