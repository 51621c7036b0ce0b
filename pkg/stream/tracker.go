package stream

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// Config holds the reconnection policy knobs.
type Config struct {
	// RetryDelay is the pause before resubscribing after a session error.
	RetryDelay time.Duration
	// MaxRetryWithLastSlot bounds how many consecutive error retries may
	// resume from the remembered slot before falling back to the live tip.
	MaxRetryWithLastSlot int
	// Commitment level passed to every subscription.
	Commitment string
}

func DefaultConfig() Config {
	return Config{
		RetryDelay:           time.Second,
		MaxRetryWithLastSlot: 30,
		Commitment:           "confirmed",
	}
}

// Tracker owns the subscription lifecycle for the tracked wallet set. It
// reconnects on failure, resuming from the last observed slot while the
// retry budget allows, and hands every delivered transaction to its handler.
type Tracker struct {
	client  SubscribeClient
	handler Handler
	config  Config

	mu        sync.Mutex
	addresses []string
	running   bool
	activeSub Subscription
	done      chan struct{}

	shouldStop atomic.Bool
}

func NewTracker(client SubscribeClient, handler Handler, config Config) *Tracker {
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	if config.MaxRetryWithLastSlot <= 0 {
		config.MaxRetryWithLastSlot = 30
	}
	if config.Commitment == "" {
		config.Commitment = "confirmed"
	}
	return &Tracker{
		client:  client,
		handler: handler,
		config:  config,
	}
}

// SetAddresses replaces the tracked wallet set. The change applies to the
// next subscription session; call Stop and Start to apply immediately.
func (t *Tracker) SetAddresses(addresses []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.addresses = append([]string(nil), addresses...)
}

func (t *Tracker) Addresses() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.addresses...)
}

func (t *Tracker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Start launches the subscription loop. Returns an error when already
// running or when no addresses are set.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return fmt.Errorf("tracker is already running")
	}
	if len(t.addresses) == 0 {
		return fmt.Errorf("no addresses to track")
	}

	t.running = true
	t.shouldStop.Store(false)
	t.done = make(chan struct{})
	go t.run(t.done)

	log.WithField("addresses", len(t.addresses)).Info("wallet tracking started")
	return nil
}

// Stop signals the loop to exit and closes the active subscription so a
// blocked Recv returns. Waits for the loop to finish.
func (t *Tracker) Stop() error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return fmt.Errorf("tracker is not running")
	}
	t.shouldStop.Store(true)
	if t.activeSub != nil {
		t.activeSub.Close()
	}
	done := t.done
	t.mu.Unlock()

	<-done
	log.Info("wallet tracking stopped")
	return nil
}

func (t *Tracker) setActiveSub(sub Subscription) {
	t.mu.Lock()
	t.activeSub = sub
	stopping := t.shouldStop.Load()
	t.mu.Unlock()

	// Stop may land between Subscribe returning and the handle being
	// registered; close here so Recv never blocks past a stop.
	if stopping && sub != nil {
		sub.Close()
	}
}

func (t *Tracker) run(done chan struct{}) {
	defer func() {
		t.mu.Lock()
		t.running = false
		t.activeSub = nil
		t.mu.Unlock()
		close(done)
	}()

	var lastSlot *uint64
	retryCount := 0

	for !t.shouldStop.Load() {
		req := SubscribeRequest{
			Addresses:  t.Addresses(),
			Commitment: t.config.Commitment,
			FromSlot:   lastSlot,
		}

		sub, err := t.client.Subscribe(context.Background(), req)
		if err != nil {
			log.Errorf("subscribe failed: %v", err)
			lastSlot, retryCount = t.backoff(lastSlot, retryCount)
			continue
		}
		t.setActiveSub(sub)

		cur, err := runSession(sub, t.handler)
		t.setActiveSub(nil)
		sub.Close()

		if cur.hasSlot {
			slot := cur.lastSlot
			lastSlot = &slot
		}
		if cur.hasReceived {
			retryCount = 0
		}

		if t.shouldStop.Load() {
			return
		}

		if err == nil {
			// Clean upstream end: resubscribe immediately from the
			// last known position.
			log.WithField("last_slot", lastSlot).Info("stream ended, resubscribing")
			continue
		}

		log.Errorf("stream error: %v", err)
		lastSlot, retryCount = t.backoff(lastSlot, retryCount)
	}
}

// backoff sleeps the retry delay and applies the resume policy: keep the
// slot hint while the retry budget allows, otherwise fall back to the live
// tip and reset the counter.
func (t *Tracker) backoff(lastSlot *uint64, retryCount int) (*uint64, int) {
	time.Sleep(t.config.RetryDelay)

	if lastSlot != nil && retryCount < t.config.MaxRetryWithLastSlot {
		return lastSlot, retryCount + 1
	}
	if lastSlot != nil {
		log.WithField("last_slot", *lastSlot).Warn("retry budget exhausted, resuming from live tip")
	}
	return nil, 0
}
