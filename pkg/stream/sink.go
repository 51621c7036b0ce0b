package stream

import (
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"soltracker/pkg/swap"
)

// EventHandler consumes one normalized swap event.
type EventHandler func(event *swap.Event)

// Sink decouples the stream loop from persistence and enrichment. Events go
// through a bounded buffer drained by worker goroutines; when the buffer is
// full the newest event is dropped and counted, never blocking the stream.
type Sink struct {
	ch       chan *swap.Event
	handlers []EventHandler
	wg       sync.WaitGroup
	once     sync.Once
	closed   atomic.Bool
	dropped  atomic.Uint64
}

func NewSink(buffer, workers int, handlers ...EventHandler) *Sink {
	if buffer <= 0 {
		buffer = 1024
	}
	if workers <= 0 {
		workers = 1
	}
	s := &Sink{
		ch:       make(chan *swap.Event, buffer),
		handlers: handlers,
	}
	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.drain()
	}
	return s
}

// Enqueue hands an event to the workers. Returns false when the buffer is
// full and the event was dropped.
func (s *Sink) Enqueue(event *swap.Event) bool {
	if event == nil || s.closed.Load() {
		return false
	}
	select {
	case s.ch <- event:
		return true
	default:
		s.dropped.Add(1)
		log.WithFields(log.Fields{
			"transaction_id": event.TransactionID,
			"dropped_total":  s.dropped.Load(),
		}).Warn("event sink full, dropping event")
		return false
	}
}

// Dropped reports how many events were discarded on a full buffer.
func (s *Sink) Dropped() uint64 {
	return s.dropped.Load()
}

// Close stops accepting work and waits for the workers to drain the buffer.
func (s *Sink) Close() {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
	})
	s.wg.Wait()
}

func (s *Sink) drain() {
	defer s.wg.Done()
	for event := range s.ch {
		for _, handler := range s.handlers {
			handler(event)
		}
	}
}
