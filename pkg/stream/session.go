package stream

import (
	"io"

	"soltracker/pkg/swap"
)

// Handler consumes one transaction delivered by a session.
type Handler func(tx *swap.RawTransaction)

// cursor is the resume state one session hands back to the tracker.
type cursor struct {
	lastSlot    uint64
	hasSlot     bool
	hasReceived bool
}

// runSession drains a subscription until it ends. Every delivered message
// advances the cursor before the handler runs, so a handler panic or slow
// consumer never loses the stream position. Returns a nil error on a clean
// upstream end and the transport error otherwise.
func runSession(sub Subscription, handler Handler) (cursor, error) {
	var cur cursor
	for {
		tx, err := sub.Recv()
		if err != nil {
			if err == io.EOF {
				return cur, nil
			}
			return cur, err
		}
		if tx == nil {
			continue
		}

		cur.hasReceived = true
		if tx.Slot > 0 {
			cur.lastSlot = tx.Slot
			cur.hasSlot = true
		}

		if tx.Signature != "" && handler != nil {
			handler(tx)
		}
	}
}
