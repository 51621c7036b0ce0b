package stream

import (
	"context"

	"soltracker/pkg/swap"
)

// SubscribeRequest is the filter for one subscription session: the tracked
// wallet set, commitment level, and an optional resume slot.
type SubscribeRequest struct {
	// Addresses a transaction must touch to be delivered (accountInclude).
	Addresses []string
	// Commitment level, e.g. "confirmed".
	Commitment string
	// FromSlot resumes the stream from a previous position when set;
	// nil subscribes from the live tip.
	FromSlot *uint64
}

// Subscription is one open stream of transactions. Recv blocks until the
// next transaction, a transport error, or io.EOF on a clean upstream end.
// Close unblocks a pending Recv promptly.
type Subscription interface {
	Recv() (*swap.RawTransaction, error)
	Close() error
}

// SubscribeClient opens subscription sessions against the streaming
// collaborator.
type SubscribeClient interface {
	Subscribe(ctx context.Context, req SubscribeRequest) (Subscription, error)
}
