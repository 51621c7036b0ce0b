package tracking

import (
	"time"

	log "github.com/sirupsen/logrus"

	"soltracker/internal/models"
	"soltracker/pkg/swap"
)

// PairStore persists wallet/token first-swap records.
type PairStore interface {
	SaveWalletTokenPair(pair *models.WalletToken) error
}

// SkipFunc reports whether a mint is excluded from aggregation.
type SkipFunc func(address string) bool

// WalletTracker derives the per-wallet first-buy and first-sell aggregate
// from the swap stream. The store keeps the first write per direction, so
// replays are harmless.
type WalletTracker struct {
	store PairStore
	skip  SkipFunc
}

func NewWalletTracker(store PairStore, skip SkipFunc) *WalletTracker {
	return &WalletTracker{store: store, skip: skip}
}

// TrackWalletToken records one swap against the wallet's aggregate. Swaps
// with no usable token side (wrapped SOL, skip-listed, missing mint or
// amount) are ignored.
func (t *WalletTracker) TrackWalletToken(event *swap.Event) error {
	if event == nil || event.FeePayer == "" {
		return nil
	}

	var token, amount string
	switch event.Type {
	case swap.TxTypeBuy:
		token = event.MintTo
		amount = event.InAmount
	case swap.TxTypeSell:
		token = event.MintFrom
		amount = event.OutAmount
	default:
		return nil
	}

	if token == "" || amount == "" || token == swap.WrappedSolMint {
		return nil
	}
	if t.skip != nil && t.skip(token) {
		return nil
	}

	pair := &models.WalletToken{
		Wallet: event.FeePayer,
		Token:  token,
	}

	at := event.ObservedAt
	if at.IsZero() {
		at = time.Now()
	}
	txID := event.TransactionID

	switch event.Type {
	case swap.TxTypeBuy:
		pair.FirstBuyTx = &txID
		pair.FirstBuyAt = &at
		pair.FirstBuyAmount = &amount
	case swap.TxTypeSell:
		pair.FirstSellTx = &txID
		pair.FirstSellAt = &at
		pair.FirstSellAmount = &amount
	}

	if err := t.store.SaveWalletTokenPair(pair); err != nil {
		log.WithFields(log.Fields{
			"wallet": event.FeePayer,
			"token":  token,
		}).Errorf("failed to track wallet token: %v", err)
		return err
	}
	return nil
}
