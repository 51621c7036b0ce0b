package swap

import "time"

// Platform identifies the trading protocol that produced a transaction.
type Platform string

const (
	PlatformRaydiumAmm       Platform = "RaydiumAmm"
	PlatformRaydiumCpmm      Platform = "RaydiumCpmm"
	PlatformRaydiumClmm      Platform = "RaydiumClmm"
	PlatformRaydiumLaunchPad Platform = "RaydiumLaunchPad"
	PlatformOrca             Platform = "Orca"
	PlatformMeteoraDLMM      Platform = "MeteoraDLMM"
	PlatformMeteoraDammV2    Platform = "MeteoraDammV2"
	PlatformMeteoraDBC       Platform = "MeteoraDBC"
	PlatformPumpFun          Platform = "PumpFun"
	PlatformPumpFunAmm       Platform = "PumpFunAmm"
)

// TxType is the direction of a swap relative to the quote asset.
type TxType string

const (
	TxTypeBuy     TxType = "Buy"
	TxTypeSell    TxType = "Sell"
	TxTypeUnknown TxType = "Unknown"
)

const (
	// WrappedSolMint is the quote asset buy/sell direction is defined against.
	WrappedSolMint = "So11111111111111111111111111111111111111112"

	// TokenProgramID is the SPL token program; swaps triggered from inner
	// instructions of a wrapping call surface through its transfers.
	TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

// Event is the normalized swap record produced by the dispatcher.
// Amounts are native units as base-10 strings (up to 128 bits).
type Event struct {
	TransactionID string    `json:"transaction_id"`
	Platform      Platform  `json:"platform"`
	Type          TxType    `json:"type"`
	MintFrom      string    `json:"mint_from"`
	MintTo        string    `json:"mint_to"`
	InAmount      string    `json:"in_amount"`
	OutAmount     string    `json:"out_amount"`
	FeePayer      string    `json:"fee_payer"`
	Slot          uint64    `json:"slot"`
	ObservedAt    time.Time `json:"observed_at"`
}

// RawTransaction is a stream transaction as handed to the dispatcher.
// Account keys and signature are already base58 encoded by the transport.
type RawTransaction struct {
	Signature   string
	Slot        uint64
	AccountKeys []string
	LogMessages []string
	Failed      bool
}

// FeePayer returns the transaction fee payer (first static account key).
func (tx *RawTransaction) FeePayer() string {
	if len(tx.AccountKeys) == 0 {
		return ""
	}
	return tx.AccountKeys[0]
}
