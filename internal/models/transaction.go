package models

import "time"

// Transaction is one normalized swap observed on a tracked wallet.
// Amounts are raw base units stored as numeric strings; token amounts on
// Solana exceed what float64 can represent exactly.
type Transaction struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	TransactionID string    `gorm:"size:128;uniqueIndex;not null" json:"transaction_id"`
	Platform      string    `gorm:"size:32;not null;index" json:"platform"`
	Type          string    `gorm:"size:16;not null" json:"type"`
	MintFrom      string    `gorm:"size:64;not null" json:"mint_from"`
	MintTo        string    `gorm:"size:64;not null" json:"mint_to"`
	InAmount      string    `gorm:"type:numeric(40,0);not null" json:"in_amount"`
	OutAmount     string    `gorm:"type:numeric(40,0);not null" json:"out_amount"`
	FeePayer      string    `gorm:"size:64;not null;index" json:"fee_payer"`
	Slot          uint64    `gorm:"not null" json:"slot"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
