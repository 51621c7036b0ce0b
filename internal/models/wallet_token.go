package models

import "time"

// WalletToken records the first observed buy and sell per wallet and token.
// The first-* columns are written once and never overwritten; later swaps
// for the same pair leave them untouched.
type WalletToken struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Wallet string `gorm:"size:64;not null;uniqueIndex:idx_wallet_token;index" json:"wallet"`
	Token  string `gorm:"size:64;not null;uniqueIndex:idx_wallet_token;index" json:"token"`

	FirstBuyTx      *string    `gorm:"size:128" json:"first_buy_tx"`
	FirstBuyAt      *time.Time `json:"first_buy_at"`
	FirstBuyAmount  *string    `gorm:"type:numeric(40,0)" json:"first_buy_amount"`
	FirstSellTx     *string    `gorm:"size:128" json:"first_sell_tx"`
	FirstSellAt     *time.Time `json:"first_sell_at"`
	FirstSellAmount *string    `gorm:"type:numeric(40,0)" json:"first_sell_amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WalletToken) TableName() string {
	return "wallet_tokens"
}
