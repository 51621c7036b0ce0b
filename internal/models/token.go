package models

import "time"

// Token holds enriched metadata for a mint. Enrichment sources return
// partial data, so every enriched field is nullable and merges write only
// the fields the source actually produced.
type Token struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Address string `gorm:"size:64;uniqueIndex;not null" json:"address"`

	Name     *string `gorm:"size:128" json:"name"`
	Symbol   *string `gorm:"size:64" json:"symbol"`
	Decimals *int    `json:"decimals"`
	LogoURI  *string `gorm:"type:text" json:"logo_uri"`

	Creator       *string    `gorm:"size:64" json:"creator"`
	CreatedTx     *string    `gorm:"size:128" json:"created_tx"`
	CreatedTime   *time.Time `json:"created_time"`
	FirstSwapTx   *string    `gorm:"size:128" json:"first_swap_tx"`
	FirstSwapTime *time.Time `json:"first_swap_time"`

	DevBuyAmount      *float64 `json:"dev_buy_amount"`
	DevBuyUsedToken   *string  `gorm:"size:64" json:"dev_buy_used_token"`
	DevBuyTokenAmount *float64 `json:"dev_buy_token_amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Token) TableName() string {
	return "tokens"
}

// SkipToken marks a mint excluded from enrichment and wallet aggregation,
// e.g. wrapped SOL and major stables.
type SkipToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Address   string    `gorm:"size:64;uniqueIndex;not null" json:"address"`
	Reason    string    `gorm:"size:128;default:''" json:"reason"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SkipToken) TableName() string {
	return "skip_tokens"
}
