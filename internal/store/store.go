package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"soltracker/internal/models"
)

// Store is the persistence gateway. All writes are idempotent so the
// at-least-once stream can replay transactions safely.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SaveTransaction inserts a normalized swap. Replays of an already stored
// transaction id are silently ignored.
func (s *Store) SaveTransaction(tx *models.Transaction) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		DoNothing: true,
	}).Create(tx).Error
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", tx.TransactionID, err)
	}
	return nil
}

// TransactionFilter bounds a transaction listing.
type TransactionFilter struct {
	Wallet    string
	Platform  string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

func (s *Store) transactionQuery(filter TransactionFilter) *gorm.DB {
	query := s.db.Model(&models.Transaction{})
	if filter.Wallet != "" {
		query = query.Where("fee_payer = ?", filter.Wallet)
	}
	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}
	return query
}

// GetTransactions lists stored swaps, newest first.
func (s *Store) GetTransactions(filter TransactionFilter) ([]models.Transaction, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var txs []models.Transaction
	err := s.transactionQuery(filter).
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return txs, nil
}

func (s *Store) CountTransactions(filter TransactionFilter) (int64, error) {
	var count int64
	if err := s.transactionQuery(filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// SaveToken upserts enriched metadata for a mint. Sources return partial
// data, so each column keeps its stored value when the incoming one is null.
func (s *Store) SaveToken(token *models.Token) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":                 gorm.Expr("COALESCE(EXCLUDED.name, tokens.name)"),
			"symbol":               gorm.Expr("COALESCE(EXCLUDED.symbol, tokens.symbol)"),
			"decimals":             gorm.Expr("COALESCE(EXCLUDED.decimals, tokens.decimals)"),
			"logo_uri":             gorm.Expr("COALESCE(EXCLUDED.logo_uri, tokens.logo_uri)"),
			"creator":              gorm.Expr("COALESCE(EXCLUDED.creator, tokens.creator)"),
			"created_tx":           gorm.Expr("COALESCE(EXCLUDED.created_tx, tokens.created_tx)"),
			"created_time":         gorm.Expr("COALESCE(EXCLUDED.created_time, tokens.created_time)"),
			"first_swap_tx":        gorm.Expr("COALESCE(EXCLUDED.first_swap_tx, tokens.first_swap_tx)"),
			"first_swap_time":      gorm.Expr("COALESCE(EXCLUDED.first_swap_time, tokens.first_swap_time)"),
			"dev_buy_amount":       gorm.Expr("COALESCE(EXCLUDED.dev_buy_amount, tokens.dev_buy_amount)"),
			"dev_buy_used_token":   gorm.Expr("COALESCE(EXCLUDED.dev_buy_used_token, tokens.dev_buy_used_token)"),
			"dev_buy_token_amount": gorm.Expr("COALESCE(EXCLUDED.dev_buy_token_amount, tokens.dev_buy_token_amount)"),
			"updated_at":           gorm.Expr("NOW()"),
		}),
	}).Create(token).Error
	if err != nil {
		return fmt.Errorf("failed to save token %s: %w", token.Address, err)
	}
	return nil
}

func (s *Store) GetToken(address string) (*models.Token, error) {
	var token models.Token
	err := s.db.Where("address = ?", address).First(&token).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query token %s: %w", address, err)
	}
	return &token, nil
}

func (s *Store) GetTokens(limit, offset int) ([]models.Token, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var tokens []models.Token
	err := s.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	return tokens, nil
}

// GetTokensByMints returns the stored rows for a set of mints. Unknown
// mints are simply absent from the result.
func (s *Store) GetTokensByMints(mints []string) ([]models.Token, error) {
	if len(mints) == 0 {
		return nil, nil
	}
	var tokens []models.Token
	err := s.db.Where("address IN ?", mints).Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens by mints: %w", err)
	}
	return tokens, nil
}

// TokenExists reports whether a mint already has a metadata row. Used to
// skip re-enqueueing known tokens.
func (s *Store) TokenExists(address string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Token{}).Where("address = ?", address).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check token %s: %w", address, err)
	}
	return count > 0, nil
}

// SaveWalletTokenPair records a swap against the wallet's first-buy and
// first-sell slots. The first write per direction wins; replays and later
// swaps never overwrite an existing value.
func (s *Store) SaveWalletTokenPair(pair *models.WalletToken) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wallet"}, {Name: "token"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"first_buy_tx":      gorm.Expr("COALESCE(wallet_tokens.first_buy_tx, EXCLUDED.first_buy_tx)"),
			"first_buy_at":      gorm.Expr("COALESCE(wallet_tokens.first_buy_at, EXCLUDED.first_buy_at)"),
			"first_buy_amount":  gorm.Expr("COALESCE(wallet_tokens.first_buy_amount, EXCLUDED.first_buy_amount)"),
			"first_sell_tx":     gorm.Expr("COALESCE(wallet_tokens.first_sell_tx, EXCLUDED.first_sell_tx)"),
			"first_sell_at":     gorm.Expr("COALESCE(wallet_tokens.first_sell_at, EXCLUDED.first_sell_at)"),
			"first_sell_amount": gorm.Expr("COALESCE(wallet_tokens.first_sell_amount, EXCLUDED.first_sell_amount)"),
			"updated_at":        gorm.Expr("NOW()"),
		}),
	}).Create(pair).Error
	if err != nil {
		return fmt.Errorf("failed to save wallet token pair %s/%s: %w", pair.Wallet, pair.Token, err)
	}
	return nil
}

func (s *Store) GetWalletTokens(wallet string) ([]models.WalletToken, error) {
	var pairs []models.WalletToken
	err := s.db.Where("wallet = ?", wallet).Order("updated_at DESC").Find(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet tokens for %s: %w", wallet, err)
	}
	return pairs, nil
}

func (s *Store) GetTokenWallets(token string) ([]models.WalletToken, error) {
	var pairs []models.WalletToken
	err := s.db.Where("token = ?", token).Order("first_buy_at ASC NULLS LAST").Find(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query token wallets for %s: %w", token, err)
	}
	return pairs, nil
}

func (s *Store) GetWalletTokenPairs(limit, offset int) ([]models.WalletToken, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var pairs []models.WalletToken
	err := s.db.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet token pairs: %w", err)
	}
	return pairs, nil
}

// AddSkipToken excludes a mint from enrichment and aggregation.
func (s *Store) AddSkipToken(address, reason string) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoNothing: true,
	}).Create(&models.SkipToken{Address: address, Reason: reason}).Error
	if err != nil {
		return fmt.Errorf("failed to add skip token %s: %w", address, err)
	}
	return nil
}

func (s *Store) RemoveSkipToken(address string) error {
	err := s.db.Where("address = ?", address).Delete(&models.SkipToken{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove skip token %s: %w", address, err)
	}
	return nil
}

func (s *Store) ListSkipTokens() ([]models.SkipToken, error) {
	var tokens []models.SkipToken
	if err := s.db.Find(&tokens).Error; err != nil {
		return nil, fmt.Errorf("failed to list skip tokens: %w", err)
	}
	return tokens, nil
}
