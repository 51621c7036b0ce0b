package enrich

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"soltracker/internal/models"
	"soltracker/pkg/helius"
	"soltracker/pkg/shyft"
	"soltracker/pkg/solscan"
	"soltracker/pkg/swap"
)

const (
	defaultSkipCacheTTL = 5 * time.Minute
	defaultHistoryLimit = 20
	defaultHistoryRetry = 10 * time.Second
)

// TokenStore is the slice of persistence the enrichment service needs.
type TokenStore interface {
	SaveToken(token *models.Token) error
	TokenExists(address string) (bool, error)
	ListSkipTokens() ([]models.SkipToken, error)
}

// MetadataSource resolves display metadata for a mint.
type MetadataSource interface {
	GetTokenInfo(mint string) (*shyft.TokenInfo, error)
}

// ProvenanceSource resolves creation provenance for a mint.
type ProvenanceSource interface {
	GetTokenMeta(mint string) (*solscan.TokenMeta, error)
}

// HistorySource resolves a mint's earliest transaction history.
type HistorySource interface {
	GetSignaturesForAddress(address string, limit int) ([]helius.SignatureInfo, error)
	GetEnhancedTransactions(signatures []string) ([]helius.EnhancedTransaction, error)
}

// AssetSource resolves display metadata through the RPC asset index, tried
// when the primary metadata source fails.
type AssetSource interface {
	GetAsset(mint string) (*helius.Asset, error)
}

// TokenService enriches mints with metadata and creation provenance, and
// owns the skip-token cache consulted on the hot path.
type TokenService struct {
	store      TokenStore
	metadata   MetadataSource
	provenance ProvenanceSource
	history    HistorySource
	assets     AssetSource

	historyRetryDelay time.Duration

	skipMu       sync.Mutex
	skipSet      map[string]struct{}
	skipLoadedAt time.Time
	skipCacheTTL time.Duration
	skipLoadedOK bool
}

func NewTokenService(store TokenStore, metadata MetadataSource, provenance ProvenanceSource, history HistorySource) *TokenService {
	s := &TokenService{
		store:             store,
		metadata:          metadata,
		provenance:        provenance,
		history:           history,
		historyRetryDelay: defaultHistoryRetry,
		skipSet:           make(map[string]struct{}),
		skipCacheTTL:      defaultSkipCacheTTL,
	}
	// the history client doubles as an asset source when it supports it
	if assets, ok := history.(AssetSource); ok {
		s.assets = assets
	}
	return s
}

// ShouldSkip reports whether a mint is excluded from enrichment and
// aggregation. Wrapped SOL is always excluded; the rest comes from the
// skip-token table through a cache refreshed on expiry. A failed refresh
// keeps the previous cache rather than blocking the stream.
func (s *TokenService) ShouldSkip(address string) bool {
	if address == "" || address == swap.WrappedSolMint {
		return true
	}

	s.skipMu.Lock()
	defer s.skipMu.Unlock()

	if !s.skipLoadedOK || time.Since(s.skipLoadedAt) > s.skipCacheTTL {
		s.refreshSkipCacheLocked()
	}

	_, skip := s.skipSet[address]
	return skip
}

func (s *TokenService) refreshSkipCacheLocked() {
	// mark refreshed regardless of outcome so a broken database does not
	// turn every swap into a refresh attempt
	s.skipLoadedAt = time.Now()
	s.skipLoadedOK = true

	tokens, err := s.store.ListSkipTokens()
	if err != nil {
		log.Errorf("failed to refresh skip token cache: %v", err)
		return
	}

	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token.Address] = struct{}{}
	}
	s.skipSet = set
}

// InvalidateSkipCache forces the next ShouldSkip call to reload, used when
// the skip list changes through the API.
func (s *TokenService) InvalidateSkipCache() {
	s.skipMu.Lock()
	s.skipLoadedOK = false
	s.skipMu.Unlock()
}

// CreatorInfo is what the transaction history reveals about a mint.
type CreatorInfo struct {
	Creator       string
	CreatedTx     string
	CreatedTime   *time.Time
	FirstSwapTx   string
	FirstSwapTime *time.Time

	// dev buy: what the first swap involving the mint moved. UsedToken is
	// the mint spent (usually wrapped SOL), Amount its size, TokenAmount
	// the amount of the new mint received.
	DevBuyAmount      float64
	DevBuyUsedToken   string
	DevBuyTokenAmount float64
}

// GetTokenCreatorInfo derives creation provenance and the dev buy from the
// mint's earliest signatures. New mints may not be indexed yet, so an empty
// or failed lookup gets one retry after a pause.
func (s *TokenService) GetTokenCreatorInfo(mint string) (*CreatorInfo, error) {
	sigs, err := s.history.GetSignaturesForAddress(mint, defaultHistoryLimit)
	if err != nil || len(sigs) == 0 {
		time.Sleep(s.historyRetryDelay)
		sigs, err = s.history.GetSignaturesForAddress(mint, defaultHistoryLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch signatures for %s: %w", mint, err)
		}
	}
	if len(sigs) == 0 {
		return nil, fmt.Errorf("no transaction history for %s", mint)
	}

	// newest first: the oldest entry is the creation transaction
	oldest := sigs[len(sigs)-1]
	info := &CreatorInfo{CreatedTx: oldest.Signature}
	if oldest.BlockTime != nil {
		t := time.Unix(*oldest.BlockTime, 0).UTC()
		info.CreatedTime = &t
	}

	signatures := make([]string, 0, len(sigs))
	for _, sig := range sigs {
		if sig.Err == nil {
			signatures = append(signatures, sig.Signature)
		}
	}

	enhanced, err := s.history.GetEnhancedTransactions(signatures)
	if err != nil {
		log.Warnf("failed to fetch enhanced transactions for %s: %v", mint, err)
		return info, nil
	}

	var firstSwap *helius.EnhancedTransaction
	for i := range enhanced {
		tx := &enhanced[i]
		if tx.Signature == oldest.Signature {
			info.Creator = tx.FeePayer
		}
		if tx.Type == "SWAP" && (firstSwap == nil || tx.Timestamp < firstSwap.Timestamp) {
			firstSwap = tx
		}
	}
	if firstSwap != nil {
		info.FirstSwapTx = firstSwap.Signature
		t := time.Unix(firstSwap.Timestamp, 0).UTC()
		info.FirstSwapTime = &t
		for _, transfer := range firstSwap.TokenTransfers {
			if transfer.Mint == mint {
				info.DevBuyTokenAmount = transfer.TokenAmount
			} else if info.DevBuyUsedToken == "" {
				info.DevBuyUsedToken = transfer.Mint
				info.DevBuyAmount = transfer.TokenAmount
			}
		}
	}

	return info, nil
}

// EnrichToken resolves metadata and provenance for a mint and upserts the
// merged result. Partial success persists what was found; the token is
// discarded only when every source fails.
func (s *TokenService) EnrichToken(address string) error {
	token := &models.Token{Address: address}
	var metadataOK, provenanceOK bool

	if info, err := s.metadata.GetTokenInfo(address); err == nil {
		metadataOK = true
		setString(&token.Name, info.Name)
		setString(&token.Symbol, info.Symbol)
		setString(&token.LogoURI, info.Image)
		decimals := info.Decimals
		token.Decimals = &decimals
	} else {
		log.Warnf("metadata lookup failed for %s: %v", address, err)
		if s.assets != nil {
			if asset, err := s.assets.GetAsset(address); err == nil {
				metadataOK = true
				setString(&token.Name, asset.Name)
				setString(&token.Symbol, asset.Symbol)
				setString(&token.LogoURI, asset.Image)
				decimals := asset.Decimals
				token.Decimals = &decimals
			} else {
				log.Warnf("asset lookup failed for %s: %v", address, err)
			}
		}
	}

	if info, err := s.GetTokenCreatorInfo(address); err == nil {
		provenanceOK = true
		setString(&token.Creator, info.Creator)
		setString(&token.CreatedTx, info.CreatedTx)
		token.CreatedTime = info.CreatedTime
		setString(&token.FirstSwapTx, info.FirstSwapTx)
		token.FirstSwapTime = info.FirstSwapTime
		setString(&token.DevBuyUsedToken, info.DevBuyUsedToken)
		setFloat(&token.DevBuyAmount, info.DevBuyAmount)
		setFloat(&token.DevBuyTokenAmount, info.DevBuyTokenAmount)
	} else if meta, err := s.provenance.GetTokenMeta(address); err == nil {
		provenanceOK = true
		setString(&token.Creator, meta.Creator)
		setString(&token.CreatedTx, meta.CreateTx)
		if meta.CreatedTime > 0 {
			t := time.Unix(meta.CreatedTime, 0).UTC()
			token.CreatedTime = &t
		}
		if !metadataOK {
			setString(&token.Name, meta.Name)
			setString(&token.Symbol, meta.Symbol)
			setString(&token.LogoURI, meta.Icon)
			decimals := meta.Decimals
			token.Decimals = &decimals
		}
	} else {
		log.Warnf("provenance lookup failed for %s: %v", address, err)
	}

	if !metadataOK && !provenanceOK {
		return fmt.Errorf("all enrichment sources failed for %s", address)
	}

	if err := s.store.SaveToken(token); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"token":      address,
		"metadata":   metadataOK,
		"provenance": provenanceOK,
	}).Info("token enriched")
	return nil
}

func setString(dst **string, value string) {
	if value != "" {
		v := value
		*dst = &v
	}
}

func setFloat(dst **float64, value float64) {
	if value != 0 {
		v := value
		*dst = &v
	}
}
