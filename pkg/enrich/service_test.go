package enrich

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soltracker/internal/models"
	"soltracker/pkg/helius"
	"soltracker/pkg/shyft"
	"soltracker/pkg/solscan"
	"soltracker/pkg/swap"
)

type fakeTokenStore struct {
	saved      []*models.Token
	saveErr    error
	exists     map[string]bool
	skipTokens []models.SkipToken
	skipErr    error
	skipCalls  int
}

func (f *fakeTokenStore) SaveToken(token *models.Token) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, token)
	return nil
}

func (f *fakeTokenStore) TokenExists(address string) (bool, error) {
	return f.exists[address], nil
}

func (f *fakeTokenStore) ListSkipTokens() ([]models.SkipToken, error) {
	f.skipCalls++
	if f.skipErr != nil {
		return nil, f.skipErr
	}
	return f.skipTokens, nil
}

type fakeMetadata struct {
	info *shyft.TokenInfo
	err  error
}

func (f *fakeMetadata) GetTokenInfo(mint string) (*shyft.TokenInfo, error) {
	return f.info, f.err
}

type fakeProvenance struct {
	meta *solscan.TokenMeta
	err  error
}

func (f *fakeProvenance) GetTokenMeta(mint string) (*solscan.TokenMeta, error) {
	return f.meta, f.err
}

type fakeHistory struct {
	sigBatches [][]helius.SignatureInfo
	sigErrs    []error
	sigCalls   int
	enhanced   []helius.EnhancedTransaction
	enhanceErr error
}

func (f *fakeHistory) GetSignaturesForAddress(address string, limit int) ([]helius.SignatureInfo, error) {
	i := f.sigCalls
	f.sigCalls++
	if i < len(f.sigErrs) && f.sigErrs[i] != nil {
		return nil, f.sigErrs[i]
	}
	if i < len(f.sigBatches) {
		return f.sigBatches[i], nil
	}
	return nil, nil
}

func (f *fakeHistory) GetEnhancedTransactions(signatures []string) ([]helius.EnhancedTransaction, error) {
	return f.enhanced, f.enhanceErr
}

type fakeHistoryWithAssets struct {
	fakeHistory
	asset    *helius.Asset
	assetErr error
}

func (f *fakeHistoryWithAssets) GetAsset(mint string) (*helius.Asset, error) {
	return f.asset, f.assetErr
}

func newTestService(store *fakeTokenStore, metadata *fakeMetadata, provenance *fakeProvenance, history HistorySource) *TokenService {
	s := NewTokenService(store, metadata, provenance, history)
	s.historyRetryDelay = 0
	return s
}

func blockTime(unix int64) *int64 { return &unix }

func TestShouldSkipAlwaysExcludesWrappedSol(t *testing.T) {
	s := newTestService(&fakeTokenStore{}, &fakeMetadata{}, &fakeProvenance{}, &fakeHistory{})
	assert.True(t, s.ShouldSkip(swap.WrappedSolMint))
	assert.True(t, s.ShouldSkip(""))
}

func TestShouldSkipUsesCachedSkipList(t *testing.T) {
	store := &fakeTokenStore{skipTokens: []models.SkipToken{{Address: "StableMint"}}}
	s := newTestService(store, &fakeMetadata{}, &fakeProvenance{}, &fakeHistory{})

	assert.True(t, s.ShouldSkip("StableMint"))
	assert.False(t, s.ShouldSkip("OtherMint"))
	assert.False(t, s.ShouldSkip("OtherMint"))
	assert.Equal(t, 1, store.skipCalls, "repeated lookups inside the TTL hit the cache")
}

func TestShouldSkipRefreshesAfterTTL(t *testing.T) {
	store := &fakeTokenStore{}
	s := newTestService(store, &fakeMetadata{}, &fakeProvenance{}, &fakeHistory{})
	s.skipCacheTTL = time.Millisecond

	assert.False(t, s.ShouldSkip("SomeMint"))
	store.skipTokens = []models.SkipToken{{Address: "SomeMint"}}
	time.Sleep(5 * time.Millisecond)
	assert.True(t, s.ShouldSkip("SomeMint"))
	assert.Equal(t, 2, store.skipCalls)
}

func TestShouldSkipFailedRefreshStillCountsAsLoaded(t *testing.T) {
	store := &fakeTokenStore{skipErr: assert.AnError}
	s := newTestService(store, &fakeMetadata{}, &fakeProvenance{}, &fakeHistory{})

	assert.False(t, s.ShouldSkip("SomeMint"))
	assert.False(t, s.ShouldSkip("SomeMint"))
	assert.Equal(t, 1, store.skipCalls, "a failed refresh must not retry on every call")

	s.InvalidateSkipCache()
	s.ShouldSkip("SomeMint")
	assert.Equal(t, 2, store.skipCalls)
}

func TestGetTokenCreatorInfoRetriesOnceOnEmptyHistory(t *testing.T) {
	history := &fakeHistory{
		sigBatches: [][]helius.SignatureInfo{
			nil,
			{
				{Signature: "sig-new", Slot: 120, BlockTime: blockTime(1700000500)},
				{Signature: "sig-create", Slot: 100, BlockTime: blockTime(1700000000)},
			},
		},
		enhanced: []helius.EnhancedTransaction{
			{Signature: "sig-create", FeePayer: "CreatorWallet", Type: "CREATE", Timestamp: 1700000000},
			{Signature: "sig-new", FeePayer: "TraderWallet", Type: "SWAP", Timestamp: 1700000500},
		},
	}
	s := newTestService(&fakeTokenStore{}, &fakeMetadata{}, &fakeProvenance{}, history)

	info, err := s.GetTokenCreatorInfo("SomeMint")
	require.NoError(t, err)
	assert.Equal(t, 2, history.sigCalls)
	assert.Equal(t, "sig-create", info.CreatedTx)
	assert.Equal(t, "CreatorWallet", info.Creator)
	require.NotNil(t, info.CreatedTime)
	assert.Equal(t, int64(1700000000), info.CreatedTime.Unix())
	assert.Equal(t, "sig-new", info.FirstSwapTx)
}

func TestGetTokenCreatorInfoCapturesDevBuy(t *testing.T) {
	history := &fakeHistory{
		sigBatches: [][]helius.SignatureInfo{
			{
				{Signature: "sig-swap", Slot: 120, BlockTime: blockTime(1700000500)},
				{Signature: "sig-create", Slot: 100, BlockTime: blockTime(1700000000)},
			},
		},
		enhanced: []helius.EnhancedTransaction{
			{Signature: "sig-create", FeePayer: "CreatorWallet", Type: "CREATE", Timestamp: 1700000000},
			{
				Signature: "sig-swap", FeePayer: "CreatorWallet", Type: "SWAP", Timestamp: 1700000500,
				TokenTransfers: []helius.TokenTransfer{
					{Mint: swap.WrappedSolMint, TokenAmount: 1.5},
					{Mint: "SomeMint", TokenAmount: 420000},
				},
			},
		},
	}
	s := newTestService(&fakeTokenStore{}, &fakeMetadata{}, &fakeProvenance{}, history)

	info, err := s.GetTokenCreatorInfo("SomeMint")
	require.NoError(t, err)
	assert.Equal(t, "sig-swap", info.FirstSwapTx)
	assert.Equal(t, swap.WrappedSolMint, info.DevBuyUsedToken)
	assert.Equal(t, 1.5, info.DevBuyAmount)
	assert.Equal(t, float64(420000), info.DevBuyTokenAmount)
}

func TestGetTokenCreatorInfoFailsAfterRetry(t *testing.T) {
	history := &fakeHistory{sigErrs: []error{assert.AnError, assert.AnError}}
	s := newTestService(&fakeTokenStore{}, &fakeMetadata{}, &fakeProvenance{}, history)

	_, err := s.GetTokenCreatorInfo("SomeMint")
	assert.Error(t, err)
	assert.Equal(t, 2, history.sigCalls)
}

func TestEnrichTokenMergesMetadataAndProvenance(t *testing.T) {
	store := &fakeTokenStore{}
	metadata := &fakeMetadata{info: &shyft.TokenInfo{
		Name: "Bonk", Symbol: "BONK", Image: "https://img/bonk.png", Decimals: 5,
	}}
	history := &fakeHistory{
		sigBatches: [][]helius.SignatureInfo{
			{{Signature: "sig-create", BlockTime: blockTime(1700000000)}},
		},
		enhanced: []helius.EnhancedTransaction{
			{Signature: "sig-create", FeePayer: "CreatorWallet", Type: "CREATE", Timestamp: 1700000000},
			{
				Signature: "sig-swap", FeePayer: "CreatorWallet", Type: "SWAP", Timestamp: 1700000600,
				TokenTransfers: []helius.TokenTransfer{
					{Mint: swap.WrappedSolMint, TokenAmount: 2},
					{Mint: "SomeMint", TokenAmount: 1000},
				},
			},
		},
	}
	s := newTestService(store, metadata, &fakeProvenance{err: assert.AnError}, history)

	require.NoError(t, s.EnrichToken("SomeMint"))
	require.Len(t, store.saved, 1)

	token := store.saved[0]
	assert.Equal(t, "SomeMint", token.Address)
	require.NotNil(t, token.Name)
	assert.Equal(t, "Bonk", *token.Name)
	require.NotNil(t, token.Decimals)
	assert.Equal(t, 5, *token.Decimals)
	require.NotNil(t, token.Creator)
	assert.Equal(t, "CreatorWallet", *token.Creator)
	require.NotNil(t, token.CreatedTx)
	assert.Equal(t, "sig-create", *token.CreatedTx)
	require.NotNil(t, token.DevBuyUsedToken)
	assert.Equal(t, swap.WrappedSolMint, *token.DevBuyUsedToken)
	require.NotNil(t, token.DevBuyAmount)
	assert.Equal(t, float64(2), *token.DevBuyAmount)
	require.NotNil(t, token.DevBuyTokenAmount)
	assert.Equal(t, float64(1000), *token.DevBuyTokenAmount)
}

func TestEnrichTokenFallsBackToSolscanProvenance(t *testing.T) {
	store := &fakeTokenStore{}
	provenance := &fakeProvenance{meta: &solscan.TokenMeta{
		Name:        "Bonk",
		Symbol:      "BONK",
		Decimals:    5,
		Creator:     "CreatorWallet",
		CreateTx:    "sig-create",
		CreatedTime: 1700000000,
	}}
	history := &fakeHistory{sigErrs: []error{assert.AnError, assert.AnError}}
	s := newTestService(store, &fakeMetadata{err: assert.AnError}, provenance, history)

	require.NoError(t, s.EnrichToken("SomeMint"))
	require.Len(t, store.saved, 1)

	token := store.saved[0]
	require.NotNil(t, token.Creator)
	assert.Equal(t, "CreatorWallet", *token.Creator)
	// metadata failed, so the solscan fields fill the display columns too
	require.NotNil(t, token.Symbol)
	assert.Equal(t, "BONK", *token.Symbol)
}

func TestEnrichTokenFallsBackToAssetMetadata(t *testing.T) {
	store := &fakeTokenStore{}
	history := &fakeHistoryWithAssets{
		fakeHistory: fakeHistory{
			sigBatches: [][]helius.SignatureInfo{
				{{Signature: "sig-create", BlockTime: blockTime(1700000000)}},
			},
			enhanced: []helius.EnhancedTransaction{
				{Signature: "sig-create", FeePayer: "CreatorWallet", Type: "CREATE", Timestamp: 1700000000},
			},
		},
		asset: &helius.Asset{Name: "Bonk", Symbol: "BONK", Image: "https://img/bonk.png", Decimals: 5},
	}
	s := newTestService(store, &fakeMetadata{err: assert.AnError}, &fakeProvenance{}, history)

	require.NoError(t, s.EnrichToken("SomeMint"))
	require.Len(t, store.saved, 1)

	token := store.saved[0]
	require.NotNil(t, token.Symbol)
	assert.Equal(t, "BONK", *token.Symbol)
	require.NotNil(t, token.Decimals)
	assert.Equal(t, 5, *token.Decimals)
	require.NotNil(t, token.Creator)
	assert.Equal(t, "CreatorWallet", *token.Creator)
}

func TestEnrichTokenPartialMetadataOnly(t *testing.T) {
	store := &fakeTokenStore{}
	metadata := &fakeMetadata{info: &shyft.TokenInfo{Name: "Bonk", Symbol: "BONK", Decimals: 5}}
	history := &fakeHistory{sigErrs: []error{assert.AnError, assert.AnError}}
	s := newTestService(store, metadata, &fakeProvenance{err: assert.AnError}, history)

	require.NoError(t, s.EnrichToken("SomeMint"))
	require.Len(t, store.saved, 1)
	assert.Nil(t, store.saved[0].Creator)
}

func TestEnrichTokenAllSourcesFailedDiscards(t *testing.T) {
	store := &fakeTokenStore{}
	history := &fakeHistory{sigErrs: []error{assert.AnError, assert.AnError}}
	s := newTestService(store, &fakeMetadata{err: assert.AnError}, &fakeProvenance{err: assert.AnError}, history)

	assert.Error(t, s.EnrichToken("SomeMint"))
	assert.Empty(t, store.saved)
}
