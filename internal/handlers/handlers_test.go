package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soltracker/internal/control"
	"soltracker/internal/models"
	"soltracker/internal/store"
)

const testWallet = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePublisher struct {
	queue    string
	messages []control.Message
	err      error
}

func (f *fakePublisher) Publish(queueName string, message interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.queue = queueName
	f.messages = append(f.messages, message.(control.Message))
	return nil
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func trackingRouter(pub *fakePublisher) *gin.Engine {
	h := NewTrackingHandler(pub)
	r := gin.New()
	r.POST("/tracking/start", h.StartTracking)
	r.POST("/tracking/stop", h.StopTracking)
	r.POST("/tracking/addresses", h.SetAddresses)
	r.GET("/tracking/status", h.GetStatus)
	return r
}

func TestStartTrackingPublishesCommand(t *testing.T) {
	pub := &fakePublisher{}
	r := trackingRouter(pub)

	w := doJSON(t, r, "POST", "/tracking/start", gin.H{"addresses": []string{testWallet}})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, control.Queue, pub.queue)
	assert.Equal(t, control.CmdStartTracking, pub.messages[0].Command)
	assert.Equal(t, []string{testWallet}, pub.messages[0].Addresses)
}

func TestStartTrackingWithoutAddresses(t *testing.T) {
	pub := &fakePublisher{}
	r := trackingRouter(pub)

	w := doJSON(t, r, "POST", "/tracking/start", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, pub.messages)
}

func TestSetAddressesRejectsInvalidAddress(t *testing.T) {
	pub := &fakePublisher{}
	r := trackingRouter(pub)

	w := doJSON(t, r, "POST", "/tracking/addresses", gin.H{"addresses": []string{"not-base58!"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, pub.messages)
}

func TestStopTrackingAndStatus(t *testing.T) {
	pub := &fakePublisher{}
	r := trackingRouter(pub)

	doJSON(t, r, "POST", "/tracking/start", gin.H{"addresses": []string{testWallet}})
	w := doJSON(t, r, "POST", "/tracking/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, control.CmdStopTracking, pub.messages[len(pub.messages)-1].Command)

	w = doJSON(t, r, "GET", "/tracking/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Started   bool     `json:"started"`
		Addresses []string `json:"addresses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.Started)
	assert.Equal(t, []string{testWallet}, status.Addresses)
}

type fakeTxStore struct {
	lastFilter store.TransactionFilter
	txs        []models.Transaction
	count      int64
}

func (f *fakeTxStore) GetTransactions(filter store.TransactionFilter) ([]models.Transaction, error) {
	f.lastFilter = filter
	return f.txs, nil
}

func (f *fakeTxStore) CountTransactions(filter store.TransactionFilter) (int64, error) {
	f.lastFilter = filter
	return f.count, nil
}

func TestListTransactionsParsesFilter(t *testing.T) {
	st := &fakeTxStore{txs: []models.Transaction{{TransactionID: "sig-1"}}}
	h := NewTransactionHandler(st)
	r := gin.New()
	r.GET("/transactions", h.ListTransactions)
	r.GET("/transactions/count", h.CountTransactions)

	w := doJSON(t, r, "GET", "/transactions?wallet="+testWallet+"&platform=pumpfun&limit=10&offset=5&start_time=1700000000", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, testWallet, st.lastFilter.Wallet)
	assert.Equal(t, "pumpfun", st.lastFilter.Platform)
	assert.Equal(t, 10, st.lastFilter.Limit)
	assert.Equal(t, 5, st.lastFilter.Offset)
	require.NotNil(t, st.lastFilter.StartTime)
	assert.Equal(t, int64(1700000000), st.lastFilter.StartTime.Unix())
	assert.Nil(t, st.lastFilter.EndTime)

	var txs []models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, "sig-1", txs[0].TransactionID)

	st.count = 42
	w = doJSON(t, r, "GET", "/transactions/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":42}`, w.Body.String())
}

type fakeTokenHandlerStore struct {
	tokens      map[string]*models.Token
	skip        []models.SkipToken
	addedSkip   []string
	removedSkip []string
}

func (f *fakeTokenHandlerStore) GetToken(address string) (*models.Token, error) {
	return f.tokens[address], nil
}

func (f *fakeTokenHandlerStore) GetTokens(limit, offset int) ([]models.Token, error) {
	var out []models.Token
	for _, token := range f.tokens {
		out = append(out, *token)
	}
	return out, nil
}

func (f *fakeTokenHandlerStore) GetTokensByMints(mints []string) ([]models.Token, error) {
	var out []models.Token
	for _, mint := range mints {
		if token, ok := f.tokens[mint]; ok {
			out = append(out, *token)
		}
	}
	return out, nil
}

func (f *fakeTokenHandlerStore) AddSkipToken(address, reason string) error {
	f.addedSkip = append(f.addedSkip, address)
	return nil
}

func (f *fakeTokenHandlerStore) RemoveSkipToken(address string) error {
	f.removedSkip = append(f.removedSkip, address)
	return nil
}

func (f *fakeTokenHandlerStore) ListSkipTokens() ([]models.SkipToken, error) {
	return f.skip, nil
}

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) InvalidateSkipCache() { f.calls++ }

func TestTokenEndpoints(t *testing.T) {
	name := "Bonk"
	st := &fakeTokenHandlerStore{tokens: map[string]*models.Token{
		"MintA": {Address: "MintA", Name: &name},
	}}
	cache := &fakeInvalidator{}
	h := NewTokenHandler(st, cache)
	r := gin.New()
	r.GET("/tokens", h.ListTokens)
	r.GET("/tokens/:address", h.GetToken)
	r.POST("/skip-tokens", h.AddSkipToken)
	r.DELETE("/skip-tokens/:address", h.RemoveSkipToken)

	w := doJSON(t, r, "GET", "/tokens/MintA", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// the mints filter returns only known addresses
	w = doJSON(t, r, "GET", "/tokens?mints=MintA,MintUnknown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tokens []models.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	require.Len(t, tokens, 1)
	assert.Equal(t, "MintA", tokens[0].Address)

	w = doJSON(t, r, "GET", "/tokens/MintUnknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, "POST", "/skip-tokens", gin.H{"address": "MintB", "reason": "stable"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"MintB"}, st.addedSkip)
	assert.Equal(t, 1, cache.calls)

	w = doJSON(t, r, "DELETE", "/skip-tokens/MintB", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"MintB"}, st.removedSkip)
	assert.Equal(t, 2, cache.calls)
}

type fakeWalletTokenStore struct {
	byWallet map[string][]models.WalletToken
	byToken  map[string][]models.WalletToken
}

func (f *fakeWalletTokenStore) GetWalletTokens(wallet string) ([]models.WalletToken, error) {
	return f.byWallet[wallet], nil
}

func (f *fakeWalletTokenStore) GetTokenWallets(token string) ([]models.WalletToken, error) {
	return f.byToken[token], nil
}

func (f *fakeWalletTokenStore) GetWalletTokenPairs(limit, offset int) ([]models.WalletToken, error) {
	return nil, nil
}

func TestWalletTokenEndpoints(t *testing.T) {
	st := &fakeWalletTokenStore{
		byWallet: map[string][]models.WalletToken{
			"WalletAAA": {{Wallet: "WalletAAA", Token: "MintA"}},
		},
		byToken: map[string][]models.WalletToken{
			"MintA": {{Wallet: "WalletAAA", Token: "MintA"}},
		},
	}
	h := NewWalletTokenHandler(st)
	r := gin.New()
	r.GET("/wallets/:wallet/tokens", h.GetWalletTokens)
	r.GET("/tokens/:address/wallets", h.GetTokenWallets)

	w := doJSON(t, r, "GET", "/wallets/WalletAAA/tokens", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pairs []models.WalletToken
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pairs))
	require.Len(t, pairs, 1)
	assert.Equal(t, "MintA", pairs[0].Token)

	w = doJSON(t, r, "GET", "/tokens/MintA/wallets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	pairs = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pairs))
	require.Len(t, pairs, 1)
	assert.Equal(t, "WalletAAA", pairs[0].Wallet)
}
