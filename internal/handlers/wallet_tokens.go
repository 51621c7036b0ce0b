package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"soltracker/internal/models"
)

// WalletTokenStore reads the first-buy/first-sell aggregate.
type WalletTokenStore interface {
	GetWalletTokens(wallet string) ([]models.WalletToken, error)
	GetTokenWallets(token string) ([]models.WalletToken, error)
	GetWalletTokenPairs(limit, offset int) ([]models.WalletToken, error)
}

type WalletTokenHandler struct {
	store WalletTokenStore
}

func NewWalletTokenHandler(store WalletTokenStore) *WalletTokenHandler {
	return &WalletTokenHandler{store: store}
}

// GetWalletTokens returns every token a wallet has swapped, with its
// first-buy and first-sell records.
func (h *WalletTokenHandler) GetWalletTokens(c *gin.Context) {
	pairs, err := h.store.GetWalletTokens(c.Param("wallet"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pairs)
}

// GetTokenWallets returns every tracked wallet that swapped a token,
// earliest buyers first.
func (h *WalletTokenHandler) GetTokenWallets(c *gin.Context) {
	pairs, err := h.store.GetTokenWallets(c.Param("address"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pairs)
}

// ListWalletTokenPairs returns the aggregate across all wallets.
func (h *WalletTokenHandler) ListWalletTokenPairs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	pairs, err := h.store.GetWalletTokenPairs(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pairs)
}
