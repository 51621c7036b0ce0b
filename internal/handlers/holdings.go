package handlers

import (
	"context"
	"net/http"
	"time"

	solanaGo "github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"soltracker/pkg/solana"
)

// HoldingsSource reads live balances for a wallet.
type HoldingsSource interface {
	GetHoldings(ctx context.Context, wallet string) (*solana.WalletHoldings, error)
}

type HoldingsHandler struct {
	source HoldingsSource
}

func NewHoldingsHandler(source HoldingsSource) *HoldingsHandler {
	return &HoldingsHandler{source: source}
}

// GetWalletHoldings returns the wallet's current SOL and token balances.
func (h *HoldingsHandler) GetWalletHoldings(c *gin.Context) {
	wallet := c.Param("wallet")
	if _, err := solanaGo.PublicKeyFromBase58(wallet); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address: " + wallet})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	holdings, err := h.source.GetHoldings(ctx, wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, holdings)
}
