package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"soltracker/internal/models"
)

// TokenStore is the slice of persistence the token endpoints use.
type TokenStore interface {
	GetToken(address string) (*models.Token, error)
	GetTokens(limit, offset int) ([]models.Token, error)
	GetTokensByMints(mints []string) ([]models.Token, error)
	AddSkipToken(address, reason string) error
	RemoveSkipToken(address string) error
	ListSkipTokens() ([]models.SkipToken, error)
}

// SkipCacheInvalidator lets the API push skip-list changes into the
// worker-side cache without waiting for the TTL.
type SkipCacheInvalidator interface {
	InvalidateSkipCache()
}

type TokenHandler struct {
	store TokenStore
	cache SkipCacheInvalidator
}

func NewTokenHandler(store TokenStore, cache SkipCacheInvalidator) *TokenHandler {
	return &TokenHandler{store: store, cache: cache}
}

// ListTokens returns enriched tokens, newest first. A comma-separated
// mints parameter narrows the result to those addresses.
func (h *TokenHandler) ListTokens(c *gin.Context) {
	if mints := c.Query("mints"); mints != "" {
		tokens, err := h.store.GetTokensByMints(strings.Split(mints, ","))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, tokens)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	tokens, err := h.store.GetTokens(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// GetToken returns one enriched token by mint address.
func (h *TokenHandler) GetToken(c *gin.Context) {
	token, err := h.store.GetToken(c.Param("address"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if token == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
		return
	}
	c.JSON(http.StatusOK, token)
}

type skipTokenRequest struct {
	Address string `json:"address" binding:"required"`
	Reason  string `json:"reason"`
}

// AddSkipToken excludes a mint from enrichment and aggregation.
func (h *TokenHandler) AddSkipToken(c *gin.Context) {
	var req skipTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.AddSkipToken(req.Address, req.Reason); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.cache != nil {
		h.cache.InvalidateSkipCache()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RemoveSkipToken re-enables a mint for enrichment and aggregation.
func (h *TokenHandler) RemoveSkipToken(c *gin.Context) {
	if err := h.store.RemoveSkipToken(c.Param("address")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.cache != nil {
		h.cache.InvalidateSkipCache()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListSkipTokens returns the excluded mints.
func (h *TokenHandler) ListSkipTokens(c *gin.Context) {
	tokens, err := h.store.ListSkipTokens()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tokens)
}
