package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"soltracker/internal/models"
	"soltracker/internal/store"
)

// TransactionStore is the slice of persistence the transaction endpoints
// read from.
type TransactionStore interface {
	GetTransactions(filter store.TransactionFilter) ([]models.Transaction, error)
	CountTransactions(filter store.TransactionFilter) (int64, error)
}

type TransactionHandler struct {
	store TransactionStore
}

func NewTransactionHandler(store TransactionStore) *TransactionHandler {
	return &TransactionHandler{store: store}
}

func transactionFilterFromQuery(c *gin.Context) store.TransactionFilter {
	filter := store.TransactionFilter{
		Wallet:   c.Query("wallet"),
		Platform: c.Query("platform"),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = offset
	}
	if ts, err := strconv.ParseInt(c.Query("start_time"), 10, 64); err == nil {
		t := time.Unix(ts, 0)
		filter.StartTime = &t
	}
	if ts, err := strconv.ParseInt(c.Query("end_time"), 10, 64); err == nil {
		t := time.Unix(ts, 0)
		filter.EndTime = &t
	}
	return filter
}

// ListTransactions returns stored swaps, newest first, filtered by the
// wallet, platform and time range query parameters.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	txs, err := h.store.GetTransactions(transactionFilterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, txs)
}

// CountTransactions returns the number of stored swaps matching the filter.
func (h *TransactionHandler) CountTransactions(c *gin.Context) {
	count, err := h.store.CountTransactions(transactionFilterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
