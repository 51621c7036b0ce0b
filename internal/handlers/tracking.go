package handlers

import (
	"net/http"
	"sync"

	solanaGo "github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"soltracker/internal/control"
)

// ControlPublisher sends commands to the indexing worker.
type ControlPublisher interface {
	Publish(queueName string, message interface{}) error
}

// TrackingHandler drives the worker's subscription through the control
// queue and remembers the last commanded state.
type TrackingHandler struct {
	publisher ControlPublisher

	mu        sync.Mutex
	addresses []string
	started   bool
}

func NewTrackingHandler(publisher ControlPublisher) *TrackingHandler {
	return &TrackingHandler{publisher: publisher}
}

type addressesRequest struct {
	Addresses []string `json:"addresses" binding:"required"`
}

func validateAddresses(addresses []string) (string, bool) {
	for _, address := range addresses {
		if _, err := solanaGo.PublicKeyFromBase58(address); err != nil {
			return address, false
		}
	}
	return "", true
}

// StartTracking commands the worker to open the subscription. An address
// list in the body replaces the tracked set first.
func (h *TrackingHandler) StartTracking(c *gin.Context) {
	var req addressesRequest
	if err := c.ShouldBindJSON(&req); err == nil && len(req.Addresses) > 0 {
		if bad, ok := validateAddresses(req.Addresses); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address: " + bad})
			return
		}
		h.mu.Lock()
		h.addresses = req.Addresses
		h.mu.Unlock()
	}

	h.mu.Lock()
	addresses := append([]string(nil), h.addresses...)
	h.mu.Unlock()
	if len(addresses) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no addresses to track"})
		return
	}

	msg := control.Message{Command: control.CmdStartTracking, Addresses: addresses}
	if err := h.publisher.Publish(control.Queue, msg); err != nil {
		log.Errorf("failed to publish start command: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	h.started = true
	h.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": "started", "addresses": len(addresses)})
}

// StopTracking commands the worker to close the subscription.
func (h *TrackingHandler) StopTracking(c *gin.Context) {
	msg := control.Message{Command: control.CmdStopTracking}
	if err := h.publisher.Publish(control.Queue, msg); err != nil {
		log.Errorf("failed to publish stop command: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	h.started = false
	h.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// SetAddresses replaces the tracked wallet set. A running worker applies
// the change on its next session.
func (h *TrackingHandler) SetAddresses(c *gin.Context) {
	var req addressesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if bad, ok := validateAddresses(req.Addresses); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address: " + bad})
		return
	}

	msg := control.Message{Command: control.CmdSetAddresses, Addresses: req.Addresses}
	if err := h.publisher.Publish(control.Queue, msg); err != nil {
		log.Errorf("failed to publish set_addresses command: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	h.addresses = req.Addresses
	h.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "addresses": len(req.Addresses)})
}

// GetStatus reports the last commanded state.
func (h *TrackingHandler) GetStatus(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"started":   h.started,
		"addresses": h.addresses,
	})
}
