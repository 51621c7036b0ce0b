package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"soltracker/pkg/swap"
)

const (
	wsHandshakeTimeout = 10 * time.Second
	wsWriteTimeout     = 10 * time.Second
)

// WSClient opens transactionSubscribe sessions over a websocket RPC
// endpoint. One connection per subscription; the tracker owns reconnects.
type WSClient struct {
	endpoint string
	dialer   *websocket.Dialer
	header   http.Header
}

func NewWSClient(endpoint string) *WSClient {
	return &WSClient{
		endpoint: endpoint,
		dialer: &websocket.Dialer{
			HandshakeTimeout: wsHandshakeTimeout,
		},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type txSubscribeFilter struct {
	Vote           bool     `json:"vote"`
	Failed         bool     `json:"failed"`
	AccountInclude []string `json:"accountInclude"`
	FromSlot       *uint64  `json:"fromSlot,omitempty"`
}

type txSubscribeOptions struct {
	Commitment                     string `json:"commitment"`
	Encoding                       string `json:"encoding"`
	TransactionDetails             string `json:"transactionDetails"`
	ShowRewards                    bool   `json:"showRewards"`
	MaxSupportedTransactionVersion int    `json:"maxSupportedTransactionVersion"`
}

// Subscribe dials the endpoint and sends one transactionSubscribe request.
// Vote and failed transactions are excluded by the filter; anything that
// still arrives with a transaction error carries the Failed flag so the
// dispatcher drops it.
func (c *WSClient) Subscribe(ctx context.Context, req SubscribeRequest) (Subscription, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, c.header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", c.endpoint, err)
	}

	commitment := req.Commitment
	if commitment == "" {
		commitment = "confirmed"
	}

	subscribe := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "transactionSubscribe",
		Params: []interface{}{
			txSubscribeFilter{
				AccountInclude: req.Addresses,
				FromSlot:       req.FromSlot,
			},
			txSubscribeOptions{
				Commitment:                     commitment,
				Encoding:                       "jsonParsed",
				TransactionDetails:             "full",
				MaxSupportedTransactionVersion: 0,
			},
		},
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(subscribe); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send subscribe request: %w", err)
	}

	sub := &wsSubscription{conn: conn}
	if err := sub.awaitAck(); err != nil {
		conn.Close()
		return nil, err
	}

	log.WithFields(log.Fields{
		"endpoint":  c.endpoint,
		"addresses": len(req.Addresses),
		"from_slot": req.FromSlot,
	}).Info("transaction subscription established")

	return sub, nil
}

type wsSubscription struct {
	conn   *websocket.Conn
	closed atomic.Bool
}

type rpcMessage struct {
	ID     *int            `json:"id"`
	Error  *rpcError       `json:"error"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type txNotification struct {
	Result struct {
		Signature   string `json:"signature"`
		Slot        uint64 `json:"slot"`
		Transaction struct {
			Meta struct {
				Err         interface{} `json:"err"`
				LogMessages []string    `json:"logMessages"`
			} `json:"meta"`
			Transaction struct {
				Message struct {
					AccountKeys []accountKey `json:"accountKeys"`
				} `json:"message"`
			} `json:"transaction"`
		} `json:"transaction"`
	} `json:"result"`
}

// accountKey accepts both the jsonParsed object form and a bare string.
type accountKey struct {
	Pubkey string
}

func (k *accountKey) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &k.Pubkey)
	}
	var obj struct {
		Pubkey string `json:"pubkey"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	k.Pubkey = obj.Pubkey
	return nil
}

// awaitAck reads until the subscribe confirmation arrives. The server may
// interleave other frames before the ack; they are skipped.
func (s *wsSubscription) awaitAck() error {
	for {
		var msg rpcMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("failed to read subscribe response: %w", err)
		}
		if msg.ID == nil {
			continue
		}
		if msg.Error != nil {
			return fmt.Errorf("subscribe rejected: %s (code %d)", msg.Error.Message, msg.Error.Code)
		}
		return nil
	}
}

// Recv blocks for the next transaction notification. Non-transaction frames
// are skipped. A normal close from the server maps to io.EOF.
func (s *wsSubscription) Recv() (*swap.RawTransaction, error) {
	for {
		var msg rpcMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if s.closed.Load() {
				return nil, io.EOF
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			return nil, err
		}
		if msg.Method != "transactionNotification" {
			continue
		}

		var note txNotification
		if err := json.Unmarshal(msg.Params, &note); err != nil {
			log.Errorf("failed to decode transaction notification: %v", err)
			continue
		}

		keys := make([]string, 0, len(note.Result.Transaction.Transaction.Message.AccountKeys))
		for _, k := range note.Result.Transaction.Transaction.Message.AccountKeys {
			keys = append(keys, k.Pubkey)
		}

		return &swap.RawTransaction{
			Signature:   note.Result.Signature,
			Slot:        note.Result.Slot,
			AccountKeys: keys,
			LogMessages: note.Result.Transaction.Meta.LogMessages,
			Failed:      note.Result.Transaction.Meta.Err != nil,
		}, nil
	}
}

func (s *wsSubscription) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}
