package helius

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client represents a Helius API client
type Client struct {
	apiKey     string
	baseURL    string
	rpcURL     string
	httpClient *http.Client
}

// NewClient creates a new Helius API client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.helius.xyz/v0",
		rpcURL:  "https://mainnet.helius-rpc.com",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				IdleConnTimeout:       10 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
}

// NewClientWithURLs creates a client against custom endpoints, used in tests.
func NewClientWithURLs(apiKey, baseURL, rpcURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	c.rpcURL = rpcURL
	return c
}

// SignatureInfo is one entry from getSignaturesForAddress, newest first.
type SignatureInfo struct {
	Signature string      `json:"signature"`
	Slot      uint64      `json:"slot"`
	BlockTime *int64      `json:"blockTime"`
	Err       interface{} `json:"err"`
}

type signaturesResponse struct {
	Result []SignatureInfo `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) rpcCall(method string, params interface{}, out interface{}) error {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      "1",
		"method":  method,
		"params":  params,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request payload: %w", err)
	}

	rpcURLWithKey := fmt.Sprintf("%s/?api-key=%s", c.rpcURL, c.apiKey)
	req, err := http.NewRequest("POST", rpcURLWithKey, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetSignaturesForAddress returns up to limit signatures touching the
// address, newest first. The oldest entry of a mint's history is its
// creation transaction.
func (c *Client) GetSignaturesForAddress(address string, limit int) ([]SignatureInfo, error) {
	if limit <= 0 {
		limit = 20
	}

	var resp signaturesResponse
	err := c.rpcCall("getSignaturesForAddress", []interface{}{
		address,
		map[string]interface{}{"limit": limit},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getSignaturesForAddress failed: %s (code %d)", resp.Error.Message, resp.Error.Code)
	}
	return resp.Result, nil
}

// TokenTransfer represents a token transfer in the transaction
type TokenTransfer struct {
	FromUserAccount string  `json:"fromUserAccount"`
	ToUserAccount   string  `json:"toUserAccount"`
	TokenAmount     float64 `json:"tokenAmount"`
	Mint            string  `json:"mint"`
	TokenStandard   string  `json:"tokenStandard"`
}

// EnhancedTransaction represents the response structure for a transaction
type EnhancedTransaction struct {
	Description      string                 `json:"description"`
	Type             string                 `json:"type"`
	Source           string                 `json:"source"`
	Fee              int64                  `json:"fee"`
	FeePayer         string                 `json:"feePayer"`
	Signature        string                 `json:"signature"`
	Slot             uint64                 `json:"slot"`
	Timestamp        int64                  `json:"timestamp"`
	TokenTransfers   []TokenTransfer        `json:"tokenTransfers"`
	TransactionError interface{}            `json:"transactionError"`
	Events           map[string]interface{} `json:"events"`
}

// GetEnhancedTransactions retrieves enhanced transactions by their signatures
func (c *Client) GetEnhancedTransactions(signatures []string) ([]EnhancedTransaction, error) {
	url := fmt.Sprintf("%s/transactions/?api-key=%s", c.baseURL, c.apiKey)

	payload := map[string]interface{}{
		"transactions": signatures,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status code: %d", resp.StatusCode)
	}

	var transactions []EnhancedTransaction
	if err := json.NewDecoder(resp.Body).Decode(&transactions); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return transactions, nil
}

// Asset is the subset of the DAS getAsset response the indexer stores.
type Asset struct {
	Name     string
	Symbol   string
	Image    string
	Decimals int
}

type getAssetResponse struct {
	Result *struct {
		Content struct {
			Metadata struct {
				Name   string `json:"name"`
				Symbol string `json:"symbol"`
			} `json:"metadata"`
			Links struct {
				Image string `json:"image"`
			} `json:"links"`
		} `json:"content"`
		TokenInfo struct {
			Decimals int `json:"decimals"`
		} `json:"token_info"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

// GetAsset fetches token metadata for a mint via the DAS getAsset method.
func (c *Client) GetAsset(mint string) (*Asset, error) {
	var resp getAssetResponse
	err := c.rpcCall("getAsset", map[string]interface{}{"id": mint}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getAsset failed for %s: %s (code %d)", mint, resp.Error.Message, resp.Error.Code)
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("getAsset returned no result for %s", mint)
	}

	return &Asset{
		Name:     resp.Result.Content.Metadata.Name,
		Symbol:   resp.Result.Content.Metadata.Symbol,
		Image:    resp.Result.Content.Links.Image,
		Decimals: resp.Result.TokenInfo.Decimals,
	}, nil
}
