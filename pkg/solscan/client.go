package solscan

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client represents a Solscan Pro API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Solscan API client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://pro-api.solscan.io/v2.0",
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

// NewClientWithURL creates a client against a custom endpoint, used in tests.
func NewClientWithURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

// TokenMeta is the creation provenance Solscan reports for a mint.
type TokenMeta struct {
	Address       string `json:"address"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Icon          string `json:"icon"`
	Decimals      int    `json:"decimals"`
	Creator       string `json:"creator"`
	CreateTx      string `json:"create_tx"`
	CreatedTime   int64  `json:"created_time"`
	FirstMintTx   string `json:"first_mint_tx"`
	FirstMintTime int64  `json:"first_mint_time"`
}

type tokenMetaResponse struct {
	Success bool       `json:"success"`
	Data    *TokenMeta `json:"data"`
	Errors  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// GetTokenMeta retrieves creation provenance and metadata for a mint
func (c *Client) GetTokenMeta(mint string) (*TokenMeta, error) {
	u, err := url.Parse(fmt.Sprintf("%s/token/meta", c.baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	q.Add("address", mint)
	u.RawQuery = q.Encode()

	req, err := http.NewRequest("GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status code: %d", resp.StatusCode)
	}

	var body tokenMetaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !body.Success || body.Data == nil {
		msg := "no data"
		if body.Errors != nil {
			msg = body.Errors.Message
		}
		return nil, fmt.Errorf("solscan token meta failed for %s: %s", mint, msg)
	}
	return body.Data, nil
}
