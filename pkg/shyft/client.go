package shyft

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client represents a Shyft API client
type Client struct {
	apiKey     string
	baseURL    string
	network    string
	httpClient *http.Client
}

// NewClient creates a new Shyft API client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.shyft.to/sol/v1",
		network: "mainnet-beta",
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

// TokenInfo is the metadata Shyft reports for a mint.
type TokenInfo struct {
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Image         string  `json:"image"`
	Decimals      int     `json:"decimals"`
	Description   string  `json:"description"`
	MintAuthority string  `json:"mint_authority"`
	CurrentSupply float64 `json:"current_supply"`
}

type tokenInfoResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Result  *TokenInfo `json:"result"`
}

// GetTokenInfo retrieves token metadata for a mint
func (c *Client) GetTokenInfo(mint string) (*TokenInfo, error) {
	u, err := url.Parse(fmt.Sprintf("%s/token/get_info", c.baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	q.Add("network", c.network)
	q.Add("token_address", mint)
	u.RawQuery = q.Encode()

	req, err := http.NewRequest("GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status code: %d", resp.StatusCode)
	}

	var body tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !body.Success || body.Result == nil {
		return nil, fmt.Errorf("shyft token lookup failed for %s: %s", mint, body.Message)
	}
	return body.Result, nil
}
