package solana

import (
	"context"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	log "github.com/sirupsen/logrus"
)

// Holding is the current position a wallet holds in one mint.
type Holding struct {
	Mint   string `json:"mint"`
	Amount uint64 `json:"amount"`
}

// WalletHoldings is a point-in-time snapshot of a wallet's balances.
type WalletHoldings struct {
	Wallet      string    `json:"wallet"`
	Lamports    uint64    `json:"lamports"`
	Tokens      []Holding `json:"tokens"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// HoldingsClient reads live balances for tracked wallets over RPC.
type HoldingsClient struct {
	rpc *client.Client
}

func NewHoldingsClient(endpoint string) *HoldingsClient {
	return &HoldingsClient{rpc: client.NewClient(endpoint)}
}

// GetHoldings fetches the SOL balance and all SPL token balances for a
// wallet. Accounts with a zero balance are omitted; balances per mint are
// summed across token accounts.
func (c *HoldingsClient) GetHoldings(ctx context.Context, wallet string) (*WalletHoldings, error) {
	lamports, err := c.rpc.GetBalance(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for %s: %w", wallet, err)
	}

	accounts, err := c.rpc.GetTokenAccountsByOwnerByProgram(ctx, wallet, common.TokenProgramID.ToBase58())
	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts for %s: %w", wallet, err)
	}

	byMint := make(map[string]*Holding)
	order := make([]string, 0, len(accounts))
	for _, account := range accounts {
		if account.Amount == 0 {
			continue
		}
		mint := account.Mint.ToBase58()
		if holding, ok := byMint[mint]; ok {
			holding.Amount += account.Amount
			continue
		}
		byMint[mint] = &Holding{Mint: mint, Amount: account.Amount}
		order = append(order, mint)
	}

	tokens := make([]Holding, 0, len(order))
	for _, mint := range order {
		tokens = append(tokens, *byMint[mint])
	}

	log.WithFields(log.Fields{
		"wallet": wallet,
		"tokens": len(tokens),
	}).Debug("fetched wallet holdings")

	return &WalletHoldings{
		Wallet:      wallet,
		Lamports:    lamports,
		Tokens:      tokens,
		RetrievedAt: time.Now(),
	}, nil
}
