package stackmate

import (
	"context"
	"fmt"
	"net/url"
)

// Indexer is a typed wrapper over the resilient client for the chain
// indexer's HTTP API. One instance serves both supported networks; the base
// URL is picked per call.
type Indexer struct {
	client   *Client
	baseURLs map[Network]string
}

// NewIndexer creates an indexer reader. When client is nil a default
// resilient client named "indexer" is used. Base URL overrides (dev proxies,
// self-hosted nodes) are applied through IndexerOption.
func NewIndexer(client *Client, opts ...IndexerOption) *Indexer {
	if client == nil {
		client = NewClient("indexer")
	}
	ix := &Indexer{
		client: client,
		baseURLs: map[Network]string{
			NetworkMainnet: NetworkMainnet.BaseURL(),
			NetworkTestnet: NetworkTestnet.BaseURL(),
		},
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Transaction returns the indexer's current view of a submitted transaction.
func (ix *Indexer) Transaction(ctx context.Context, network Network, txID string) (*TxPayload, error) {
	if txID == "" {
		return nil, fmt.Errorf("transaction id cannot be empty")
	}
	endpoint := fmt.Sprintf("%s/extended/v1/tx/%s", ix.baseURLs[network], url.PathEscape(txID))
	var payload TxPayload
	if err := ix.client.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Balance returns the account's token balances.
func (ix *Indexer) Balance(ctx context.Context, network Network, address string) (*BalancePayload, error) {
	if address == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}
	endpoint := fmt.Sprintf("%s/extended/v1/address/%s/balances", ix.baseURLs[network], url.PathEscape(address))
	var payload BalancePayload
	if err := ix.client.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Compile-time check that Indexer implements IndexerReader
var _ IndexerReader = (*Indexer)(nil)
