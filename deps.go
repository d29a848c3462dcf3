// deps.go defines minimal interfaces for external dependencies.
// This allows for easy mocking in tests and decouples the library from
// concrete HTTP and indexer implementations.
package stackmate

import (
	"context"
	"net/http"
)

// Doer is the subset of *http.Client the resilient client needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// IndexerReader reads transaction and account state from the chain indexer.
type IndexerReader interface {
	// Transaction returns the indexer's current view of a submitted
	// transaction.
	Transaction(ctx context.Context, network Network, txID string) (*TxPayload, error)

	// Balance returns the account's token balance view.
	Balance(ctx context.Context, network Network, address string) (*BalancePayload, error)
}

// TxPoller follows a submitted transaction until a terminal status.
type TxPoller interface {
	Poll(ctx context.Context, txID string, network Network, onStatus StatusFunc) (TxOutcome, string, error)
}

// StatusFunc receives lifecycle status transitions. It may be nil wherever it
// is accepted.
type StatusFunc func(status TxStatus)

// RunFunc performs the wallet interaction (signature request plus broadcast)
// for one contract call. The core treats the wallet as a black box: the
// return value may be the chain-assigned transaction id as a bare string, or
// any value exposing a TxID, and an error means the submission never made it
// to the chain (including the user dismissing the wallet prompt).
type RunFunc func(ctx context.Context) (any, error)

// TxIDer is implemented by run results that carry the chain-assigned id in a
// structured form.
type TxIDer interface {
	GetTxID() string
}
