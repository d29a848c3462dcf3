// Package stackmate implements the chain-facing core of the Stackmate puzzle
// wagering app: a resilient HTTP client for the chain indexer (retry with
// jittered backoff, Retry-After compliance, concurrency throttling) and the
// transaction lifecycle tracker that follows a contract call from signature
// request to confirmation, backed by a persisted recent-transaction log.
package stackmate

import (
	"fmt"
	"time"
)

// Constants for retry, scheduling and polling behavior.
const (
	DefaultMaxRetries    = 3
	DefaultInitialDelay  = 1 * time.Second
	DefaultMaxDelay      = 10 * time.Second
	DefaultBackoffFactor = 2.0
	DefaultMaxConcurrent = 4
	DefaultMinGap        = 120 * time.Millisecond

	// MinBackoff is the floor applied to every computed wait.
	MinBackoff = 100 * time.Millisecond

	DefaultPollInitialWait = 1 * time.Second
	DefaultPollRampStep    = 300 * time.Millisecond
	DefaultPollMaxWait     = 6 * time.Second

	// MaxTrackedRecords caps the recent-transaction log.
	MaxTrackedRecords = 10

	// DefaultStorageNamespace keys the persisted log blob.
	DefaultStorageNamespace = "stackmate:recent-txs"
)

// Network identifies one of the two supported chain networks.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// BaseURL returns the indexer API base URL for the network.
func (n Network) BaseURL() string {
	if n == NetworkTestnet {
		return "https://api.testnet.hiro.so"
	}
	return "https://api.mainnet.hiro.so"
}

// ExplorerURL returns the explorer deep link for a transaction on this network.
func (n Network) ExplorerURL(txID string) string {
	chain := n
	if chain != NetworkTestnet {
		chain = NetworkMainnet
	}
	return fmt.Sprintf("https://explorer.hiro.so/txid/%s?chain=%s", txID, chain)
}

// TxStatus is the canonical lifecycle status of a tracked transaction.
// A transaction moves
//
//	idle -> requesting_signature -> submitted -> confirming -> success
//
// or ends in failed at any step.
type TxStatus string

const (
	StatusIdle                TxStatus = "idle"
	StatusRequestingSignature TxStatus = "requesting_signature"
	StatusSubmitted           TxStatus = "submitted"
	StatusConfirming          TxStatus = "confirming"
	StatusSuccess             TxStatus = "success"
	StatusFailed              TxStatus = "failed"
)

// Terminal reports whether the status will not change on further polling.
func (s TxStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// TxOutcome is the terminal result of polling a transaction.
type TxOutcome string

const (
	OutcomeSuccess TxOutcome = "success"
	OutcomeError   TxOutcome = "error"
)

// TxRecord is one entry in the recent-transaction log. ID is assigned locally
// when the action starts; TxID is attached once the chain accepts the
// submission. Lookups match by either key.
type TxRecord struct {
	ID        string    `json:"id"`
	TxID      string    `json:"txId,omitempty"`
	Label     string    `json:"label"`
	Status    TxStatus  `json:"status"`
	Network   Network   `json:"network"`
	URL       string    `json:"url,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RetryPolicy configures one resilient call.
type RetryPolicy struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffFactor     float64
	RespectRetryAfter bool

	// Concurrency limiting toward the target service.
	UseScheduler  bool
	MaxConcurrent int
	MinGap        time.Duration
}

// DefaultRetryPolicy returns the policy used when none is supplied.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        DefaultMaxRetries,
		InitialDelay:      DefaultInitialDelay,
		MaxDelay:          DefaultMaxDelay,
		BackoffFactor:     DefaultBackoffFactor,
		RespectRetryAfter: true,
		UseScheduler:      true,
		MaxConcurrent:     DefaultMaxConcurrent,
		MinGap:            DefaultMinGap,
	}
}

// normalized fills zero fields with defaults so a partially specified policy
// behaves sanely.
func (p RetryPolicy) normalized() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = d.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.BackoffFactor <= 1 {
		p.BackoffFactor = d.BackoffFactor
	}
	if p.MaxConcurrent < 1 {
		p.MaxConcurrent = d.MaxConcurrent
	}
	if p.MinGap < 0 {
		p.MinGap = 0
	}
	return p
}

// TxPayload is the indexer's transaction view, decoded from
// GET /extended/v1/tx/{txid}.
type TxPayload struct {
	TxStatus string    `json:"tx_status"`
	TxResult *TxResult `json:"tx_result,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// TxResult carries the contract-call return value as reported by the indexer.
type TxResult struct {
	Hex  string `json:"hex,omitempty"`
	Repr string `json:"repr,omitempty"`
}

// FailureReason extracts a human-readable reason from a terminal payload.
func (p *TxPayload) FailureReason() string {
	if p == nil {
		return ""
	}
	if p.Error != "" {
		return p.Error
	}
	if p.TxResult != nil && p.TxResult.Repr != "" {
		return p.TxResult.Repr
	}
	return fmt.Sprintf("transaction failed with status %q", p.TxStatus)
}

// BalancePayload is the indexer's account balance view, decoded from
// GET /extended/v1/address/{address}/balances.
type BalancePayload struct {
	STX struct {
		Balance string `json:"balance"`
	} `json:"stx"`
}

// SendResult is the outcome of Orchestrator.SendTransaction. The orchestrator
// never returns an error; failures are reflected here and in the log record.
type SendResult struct {
	OK   bool
	TxID string
}
