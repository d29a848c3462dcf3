package stackmate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ============================================================
// Mock Implementations
// ============================================================

// scriptedResponse is one step in a mockDoer script.
type scriptedResponse struct {
	status  int
	body    string
	headers map[string]string
	err     error
}

// mockDoer implements Doer with a scripted sequence of responses. Once the
// script runs out the last step repeats.
type mockDoer struct {
	mu sync.Mutex

	script []scriptedResponse

	// Call tracking for assertions
	Calls []*http.Request
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	i := len(m.Calls) - 1
	if i >= len(m.script) {
		i = len(m.script) - 1
	}
	step := m.script[i]
	m.mu.Unlock()

	if step.err != nil {
		return nil, step.err
	}
	resp := &http.Response{
		StatusCode: step.status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(step.body)),
		Request:    req,
	}
	for k, v := range step.headers {
		resp.Header.Set(k, v)
	}
	return resp, nil
}

func (m *mockDoer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// respond builds a script step with a plain status and body.
func respond(status int, body string) scriptedResponse {
	return scriptedResponse{status: status, body: body}
}

// respondRateLimited builds a 429 step with a Retry-After header.
func respondRateLimited(retryAfter string) scriptedResponse {
	return scriptedResponse{
		status:  http.StatusTooManyRequests,
		body:    `{"error":"rate limited"}`,
		headers: map[string]string{"Retry-After": retryAfter},
	}
}

// mockIndexer implements IndexerReader for testing
type mockIndexer struct {
	mu sync.Mutex

	// Function hooks - set these to customize behavior
	TransactionFn func(network Network, txID string) (*TxPayload, error)
	BalanceFn     func(network Network, address string) (*BalancePayload, error)

	// Call tracking for assertions
	TransactionCalls []string
	BalanceCalls     []string
}

func (m *mockIndexer) Transaction(_ context.Context, network Network, txID string) (*TxPayload, error) {
	m.mu.Lock()
	m.TransactionCalls = append(m.TransactionCalls, txID)
	m.mu.Unlock()
	if m.TransactionFn != nil {
		return m.TransactionFn(network, txID)
	}
	return &TxPayload{TxStatus: "pending"}, nil
}

func (m *mockIndexer) Balance(_ context.Context, network Network, address string) (*BalancePayload, error) {
	m.mu.Lock()
	m.BalanceCalls = append(m.BalanceCalls, address)
	m.mu.Unlock()
	if m.BalanceFn != nil {
		return m.BalanceFn(network, address)
	}
	return &BalancePayload{}, nil
}

// sequencedIndexer returns scripted transaction payloads in order, repeating
// the last one. A nil payload in the sequence means a transport error.
func sequencedIndexer(payloads ...*TxPayload) *mockIndexer {
	var n int
	var mu sync.Mutex
	return &mockIndexer{
		TransactionFn: func(Network, string) (*TxPayload, error) {
			mu.Lock()
			i := n
			n++
			mu.Unlock()
			if i >= len(payloads) {
				i = len(payloads) - 1
			}
			if payloads[i] == nil {
				return nil, fmt.Errorf("connection refused")
			}
			return payloads[i], nil
		},
	}
}

// mockTxPoller implements TxPoller for testing
type mockTxPoller struct {
	mu sync.Mutex

	PollFn func(ctx context.Context, txID string, network Network, onStatus StatusFunc) (TxOutcome, string, error)

	PollCalls []string
}

func (m *mockTxPoller) Poll(ctx context.Context, txID string, network Network, onStatus StatusFunc) (TxOutcome, string, error) {
	m.mu.Lock()
	m.PollCalls = append(m.PollCalls, txID)
	m.mu.Unlock()
	if m.PollFn != nil {
		return m.PollFn(ctx, txID, network, onStatus)
	}
	return OutcomeSuccess, "", nil
}

// succeedingPoller emits confirming then success.
func succeedingPoller() *mockTxPoller {
	return &mockTxPoller{
		PollFn: func(_ context.Context, _ string, _ Network, onStatus StatusFunc) (TxOutcome, string, error) {
			if onStatus != nil {
				onStatus(StatusConfirming)
				onStatus(StatusSuccess)
			}
			return OutcomeSuccess, "", nil
		},
	}
}

// abortingPoller emits confirming then failed with the given reason.
func abortingPoller(reason string) *mockTxPoller {
	return &mockTxPoller{
		PollFn: func(_ context.Context, _ string, _ Network, onStatus StatusFunc) (TxOutcome, string, error) {
			if onStatus != nil {
				onStatus(StatusConfirming)
				onStatus(StatusFailed)
			}
			return OutcomeError, reason, nil
		},
	}
}

// failingLogStore implements LogStore and fails every operation, for
// exercising the fail-soft paths.
type failingLogStore struct {
	mu        sync.Mutex
	SaveCalls int
	LoadCalls int
}

func (s *failingLogStore) Save(context.Context, []TxRecord) error {
	s.mu.Lock()
	s.SaveCalls++
	s.mu.Unlock()
	return fmt.Errorf("store unavailable")
}

func (s *failingLogStore) Load(context.Context) ([]TxRecord, error) {
	s.mu.Lock()
	s.LoadCalls++
	s.mu.Unlock()
	return nil, fmt.Errorf("store unavailable")
}

// txIDResult is a RunFunc result exposing its transaction id through TxIDer.
type txIDResult struct {
	id string
}

func (r txIDResult) GetTxID() string { return r.id }

// fastPoller builds a real Poller with millisecond timings for tests.
func fastPoller(indexer IndexerReader) *Poller {
	return NewPoller(indexer, WithPollTiming(time.Millisecond, time.Millisecond, 5*time.Millisecond))
}
