package stackmate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndexerServer(t *testing.T, handler http.HandlerFunc) *Indexer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("indexer-test", WithPolicy(fastPolicy()))
	return NewIndexer(client,
		WithBaseURL(NetworkMainnet, server.URL),
		WithBaseURL(NetworkTestnet, server.URL),
	)
}

func TestIndexer_TransactionDecodesPayload(t *testing.T) {
	ix := testIndexerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extended/v1/tx/0xAB", r.URL.Path)
		fmt.Fprint(w, `{"tx_status":"abort_by_response","tx_result":{"hex":"0x08","repr":"(err u102)"}}`)
	})

	payload, err := ix.Transaction(context.Background(), NetworkTestnet, "0xAB")
	require.NoError(t, err)
	assert.Equal(t, "abort_by_response", payload.TxStatus)
	assert.Equal(t, "(err u102)", payload.FailureReason())
}

func TestIndexer_TransactionRejectsEmptyID(t *testing.T) {
	ix := NewIndexer(nil)
	_, err := ix.Transaction(context.Background(), NetworkTestnet, "")
	assert.Error(t, err)
}

func TestIndexer_BalanceDecodesPayload(t *testing.T) {
	ix := testIndexerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extended/v1/address/SP3FBR2AGK5H9QBDH3EEN6DF8EK8JY7RX8QJ5SVTE/balances", r.URL.Path)
		fmt.Fprint(w, `{"stx":{"balance":"1500000"}}`)
	})

	payload, err := ix.Balance(context.Background(), NetworkMainnet, "SP3FBR2AGK5H9QBDH3EEN6DF8EK8JY7RX8QJ5SVTE")
	require.NoError(t, err)
	assert.Equal(t, "1500000", payload.STX.Balance)
}

func TestIndexer_NotFoundSurfacesAsError(t *testing.T) {
	ix := testIndexerServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})

	_, err := ix.Transaction(context.Background(), NetworkTestnet, "0xMISSING")
	assert.ErrorContains(t, err, "404")
}

func TestNetwork_URLs(t *testing.T) {
	assert.Equal(t, "https://api.mainnet.hiro.so", NetworkMainnet.BaseURL())
	assert.Equal(t, "https://api.testnet.hiro.so", NetworkTestnet.BaseURL())
	assert.Equal(t,
		"https://explorer.hiro.so/txid/0xAB?chain=testnet",
		NetworkTestnet.ExplorerURL("0xAB"))
	assert.Equal(t,
		"https://explorer.hiro.so/txid/0xAB?chain=mainnet",
		NetworkMainnet.ExplorerURL("0xAB"))
}

func TestTxPayload_FailureReasonFallbacks(t *testing.T) {
	withError := &TxPayload{TxStatus: "abort_by_response", Error: "runtime error"}
	assert.Equal(t, "runtime error", withError.FailureReason())

	withRepr := &TxPayload{TxStatus: "abort_by_response", TxResult: &TxResult{Repr: "(err u1)"}}
	assert.Equal(t, "(err u1)", withRepr.FailureReason())

	bare := &TxPayload{TxStatus: "dropped_stale_garbage_collect"}
	assert.Equal(t, `transaction failed with status "dropped_stale_garbage_collect"`, bare.FailureReason())
}
