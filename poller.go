package stackmate

import (
	"context"
	"strings"
	"time"

	"github.com/KyberNetwork/logger"
)

// Poller repeatedly queries the indexer for a submitted transaction until it
// reaches a terminal chain status. Individual poll failures (network errors,
// malformed payloads) are swallowed and treated as "not yet known"; only a
// terminal indexer-reported status or context cancellation ends the loop.
//
// Waits between polls follow a cap-bounded linear ramp rather than
// exponential backoff: chain confirmation time is bounded and predictable, so
// the poll interval should settle at a steady cadence instead of growing
// without reason.
type Poller struct {
	indexer IndexerReader

	initialWait time.Duration
	rampStep    time.Duration
	maxWait     time.Duration
}

// NewPoller creates a transaction poller reading from indexer.
func NewPoller(indexer IndexerReader, opts ...PollerOption) *Poller {
	p := &Poller{
		indexer:     indexer,
		initialWait: DefaultPollInitialWait,
		rampStep:    DefaultPollRampStep,
		maxWait:     DefaultPollMaxWait,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll follows txID until the indexer reports a terminal status, emitting
// confirming callbacks for every intermediate observation. It returns the
// terminal outcome and, for failures, a human-readable reason extracted from
// the chain payload. The only error Poll returns is context cancellation;
// callers abandoning a poll cancel the context instead of leaking the loop.
func (p *Poller) Poll(ctx context.Context, txID string, network Network, onStatus StatusFunc) (TxOutcome, string, error) {
	start := time.Now()
	wait := p.initialWait

	for tries := 0; ; tries++ {
		if err := sleepCtx(ctx, wait); err != nil {
			return "", "", err
		}

		payload, err := p.indexer.Transaction(ctx, network, txID)
		if err != nil {
			if ctx.Err() != nil {
				return "", "", ctx.Err()
			}
			logger.WithFields(logger.Fields{
				"tx_id":   txID,
				"network": network,
				"error":   err,
			}).Debug("Poll attempt failed, treating status as not yet known")
		} else {
			switch {
			case payload.TxStatus == "success":
				emit(onStatus, StatusSuccess)
				pollDuration.WithLabelValues(string(network)).Observe(time.Since(start).Seconds())
				txTerminal.WithLabelValues(string(network), string(StatusSuccess)).Inc()
				return OutcomeSuccess, "", nil

			case terminalFailure(payload.TxStatus):
				reason := payload.FailureReason()
				emit(onStatus, StatusFailed)
				pollDuration.WithLabelValues(string(network)).Observe(time.Since(start).Seconds())
				txTerminal.WithLabelValues(string(network), string(StatusFailed)).Inc()
				logger.WithFields(logger.Fields{
					"tx_id":  txID,
					"status": payload.TxStatus,
					"reason": reason,
				}).Info("Transaction reached terminal failure status")
				return OutcomeError, reason, nil

			default:
				// Still in the mempool or in an unconfirmed block.
				emit(onStatus, StatusConfirming)
			}
		}

		wait = p.initialWait + time.Duration(tries+1)*p.rampStep
		if wait > p.maxWait {
			wait = p.maxWait
		}
	}
}

// terminalFailure reports whether a raw indexer status means the transaction
// will never succeed (aborted by postcondition or response, or dropped from
// the mempool).
func terminalFailure(raw string) bool {
	return strings.HasPrefix(raw, "abort") || strings.HasPrefix(raw, "dropped") || raw == "failed"
}

func emit(onStatus StatusFunc, status TxStatus) {
	if onStatus != nil {
		onStatus(status)
	}
}

// Compile-time check that Poller implements TxPoller
var _ TxPoller = (*Poller)(nil)
