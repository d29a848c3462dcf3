package stackmate

import (
	"context"
	"strings"

	"github.com/KyberNetwork/logger"
)

// Orchestrator shepherds contract calls through the full lifecycle: signature
// request, submission, chain confirmation, and terminal bookkeeping in the
// transaction log. It is the never-fails boundary of the package: every
// outcome, including programmer errors in the request, lands in the returned
// SendResult and in the log rather than in a returned error.
type Orchestrator struct {
	log     *TxLog
	poller  TxPoller
	network Network
}

// NewOrchestrator wires an orchestrator for network, the default chain for
// requests that leave Network unset. Without options it runs with a
// memory-backed TxLog and a Poller over a default indexer client.
func NewOrchestrator(network Network, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{network: network}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = NewTxLog(context.Background(), nil)
	}
	if o.poller == nil {
		o.poller = NewPoller(NewIndexer(nil))
	}
	if o.network == "" {
		o.network = NetworkTestnet
	}
	return o
}

// Log exposes the transaction log the orchestrator records into.
func (o *Orchestrator) Log() *TxLog {
	return o.log
}

// SendTransaction runs req end to end and reports whether the transaction
// ultimately succeeded on chain. It never returns an error: validation
// failures, wallet rejection, missing transaction IDs, and chain aborts all
// produce SendResult{OK: false} with the detail recorded in the log entry.
func (o *Orchestrator) SendTransaction(ctx context.Context, req CallRequest) SendResult {
	network := req.Network
	if network == "" {
		network = o.network
	}

	if err := req.Validate(); err != nil {
		logger.WithFields(logger.Fields{
			"label": req.Label,
			"error": err,
		}).Warn("Rejecting contract call with incomplete request")
		o.log.Upsert(ctx, TxRecord{
			Label:   req.Label,
			Status:  StatusFailed,
			Network: network,
			Error:   err.Error(),
		})
		return SendResult{}
	}

	rec := o.log.Upsert(ctx, TxRecord{
		Label:   req.Label,
		Status:  StatusRequestingSignature,
		Network: network,
	})
	emit(req.OnStatus, StatusRequestingSignature)

	value, err := req.Run(ctx)
	if err != nil {
		if IsUserCancelled(err) {
			// The user changed their mind; that is not a failure worth
			// keeping in the recent list.
			o.log.Remove(ctx, rec.ID)
			emit(req.OnStatus, StatusIdle)
			return SendResult{}
		}
		o.fail(ctx, rec.ID, req.OnStatus, err.Error())
		return SendResult{}
	}

	txID, err := extractTxID(value)
	if err != nil {
		o.fail(ctx, rec.ID, req.OnStatus, err.Error())
		return SendResult{}
	}

	url := network.ExplorerURL(txID)
	o.log.Update(ctx, rec.ID, func(r *TxRecord) {
		r.TxID = txID
		r.Status = StatusSubmitted
		r.URL = url
	})
	emit(req.OnStatus, StatusSubmitted)
	logger.WithFields(logger.Fields{
		"label": req.Label,
		"tx_id": txID,
		"url":   url,
	}).Info("Transaction submitted, awaiting confirmation")

	return o.confirm(ctx, rec.ID, txID, network, req.OnStatus)
}

// Resume picks up confirmation of every non-terminal record in the log, as
// after a process restart with a durable LogStore. Records that never got a
// transaction ID cannot be resumed and are marked failed.
func (o *Orchestrator) Resume(ctx context.Context) {
	for _, rec := range o.log.Active() {
		if rec.TxID == "" {
			o.fail(ctx, rec.ID, nil, "interrupted before submission")
			continue
		}
		logger.WithFields(logger.Fields{
			"label": rec.Label,
			"tx_id": rec.TxID,
		}).Info("Resuming confirmation of in-flight transaction")
		o.confirm(ctx, rec.ID, rec.TxID, rec.Network, nil)
	}
}

// confirm delegates to the poller and mirrors its observations into the log.
func (o *Orchestrator) confirm(ctx context.Context, recID, txID string, network Network, onStatus StatusFunc) SendResult {
	outcome, reason, err := o.poller.Poll(ctx, txID, network, func(status TxStatus) {
		if status == StatusConfirming {
			o.log.Update(ctx, recID, func(r *TxRecord) {
				if r.Status == StatusSubmitted {
					r.Status = StatusConfirming
				}
			})
		}
		emit(onStatus, status)
	})
	if err != nil {
		// Cancelled while waiting; the record stays in flight so a later
		// Resume can finish the job.
		logger.WithFields(logger.Fields{
			"tx_id": txID,
			"error": err,
		}).Warn("Confirmation polling interrupted")
		return SendResult{}
	}

	if outcome == OutcomeSuccess {
		o.log.Update(ctx, recID, func(r *TxRecord) {
			r.Status = StatusSuccess
			r.Error = ""
		})
		return SendResult{OK: true, TxID: txID}
	}

	if reason == "" {
		reason = "transaction failed on chain"
	}
	o.log.Update(ctx, recID, func(r *TxRecord) {
		r.Status = StatusFailed
		r.Error = reason
	})
	return SendResult{TxID: txID}
}

func (o *Orchestrator) fail(ctx context.Context, recID string, onStatus StatusFunc, reason string) {
	o.log.Update(ctx, recID, func(r *TxRecord) {
		r.Status = StatusFailed
		r.Error = reason
	})
	emit(onStatus, StatusFailed)
}

// extractTxID pulls the chain transaction ID out of whatever the signing flow
// returned: a bare string, or any struct exposing GetTxID.
func extractTxID(value any) (string, error) {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", ErrNoTxID
		}
		return v, nil
	case TxIDer:
		if id := v.GetTxID(); id != "" {
			return id, nil
		}
		return "", ErrNoTxID
	case nil:
		return "", ErrNoTxID
	default:
		return "", ErrUnsupportedResult
	}
}
