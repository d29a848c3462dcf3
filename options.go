package stackmate

import "time"

// ClientOption configures a Client during construction.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP transport. Any Doer works, which is
// how tests substitute scripted transports.
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *Client) {
		c.http = doer
	}
}

// WithPolicy replaces the default retry policy. Zero fields are filled with
// defaults.
func WithPolicy(policy RetryPolicy) ClientOption {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithScheduler shares a scheduler between clients talking to the same
// service, so their combined traffic honors one concurrency cap.
func WithScheduler(s *Scheduler) ClientOption {
	return func(c *Client) {
		c.scheduler = s
	}
}

// WithURLRewriter maps request URLs before dispatch, e.g. onto a local dev
// proxy.
func WithURLRewriter(rewrite func(url string) string) ClientOption {
	return func(c *Client) {
		c.rewrite = rewrite
	}
}

// IndexerOption configures an Indexer during construction.
type IndexerOption func(*Indexer)

// WithBaseURL overrides the indexer base URL for one network.
func WithBaseURL(network Network, baseURL string) IndexerOption {
	return func(ix *Indexer) {
		ix.baseURLs[network] = baseURL
	}
}

// PollerOption configures a Poller during construction.
type PollerOption func(*Poller)

// WithPollTiming overrides the poll wait ramp. Non-positive values keep the
// corresponding default. Tests use tight timings to finish in milliseconds.
func WithPollTiming(initial, step, max time.Duration) PollerOption {
	return func(p *Poller) {
		if initial > 0 {
			p.initialWait = initial
		}
		if step > 0 {
			p.rampStep = step
		}
		if max > 0 {
			p.maxWait = max
		}
	}
}

// TxLogOption configures a TxLog during construction.
type TxLogOption func(*TxLog)

// WithLimit overrides the maximum number of tracked records.
func WithLimit(limit int) TxLogOption {
	return func(l *TxLog) {
		if limit > 0 {
			l.limit = limit
		}
	}
}

// OrchestratorOption configures an Orchestrator during construction.
type OrchestratorOption func(*Orchestrator)

// WithTxLog sets the transaction log the orchestrator records into.
func WithTxLog(log *TxLog) OrchestratorOption {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithPoller sets the confirmation poller.
func WithPoller(poller TxPoller) OrchestratorOption {
	return func(o *Orchestrator) {
		o.poller = poller
	}
}
