package stackmate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackmate_chain_requests_total",
		Help: "Chain API requests by service and outcome",
	}, []string{"service", "outcome"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackmate_chain_retries_total",
		Help: "Chain API request retries by service and reason",
	}, []string{"service", "reason"})

	requestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stackmate_chain_requests_in_flight",
		Help: "Chain API requests currently in flight",
	}, []string{"service"})

	pollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stackmate_tx_poll_seconds",
		Help:    "Time from first poll to terminal transaction status",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"network"})

	txTerminal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackmate_tx_terminal_total",
		Help: "Tracked transactions reaching a terminal status",
	}, []string{"network", "status"})
)
