// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts distribution runs by outcome: completed, empty, dry_run
	// or failed.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenflight_runs_total",
		Help: "Distribution runs by outcome.",
	}, []string{"status"})

	// PagesFetched counts explorer transaction feed pages fetched.
	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokenflight_explorer_pages_fetched_total",
		Help: "Explorer transaction feed pages fetched.",
	})

	// BlocksCollected reports the block set size of the most recent run.
	BlocksCollected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tokenflight_blocks_collected",
		Help: "Blocks collected since the reference height in the last run.",
	})

	// RecipientsPaid reports the recipient count of the most recent run.
	RecipientsPaid = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tokenflight_recipients_paid",
		Help: "Recipients in the last computed distribution.",
	})

	// AmountDistributed reports the total of the most recent distribution.
	AmountDistributed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tokenflight_amount_distributed",
		Help: "Total amount of the last computed distribution.",
	})
)
