package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsTotal tracks records visited per terminal status
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdreformat_records_total",
			Help: "Total number of records visited by batch runs",
		},
		[]string{"status"},
	)

	// OracleCallsTotal tracks calls to the text-transformation oracle
	OracleCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdreformat_oracle_calls_total",
			Help: "Total number of oracle calls",
		},
		[]string{"provider"},
	)

	// OracleErrorsTotal tracks oracle faults that were degraded to raw text
	OracleErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdreformat_oracle_errors_total",
			Help: "Total number of oracle faults",
		},
		[]string{"provider"},
	)

	// OracleLatency tracks oracle call latency
	OracleLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mdreformat_oracle_latency_seconds",
			Help:    "Oracle call latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"provider"},
	)

	// PlaceholderRetries tracks second attempts caused by a leftover L# tag
	PlaceholderRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mdreformat_placeholder_retries_total",
			Help: "Total number of oracle retries caused by unresolved placeholders",
		},
	)

	// StoreLatency tracks store operation latency
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mdreformat_store_latency_seconds",
			Help:    "Store operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// LastCommittedID tracks the id of the last committed record
	LastCommittedID = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mdreformat_last_committed_id",
			Help: "Identifier of the last committed record",
		},
	)
)

// NewStoreTimer starts a latency timer for a store operation.
func NewStoreTimer(op string) *prometheus.Timer {
	return prometheus.NewTimer(StoreLatency.WithLabelValues(op))
}
