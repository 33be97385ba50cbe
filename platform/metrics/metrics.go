// Package metrics exposes Prometheus counters for the core workflows.
// This is part of the platform layer and contains no business logic.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// IngestOutcomes counts upsert outcomes per ingestion run, labeled by outcome
	// (inserted, updated, skipped, filtered, error).
	IngestOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bidlens_ingest_records_total", Help: "Total ingested feed records by outcome"},
		[]string{"outcome"},
	)

	// StateTransitions counts decision state changes, labeled by target state.
	StateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bidlens_state_transitions_total", Help: "Total decision state transitions by target state"},
		[]string{"to_state"},
	)

	// VotesCast counts vote writes, including clears.
	VotesCast = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "bidlens_votes_cast_total", Help: "Total vote writes including clears"},
	)
)

// Register registers all collectors with the default registry.
func Register() {
	prometheus.MustRegister(IngestOutcomes, StateTransitions, VotesCast)
}
