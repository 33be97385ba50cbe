// Package observers wires domain events to side effects that no bounded
// context owns, such as Prometheus counters.
package observers

import (
	"context"

	"bidlens_backend/internal/events"
	"bidlens_backend/platform/metrics"
)

// RegisterMetrics subscribes the Prometheus counters to decision events.
// Ingestion outcome counters are incremented inline by the orchestrator.
func RegisterMetrics(bus events.Bus) {
	bus.Subscribe("decisions.state.changed", events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if changed, ok := e.(events.DecisionStateChanged); ok {
			metrics.StateTransitions.WithLabelValues(changed.ToState).Inc()
		}
		return nil
	}))

	bus.Subscribe("decisions.vote.cast", events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if _, ok := e.(events.VoteCast); ok {
			metrics.VotesCast.Inc()
		}
		return nil
	}))
}
