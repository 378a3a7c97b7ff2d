// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TournamentsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "puckdrop_tournaments_started_total",
		Help: "Tournaments started since process boot.",
	})

	MatchesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "puckdrop_matches_completed_total",
		Help: "Matches with a submitted score.",
	})

	PhaseTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "puckdrop_phase_transitions_total",
		Help: "Playoff matches generated, by phase.",
	}, []string{"phase"})

	SnapshotWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "puckdrop_snapshot_writes_total",
		Help: "Tournament snapshots persisted.",
	})

	RecapFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "puckdrop_recap_failures_total",
		Help: "Commissioner recap or chat calls that fell back to a placeholder.",
	})
)
