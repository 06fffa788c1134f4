// Package metrics exposes Prometheus counters for the workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts workflow transitions by name and outcome.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleancity_workflow_transitions_total",
		Help: "Workflow transitions attempted, labelled by transition and outcome.",
	}, []string{"transition", "outcome"})

	// RewardPointsCredited counts reward points granted through the ledger.
	RewardPointsCredited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cleancity_reward_points_credited_total",
		Help: "Total reward points credited to reporters.",
	})
)

// ObserveTransition records one transition attempt.
func ObserveTransition(transition string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	TransitionsTotal.WithLabelValues(transition, outcome).Inc()
}
