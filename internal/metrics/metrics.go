// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthzDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskhub",
		Name:      "authz_decisions_total",
		Help:      "Authorization decisions by outcome and reason.",
	}, []string{"outcome", "reason"})

	PermissionSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskhub",
		Name:      "permission_sync_total",
		Help:      "Permission catalog synchronizations by result.",
	}, []string{"result"})
)

// ObserveDecision counts one authorization decision.
func ObserveDecision(outcome, reason string) {
	AuthzDecisions.WithLabelValues(outcome, reason).Inc()
}

// ObserveSync counts one synchronization run.
func ObserveSync(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	PermissionSyncs.WithLabelValues(result).Inc()
}
