package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NotificationsComposed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolms", Name: "notifications_composed_total", Help: "Notifications persisted, by event kind",
	}, []string{"kind"})
	ComposeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolms", Name: "compose_failures_total", Help: "Compose attempts ending in a business failure, by event kind",
	}, []string{"kind"})
	RecipientsFannedOut = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolms", Name: "recipients_fanned_out_total", Help: "Notification recipient rows written",
	})
	ResolverOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolms", Name: "resolver_outcomes_total", Help: "Parent resolutions, by matching strategy or 'unresolved'",
	}, []string{"method"})
	BroadcastFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolms", Name: "broadcast_failures_total", Help: "Best-effort broadcast pushes that failed",
	})
	RepairsApplied = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolms", Name: "repairs_applied_total", Help: "Relationship backfills written by the repair tool",
	})
)

func init() {
	prometheus.MustRegister(NotificationsComposed, ComposeFailures, RecipientsFannedOut, ResolverOutcomes, BroadcastFailures, RepairsApplied)
}

func Handler() http.Handler { return promhttp.Handler() }
