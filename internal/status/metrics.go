// Package status exposes the worker's Prometheus metrics.
package status

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dealscout_cycles_total",
		Help: "Completed extraction cycles",
	})
	DegradedCyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dealscout_degraded_cycles_total",
		Help: "Cycles that produced zero messages because the source was unavailable",
	})
	MessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dealscout_messages_total",
		Help: "Raw messages examined",
	})
	DealsEmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dealscout_deals_emitted_total",
		Help: "Deals accepted and emitted for publishing",
	})
	RejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dealscout_rejections_total",
		Help: "Candidates rejected by the validator, by reason",
	}, []string{"reason"})
	DuplicatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dealscout_duplicates_total",
		Help: "Candidates dropped because their id was already seen",
	})
	PublishFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dealscout_publish_failures_total",
		Help: "Deals that failed to publish",
	})
)

// Handler registers the worker metrics and returns the exposition handler.
// Call once.
func Handler() http.Handler {
	prometheus.MustRegister(
		CyclesTotal,
		DegradedCyclesTotal,
		MessagesTotal,
		DealsEmittedTotal,
		RejectionsTotal,
		DuplicatesTotal,
		PublishFailuresTotal,
	)
	return promhttp.Handler()
}
