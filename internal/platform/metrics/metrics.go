// Package metrics registers all Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec

	UsersRegistered  prometheus.Counter
	SearchesCreated  prometheus.Counter
	MatchingDuration prometheus.Histogram
	ClinicLookups    *prometheus.CounterVec

	NotificationsEnqueued prometheus.Counter
	NotificationsSent     prometheus.Counter
	NotificationsFailed   prometheus.Counter

	GeoCacheHits   prometheus.Counter
	GeoCacheMisses prometheus.Counter
}

// New creates all metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh
// registry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vetblood_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "vetblood_users_registered_total",
			Help: "Total number of users registered.",
		}),
		SearchesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "vetblood_blood_searches_created_total",
			Help: "Total number of blood searches created.",
		}),
		MatchingDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vetblood_matching_duration_seconds",
			Help:    "End-to-end duration of the clinic matching fan-out.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ClinicLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vetblood_matching_clinic_lookups_total",
			Help: "Per-clinic distance lookups by outcome.",
		}, []string{"outcome"}),
		NotificationsEnqueued: f.NewCounter(prometheus.CounterOpts{
			Name: "vetblood_notifications_enqueued_total",
			Help: "Notifications written to the outbox.",
		}),
		NotificationsSent: f.NewCounter(prometheus.CounterOpts{
			Name: "vetblood_notifications_sent_total",
			Help: "Notifications delivered to Telegram.",
		}),
		NotificationsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "vetblood_notifications_failed_total",
			Help: "Notification deliveries that exhausted retries.",
		}),
		GeoCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "vetblood_geo_cache_hits_total",
			Help: "Distance lookups served from cache.",
		}),
		GeoCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "vetblood_geo_cache_misses_total",
			Help: "Distance lookups that fell through to the routing API.",
		}),
	}
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route, method, status string, d time.Duration) {
	m.RequestDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
}

// ObserveClinicLookup records a per-clinic distance lookup outcome
// ("ok" or "failed").
func (m *Metrics) ObserveClinicLookup(outcome string) {
	m.ClinicLookups.WithLabelValues(outcome).Inc()
}
