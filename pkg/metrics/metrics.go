// Package metrics holds the Prometheus collectors shared by the services.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by service, method, route pattern and status code.",
	}, []string{"service", "method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by service, method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "method", "route"})

	RSVPsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rsvps_submitted_total",
		Help: "RSVP records created, by attendance decision.",
	}, []string{"attendance"})

	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uploads_total",
		Help: "File uploads by outcome (stored, too_large, bad_type, failed).",
	}, []string{"outcome"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Emails handed to the mailer, by kind and result.",
	}, []string{"kind", "result"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
