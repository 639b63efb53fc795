package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "beautybook_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	BookingOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beautybook_booking_operations_total",
		Help: "Booking operations by outcome.",
	}, []string{"operation", "outcome"})

	AvailabilityCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beautybook_availability_cache_total",
		Help: "Availability cache lookups by result.",
	}, []string{"result"})

	GuestRecordsLinked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beautybook_guest_records_linked_total",
		Help: "Guest records attached to accounts.",
	}, []string{"kind"})
)

// Outcome labels for BookingOperations.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// RecordBooking counts one booking operation; err's kind decides the outcome.
func RecordBooking(operation string, err error, expected func(error) bool) {
	outcome := OutcomeOK
	switch {
	case err == nil:
	case expected != nil && expected(err):
		outcome = OutcomeRejected
	default:
		outcome = OutcomeError
	}
	BookingOperations.WithLabelValues(operation, outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
