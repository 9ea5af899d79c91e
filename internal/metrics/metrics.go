package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featuresgym_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "featuresgym_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// BookingOpsTotal counts lifecycle operations by outcome ("ok" or an error reason).
	BookingOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featuresgym_booking_operations_total",
			Help: "Booking lifecycle operations by kind and outcome",
		},
		[]string{"operation", "outcome"},
	)

	FeesChargedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featuresgym_fees_charged_total",
			Help: "Policy fees debited from member wallets",
		},
		[]string{"kind"},
	)

	FeeAmountTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featuresgym_fee_amount_total",
			Help: "Sum of policy fees debited, in currency units",
		},
		[]string{"kind"},
	)

	SweepVisitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featuresgym_sweep_visits_total",
			Help: "Visits transitioned by the missed-visit sweeper",
		},
		[]string{"result"},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "featuresgym_sweep_duration_seconds",
			Help:    "Duration of missed-visit sweep passes",
			Buckets: prometheus.DefBuckets,
		},
	)

	SlotCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featuresgym_slot_cache_lookups_total",
			Help: "Slot availability cache lookups",
		},
		[]string{"result"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "featuresgym_events_published_total",
			Help: "Domain events handed to the broker",
		},
		[]string{"type", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBookingOp(operation, outcome string) {
	BookingOpsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordFee(kind string, amount float64) {
	FeesChargedTotal.WithLabelValues(kind).Inc()
	FeeAmountTotal.WithLabelValues(kind).Add(amount)
}

func RecordSweep(completed, missed, errors int, seconds float64) {
	SweepVisitsTotal.WithLabelValues("completed").Add(float64(completed))
	SweepVisitsTotal.WithLabelValues("missed").Add(float64(missed))
	SweepVisitsTotal.WithLabelValues("error").Add(float64(errors))
	SweepDuration.Observe(seconds)
}

func RecordSlotCache(hit bool) {
	if hit {
		SlotCacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	SlotCacheLookupsTotal.WithLabelValues("miss").Inc()
}

func RecordEvent(eventType, status string) {
	EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}
