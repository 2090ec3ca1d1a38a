package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flow.
type BookingMetrics struct {
	bookingsTotal     *prometheus.CounterVec
	closedTotal       prometheus.Counter
	canceledTotal     prometheus.Counter
	resolutionsTotal  *prometheus.CounterVec
	resolutionLatency prometheus.Histogram
}

// NewBookingMetrics registers the booking metrics on reg (or the default
// registerer when nil).
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Booking attempts by result",
		}, []string{"result"}),
		closedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "appointments",
			Name:      "closed_total",
			Help:      "Appointments closed with payment recorded",
		}),
		canceledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "appointments",
			Name:      "canceled_total",
			Help:      "Appointments canceled",
		}),
		resolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salonbook",
			Subsystem: "availability",
			Name:      "resolutions_total",
			Help:      "Availability resolutions by schedule source",
		}, []string{"source"}),
		resolutionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "salonbook",
			Subsystem: "availability",
			Name:      "resolution_latency_seconds",
			Help:      "Latency of availability resolution",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.closedTotal, m.canceledTotal, m.resolutionsTotal, m.resolutionLatency)
	return m
}

// ObserveBooking counts one booking attempt with its result label
// (created, conflict, rejected, error).
func (m *BookingMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(result).Inc()
}

// ObserveClose counts one successful close.
func (m *BookingMetrics) ObserveClose() {
	if m == nil {
		return
	}
	m.closedTotal.Inc()
}

// ObserveCancel counts one successful cancel.
func (m *BookingMetrics) ObserveCancel() {
	if m == nil {
		return
	}
	m.canceledTotal.Inc()
}

// ObserveResolution counts one availability resolution and its latency.
func (m *BookingMetrics) ObserveResolution(source string, seconds float64) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(source).Inc()
	m.resolutionLatency.Observe(seconds)
}
