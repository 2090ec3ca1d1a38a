package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveBookingCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveBooking("created")
	m.ObserveBooking("created")
	m.ObserveBooking("conflict")

	if got := testutil.ToFloat64(m.bookingsTotal.WithLabelValues("created")); got != 2 {
		t.Errorf("created count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.bookingsTotal.WithLabelValues("conflict")); got != 1 {
		t.Errorf("conflict count = %v, want 1", got)
	}
}

func TestObserveResolutionBySource(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveResolution("week-plan", 0.002)
	m.ObserveResolution("closed-by-override", 0.001)
	m.ObserveResolution("week-plan", 0.003)

	if got := testutil.ToFloat64(m.resolutionsTotal.WithLabelValues("week-plan")); got != 2 {
		t.Errorf("week-plan count = %v, want 2", got)
	}
}

func TestNilReceiverIsNoop(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooking("created")
	m.ObserveClose()
	m.ObserveCancel()
	m.ObserveResolution("no-plan", 0)
}
