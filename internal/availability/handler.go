package availability

import (
	"errors"
	"net/http"
	"time"

	"github.com/velvetrow/salonbook/internal/dateutil"
	"github.com/velvetrow/salonbook/internal/http/httperr"
	"github.com/velvetrow/salonbook/internal/observability/metrics"
	"github.com/velvetrow/salonbook/pkg/logging"
)

// Handler serves GET /api/availability.
type Handler struct {
	resolver *Resolver
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewHandler creates the availability handler.
func NewHandler(resolver *Resolver, m *metrics.BookingMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{resolver: resolver, metrics: m, logger: logger}
}

// Get resolves the slot list for ?date=YYYY-MM-DD.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" || !dateutil.ValidDate(date) {
		httperr.Write(w, h.logger, httperr.Validation("date query parameter must be YYYY-MM-DD"))
		return
	}

	start := time.Now()
	day, err := h.resolver.Resolve(r.Context(), date)
	if err != nil {
		if errors.Is(err, ErrBadDate) {
			httperr.Write(w, h.logger, httperr.Validation(ErrBadDate.Error()))
			return
		}
		httperr.Write(w, h.logger, err)
		return
	}
	h.metrics.ObserveResolution(day.Source, time.Since(start).Seconds())

	httperr.JSON(w, http.StatusOK, day)
}
