package reports

import (
	"errors"
	"net/http"

	"github.com/velvetrow/salonbook/internal/http/httperr"
	"github.com/velvetrow/salonbook/pkg/logging"
)

// Handler serves the admin dashboard report.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a reports handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Get returns the dashboard aggregates for ?from=YYYY-MM&to=YYYY-MM,
// defaulting to the last twelve months.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.repo.Build(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		if errors.Is(err, ErrBadMonth) {
			err = httperr.Validation(err.Error()).Wrap(err)
		}
		httperr.Write(w, h.logger, err)
		return
	}
	httperr.JSON(w, http.StatusOK, report)
}
