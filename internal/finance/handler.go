package finance

import (
	"net/http"

	"github.com/velvetrow/salonbook/internal/http/httperr"
	"github.com/velvetrow/salonbook/pkg/logging"
)

// Handler serves the monthly finance summary.
type Handler struct {
	ledger *Ledger
	logger *logging.Logger
}

// NewHandler creates a finance handler.
func NewHandler(ledger *Ledger, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{ledger: ledger, logger: logger}
}

// List handles GET /api/admin/finance.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.ledger.List(r.Context())
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	if rows == nil {
		rows = []MonthlyFinance{}
	}
	httperr.JSON(w, http.StatusOK, rows)
}
