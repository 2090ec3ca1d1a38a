package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/velvetrow/salonbook/internal/http/httperr"
	"github.com/velvetrow/salonbook/pkg/logging"
)

// Handler serves booking, lifecycle and listing endpoints.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the appointment endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Book)
	r.Get("/", h.List)
	r.Get("/user/{userID}", h.ListByUser)
	r.Patch("/{id}", h.UpdateNotes)
	r.Patch("/{id}/close", h.Close)
	r.Patch("/{id}/cancel", h.Cancel)
	r.Delete("/{id}", h.Delete)

	return r
}

// mapErr translates service sentinels into HTTP-mapped errors.
func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrBadDate),
		errors.Is(err, ErrBadClock),
		errors.Is(err, ErrBadAmount):
		return httperr.Validation(err.Error()).Wrap(err)
	case errors.Is(err, ErrSlotTaken):
		return httperr.Conflict(err.Error()).Wrap(err)
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrNotFound):
		return httperr.NotFound(err.Error()).Wrap(err)
	case errors.Is(err, ErrNotOpen):
		return httperr.State(err.Error()).Wrap(err)
	}
	return err
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, httperr.Validation("invalid " + name)
	}
	return id, nil
}

func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	a, err := h.svc.Book(r.Context(), &req)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusCreated, a)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	var req CloseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	a, err := h.svc.Close(r.Context(), id, &req)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, a)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	a, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, a)
}

func (h *Handler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	a, err := h.svc.UpdateNotes(r.Context(), id, &req)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, a)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "appointment deleted"})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, out)
}

func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	out, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, out)
}
