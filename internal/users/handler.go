package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/velvetrow/salonbook/internal/http/httperr"
	"github.com/velvetrow/salonbook/pkg/logging"
)

// Handler serves account endpoints.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a users handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes mounts the account endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)

	return r
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrBadDate),
		errors.Is(err, ErrBadRole):
		return httperr.Validation(err.Error()).Wrap(err)
	case errors.Is(err, ErrDuplicate):
		return httperr.Conflict(err.Error()).Wrap(err)
	case errors.Is(err, ErrNotFound):
		return httperr.NotFound(err.Error()).Wrap(err)
	}
	return err
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httperr.Validation("invalid id")
	}
	return id, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	if list == nil {
		list = []User{}
	}
	httperr.JSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	u, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, u)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	u, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	h.logger.Info("user created", "id", u.ID, "username", u.Username, "role", u.Role)
	httperr.JSON(w, http.StatusCreated, u)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
