package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/velvetrow/salonbook/internal/http/httperr"
	"github.com/velvetrow/salonbook/pkg/logging"
)

// Handler serves the admin scheduling CRUD: day templates, slots, week plans,
// week assignments and overrides.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a scheduling handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes mounts the schedule admin endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/templates", h.ListTemplates)
	r.Post("/templates", h.CreateTemplate)
	r.Get("/templates/{id}", h.GetTemplate)
	r.Delete("/templates/{id}", h.DeleteTemplate)
	r.Get("/templates/{id}/slots", h.ListSlots)
	r.Post("/slots", h.AddSlot)
	r.Delete("/templates/{id}/slots/{slotID}", h.DeleteSlot)

	r.Get("/week-plans", h.ListWeekPlans)
	r.Post("/week-plans", h.CreateWeekPlan)
	r.Get("/week-plans/{id}", h.GetWeekPlan)
	r.Put("/week-plans/{id}", h.UpdateWeekPlan)
	r.Delete("/week-plans/{id}", h.DeleteWeekPlan)

	r.Get("/week-assignments", h.ListAssignments)
	r.Post("/week-assignments", h.CreateAssignment)
	r.Delete("/week-assignments/{id}", h.DeleteAssignment)

	r.Get("/overrides", h.ListOverrides)
	r.Post("/overrides", h.UpsertOverride)
	r.Delete("/overrides/{date}", h.DeleteOverride)

	r.Get("/slot-overrides", h.ListSlotOverrides)
	r.Get("/slot-overrides/{date}", h.SlotOverridesForDate)
	r.Post("/slot-overrides", h.UpsertSlotOverride)
	r.Delete("/slot-overrides/{date}/{time}", h.DeleteSlotOverride)

	return r
}

// mapErr translates repository sentinels into HTTP-mapped errors.
func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrSlotFieldsRequired),
		errors.Is(err, ErrAssignmentFieldsRequired),
		errors.Is(err, ErrSlotOverrideFieldsRequired),
		errors.Is(err, ErrDateRequired),
		errors.Is(err, ErrBadDate),
		errors.Is(err, ErrBadClock),
		errors.Is(err, ErrBadRange),
		errors.Is(err, ErrBadDays):
		return httperr.Validation(err.Error()).Wrap(err)
	case errors.Is(err, ErrDuplicateName), errors.Is(err, ErrDuplicateSlot):
		return httperr.Conflict(err.Error()).Wrap(err)
	case errors.Is(err, ErrTemplateNotFound),
		errors.Is(err, ErrPlanNotFound),
		errors.Is(err, ErrNotFound):
		return httperr.NotFound(err.Error()).Wrap(err)
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

/* Day templates */

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.repo.ListTemplates(r.Context())
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	httperr.JSON(w, http.StatusOK, templates)
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	t, err := h.repo.GetTemplate(r.Context(), id)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, t)
}

func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	t, err := h.repo.CreateTemplate(r.Context(), &req)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	h.logger.Info("day template created", "id", t.ID, "name", t.Name)
	httperr.JSON(w, http.StatusCreated, t)
}

func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	if err := h.repo.DeleteTemplate(r.Context(), id); err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "day template deleted"})
}

/* Slots */

func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	slots, err := h.repo.SlotsForTemplate(r.Context(), id)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, slots)
}

func (h *Handler) AddSlot(w http.ResponseWriter, r *http.Request) {
	var req AddSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	s, err := h.repo.AddSlot(r.Context(), &req)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusCreated, s)
}

func (h *Handler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	templateID, err := idParam(r, "id")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	slotID, err := idParam(r, "slotID")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	if err := h.repo.DeleteSlot(r.Context(), templateID, slotID); err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "slot deleted"})
}

/* Week plans */

func (h *Handler) ListWeekPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.repo.ListWeekPlans(r.Context())
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	httperr.JSON(w, http.StatusOK, plans)
}

func (h *Handler) GetWeekPlan(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	p, err := h.repo.GetWeekPlan(r.Context(), id)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, p)
}

func (h *Handler) CreateWeekPlan(w http.ResponseWriter, r *http.Request) {
	var req WeekPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	p, err := h.repo.CreateWeekPlan(r.Context(), &req)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	h.logger.Info("week plan created", "id", p.ID, "name", p.Name)
	httperr.JSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateWeekPlan(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	var req WeekPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	if err := h.repo.UpdateWeekPlan(r.Context(), id, &req); err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "week plan updated"})
}

func (h *Handler) DeleteWeekPlan(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	if err := h.repo.DeleteWeekPlan(r.Context(), id); err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "week plan deleted"})
}

/* Week assignments */

func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.repo.ListAssignments(r.Context())
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	httperr.JSON(w, http.StatusOK, assignments)
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	a, err := h.repo.CreateAssignment(r.Context(), &req)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	h.logger.Info("week assignment created", "id", a.ID, "week_plan_id", a.WeekPlanID, "date_from", a.DateFrom)
	httperr.JSON(w, http.StatusCreated, a)
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	if err := h.repo.DeleteAssignment(r.Context(), id); err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "assignment deleted"})
}

/* Date overrides */

func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.repo.ListOverrides(r.Context())
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	httperr.JSON(w, http.StatusOK, overrides)
}

func (h *Handler) UpsertOverride(w http.ResponseWriter, r *http.Request) {
	var req UpsertOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	o, err := h.repo.UpsertOverride(r.Context(), &req)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	h.logger.Info("date override saved", "work_date", o.WorkDate, "is_open", o.IsOpen)
	httperr.JSON(w, http.StatusCreated, o)
}

func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if date == "" {
		httperr.Write(w, h.logger, httperr.Validation("missing date parameter"))
		return
	}
	if err := h.repo.DeleteOverride(r.Context(), date); err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "override deleted"})
}

/* Slot overrides */

func (h *Handler) ListSlotOverrides(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.repo.ListSlotOverrides(r.Context())
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	httperr.JSON(w, http.StatusOK, overrides)
}

func (h *Handler) SlotOverridesForDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	overrides, err := h.repo.SlotOverridesForDate(r.Context(), date)
	if err != nil {
		httperr.Write(w, h.logger, err)
		return
	}
	if len(overrides) == 0 {
		httperr.Write(w, h.logger, httperr.NotFound("no slot overrides for this date"))
		return
	}
	httperr.JSON(w, http.StatusOK, overrides)
}

func (h *Handler) UpsertSlotOverride(w http.ResponseWriter, r *http.Request) {
	var req UpsertSlotOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.Validation("invalid request body"))
		return
	}
	o, err := h.repo.UpsertSlotOverride(r.Context(), &req)
	if err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusCreated, o)
}

func (h *Handler) DeleteSlotOverride(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	startTime := chi.URLParam(r, "time")
	if err := h.repo.DeleteSlotOverride(r.Context(), date, startTime); err != nil {
		httperr.Write(w, h.logger, mapErr(err))
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"message": "slot override deleted"})
}
