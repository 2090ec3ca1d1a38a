package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velvetrow/salonbook/internal/storage"
)

// db is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it.
type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists day templates, week plans, assignments and overrides.
type Repository struct {
	db db
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("schedule: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for tests.
func NewRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

/* Day templates */

// ListTemplates returns all day templates, newest first.
func (r *Repository) ListTemplates(ctx context.Context) ([]DayTemplate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, notes, created_at
		FROM day_templates
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("schedule: list templates: %w", err)
	}
	defer rows.Close()

	var out []DayTemplate
	for rows.Next() {
		var t DayTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Notes, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("schedule: scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTemplate returns one template with its slots.
func (r *Repository) GetTemplate(ctx context.Context, id int64) (*DayTemplate, error) {
	var t DayTemplate
	err := r.db.QueryRow(ctx, `
		SELECT id, name, notes, created_at
		FROM day_templates
		WHERE id = $1`, id).Scan(&t.ID, &t.Name, &t.Notes, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: load template: %w", err)
	}

	slots, err := r.SlotsForTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Slots = slots
	return &t, nil
}

// TemplateByName resolves a template by its unique name.
func (r *Repository) TemplateByName(ctx context.Context, name string) (*DayTemplate, error) {
	var t DayTemplate
	err := r.db.QueryRow(ctx, `
		SELECT id, name, notes, created_at
		FROM day_templates
		WHERE name = $1`, name).Scan(&t.ID, &t.Name, &t.Notes, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: load template by name: %w", err)
	}
	return &t, nil
}

// CreateTemplate inserts a new day template.
func (r *Repository) CreateTemplate(ctx context.Context, req *CreateTemplateRequest) (*DayTemplate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	t := DayTemplate{Name: req.Name, Notes: req.Notes}
	err := r.db.QueryRow(ctx, `
		INSERT INTO day_templates (name, notes)
		VALUES ($1, $2)
		RETURNING id, created_at`, req.Name, req.Notes).Scan(&t.ID, &t.CreatedAt)
	if storage.UniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: insert template: %w", err)
	}
	return &t, nil
}

// DeleteTemplate removes a template; its slots cascade.
func (r *Repository) DeleteTemplate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM day_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("schedule: delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

/* Template slots */

// SlotsForTemplate returns a template's slots ordered by start time.
func (r *Repository) SlotsForTemplate(ctx context.Context, templateID int64) ([]Slot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, template_id, start_time::text
		FROM template_slots
		WHERE template_id = $1
		ORDER BY start_time`, templateID)
	if err != nil {
		return nil, fmt.Errorf("schedule: list slots: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.TemplateID, &s.StartTime); err != nil {
			return nil, fmt.Errorf("schedule: scan slot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SlotTimes returns just the start times of a template, sorted ascending.
func (r *Repository) SlotTimes(ctx context.Context, templateID int64) ([]string, error) {
	slots, err := r.SlotsForTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	times := make([]string, len(slots))
	for i, s := range slots {
		times[i] = s.StartTime
	}
	return times, nil
}

// AddSlot adds a time slot to a template.
func (r *Repository) AddSlot(ctx context.Context, req *AddSlotRequest) (*Slot, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s := Slot{TemplateID: req.TemplateID, StartTime: req.StartTime}
	err := r.db.QueryRow(ctx, `
		INSERT INTO template_slots (template_id, start_time)
		VALUES ($1, $2)
		RETURNING id`, req.TemplateID, req.StartTime).Scan(&s.ID)
	if storage.UniqueViolation(err) {
		return nil, ErrDuplicateSlot
	}
	if storage.ForeignKeyViolation(err) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: insert slot: %w", err)
	}
	return &s, nil
}

// DeleteSlot removes one slot from a template.
func (r *Repository) DeleteSlot(ctx context.Context, templateID, slotID int64) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM template_slots
		WHERE template_id = $1 AND id = $2`, templateID, slotID)
	if err != nil {
		return fmt.Errorf("schedule: delete slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

/* Week plans */

// ListWeekPlans returns all week plans, newest first.
func (r *Repository) ListWeekPlans(ctx context.Context) ([]WeekPlan, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, days, created_at
		FROM week_plans
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("schedule: list week plans: %w", err)
	}
	defer rows.Close()

	var out []WeekPlan
	for rows.Next() {
		p, err := scanWeekPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetWeekPlan returns one week plan by id.
func (r *Repository) GetWeekPlan(ctx context.Context, id int64) (*WeekPlan, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, days, created_at
		FROM week_plans
		WHERE id = $1`, id)
	p, err := scanWeekPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	return p, err
}

// CreateWeekPlan inserts a validated 7-entry week plan.
func (r *Repository) CreateWeekPlan(ctx context.Context, req *WeekPlanRequest) (*WeekPlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	days, err := json.Marshal(req.Days)
	if err != nil {
		return nil, fmt.Errorf("schedule: marshal days: %w", err)
	}
	p := WeekPlan{Name: req.Name, Days: req.Days}
	err = r.db.QueryRow(ctx, `
		INSERT INTO week_plans (name, days)
		VALUES ($1, $2)
		RETURNING id, created_at`, req.Name, days).Scan(&p.ID, &p.CreatedAt)
	if storage.UniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: insert week plan: %w", err)
	}
	return &p, nil
}

// UpdateWeekPlan replaces the name and days of a week plan.
func (r *Repository) UpdateWeekPlan(ctx context.Context, id int64, req *WeekPlanRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	days, err := json.Marshal(req.Days)
	if err != nil {
		return fmt.Errorf("schedule: marshal days: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE week_plans
		SET name = $1, days = $2
		WHERE id = $3`, req.Name, days, id)
	if storage.UniqueViolation(err) {
		return ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("schedule: update week plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// DeleteWeekPlan removes a week plan; its assignments cascade.
func (r *Repository) DeleteWeekPlan(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM week_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("schedule: delete week plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func scanWeekPlan(row pgx.Row) (*WeekPlan, error) {
	var p WeekPlan
	var days []byte
	if err := row.Scan(&p.ID, &p.Name, &days, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("schedule: scan week plan: %w", err)
	}
	if err := json.Unmarshal(days, &p.Days); err != nil {
		return nil, fmt.Errorf("schedule: decode days: %w", err)
	}
	return &p, nil
}

/* Week assignments */

// ListAssignments returns all assignments with plan names, newest range first.
func (r *Repository) ListAssignments(ctx context.Context) ([]WeekAssignment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT wa.id, wa.week_plan_id, wp.name, to_char(wa.date_from, 'YYYY-MM-DD'),
		       to_char(wa.date_to, 'YYYY-MM-DD'), wa.created_at
		FROM week_assignments wa
		JOIN week_plans wp ON wp.id = wa.week_plan_id
		ORDER BY wa.date_from DESC`)
	if err != nil {
		return nil, fmt.Errorf("schedule: list assignments: %w", err)
	}
	defer rows.Close()

	var out []WeekAssignment
	for rows.Next() {
		var a WeekAssignment
		if err := rows.Scan(&a.ID, &a.WeekPlanID, &a.PlanName, &a.DateFrom, &a.DateTo, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("schedule: scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAssignment binds a week plan to a date range. Ranges are allowed to
// overlap; resolution picks the greatest date_from at or before the target.
func (r *Repository) CreateAssignment(ctx context.Context, req *CreateAssignmentRequest) (*WeekAssignment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	a := WeekAssignment{WeekPlanID: req.WeekPlanID, DateFrom: req.DateFrom, DateTo: req.DateTo}
	err := r.db.QueryRow(ctx, `
		INSERT INTO week_assignments (week_plan_id, date_from, date_to)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`, req.WeekPlanID, req.DateFrom, req.DateTo).Scan(&a.ID, &a.CreatedAt)
	if storage.ForeignKeyViolation(err) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: insert assignment: %w", err)
	}
	return &a, nil
}

// DeleteAssignment removes one week assignment.
func (r *Repository) DeleteAssignment(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM week_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("schedule: delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignmentForDate returns the effective assignment for a date: the one with
// the greatest date_from at or before the date whose range still covers it.
// Ties on date_from go to the most recently created row. Returns nil when no
// assignment covers the date.
func (r *Repository) AssignmentForDate(ctx context.Context, date string) (*WeekAssignment, error) {
	var a WeekAssignment
	err := r.db.QueryRow(ctx, `
		SELECT id, week_plan_id, to_char(date_from, 'YYYY-MM-DD'),
		       to_char(date_to, 'YYYY-MM-DD'), created_at
		FROM week_assignments
		WHERE date_from <= $1 AND (date_to IS NULL OR date_to >= $1)
		ORDER BY date_from DESC, id DESC
		LIMIT 1`, date).Scan(&a.ID, &a.WeekPlanID, &a.DateFrom, &a.DateTo, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: assignment for date: %w", err)
	}
	return &a, nil
}

/* Date overrides */

// ListOverrides returns all date overrides with the forced template name.
func (r *Repository) ListOverrides(ctx context.Context) ([]DateOverride, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(d.work_date, 'YYYY-MM-DD'), d.is_open, d.override_template_id, t.name, d.notes
		FROM date_overrides d
		LEFT JOIN day_templates t ON t.id = d.override_template_id
		ORDER BY d.work_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("schedule: list overrides: %w", err)
	}
	defer rows.Close()

	var out []DateOverride
	for rows.Next() {
		var o DateOverride
		if err := rows.Scan(&o.WorkDate, &o.IsOpen, &o.OverrideTemplateID, &o.OverrideTemplateName, &o.Notes); err != nil {
			return nil, fmt.Errorf("schedule: scan override: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpsertOverride creates or replaces the override for one date.
func (r *Repository) UpsertOverride(ctx context.Context, req *UpsertOverrideRequest) (*DateOverride, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	o := DateOverride{
		WorkDate:           req.WorkDate,
		IsOpen:             *req.IsOpen,
		OverrideTemplateID: req.OverrideTemplateID,
		Notes:              req.Notes,
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO date_overrides (work_date, is_open, override_template_id, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (work_date) DO UPDATE SET
			is_open = excluded.is_open,
			override_template_id = excluded.override_template_id,
			notes = excluded.notes`,
		req.WorkDate, *req.IsOpen, req.OverrideTemplateID, req.Notes)
	if storage.ForeignKeyViolation(err) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: upsert override: %w", err)
	}
	return &o, nil
}

// DeleteOverride removes the override for a date.
func (r *Repository) DeleteOverride(ctx context.Context, date string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM date_overrides WHERE work_date = $1`, date)
	if err != nil {
		return fmt.Errorf("schedule: delete override: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// OverrideForDate returns the override for a date, or nil when none exists.
func (r *Repository) OverrideForDate(ctx context.Context, date string) (*DateOverride, error) {
	var o DateOverride
	err := r.db.QueryRow(ctx, `
		SELECT to_char(work_date, 'YYYY-MM-DD'), is_open, override_template_id, notes
		FROM date_overrides
		WHERE work_date = $1`, date).Scan(&o.WorkDate, &o.IsOpen, &o.OverrideTemplateID, &o.Notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: override for date: %w", err)
	}
	return &o, nil
}

/* Slot overrides */

// ListSlotOverrides returns all per-slot overrides, newest date first.
func (r *Repository) ListSlotOverrides(ctx context.Context) ([]SlotOverride, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(work_date, 'YYYY-MM-DD'), start_time::text, is_open
		FROM slot_overrides
		ORDER BY work_date DESC, start_time`)
	if err != nil {
		return nil, fmt.Errorf("schedule: list slot overrides: %w", err)
	}
	defer rows.Close()
	return collectSlotOverrides(rows)
}

// SlotOverridesForDate returns the per-slot overrides for one date.
func (r *Repository) SlotOverridesForDate(ctx context.Context, date string) ([]SlotOverride, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(work_date, 'YYYY-MM-DD'), start_time::text, is_open
		FROM slot_overrides
		WHERE work_date = $1
		ORDER BY start_time`, date)
	if err != nil {
		return nil, fmt.Errorf("schedule: slot overrides for date: %w", err)
	}
	defer rows.Close()
	return collectSlotOverrides(rows)
}

// UpsertSlotOverride creates or replaces one (date, time) slot override.
func (r *Repository) UpsertSlotOverride(ctx context.Context, req *UpsertSlotOverrideRequest) (*SlotOverride, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	o := SlotOverride{WorkDate: req.WorkDate, StartTime: req.StartTime, IsOpen: *req.IsOpen}
	_, err := r.db.Exec(ctx, `
		INSERT INTO slot_overrides (work_date, start_time, is_open)
		VALUES ($1, $2, $3)
		ON CONFLICT (work_date, start_time) DO UPDATE SET is_open = excluded.is_open`,
		req.WorkDate, req.StartTime, *req.IsOpen)
	if err != nil {
		return nil, fmt.Errorf("schedule: upsert slot override: %w", err)
	}
	return &o, nil
}

// DeleteSlotOverride removes one (date, time) slot override.
func (r *Repository) DeleteSlotOverride(ctx context.Context, date, startTime string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM slot_overrides
		WHERE work_date = $1 AND start_time = $2`, date, startTime)
	if err != nil {
		return fmt.Errorf("schedule: delete slot override: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectSlotOverrides(rows pgx.Rows) ([]SlotOverride, error) {
	var out []SlotOverride
	for rows.Next() {
		var o SlotOverride
		if err := rows.Scan(&o.WorkDate, &o.StartTime, &o.IsOpen); err != nil {
			return nil, fmt.Errorf("schedule: scan slot override: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
