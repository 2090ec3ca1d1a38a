package schedule

import (
	"strings"
	"time"

	"github.com/velvetrow/salonbook/internal/dateutil"
)

// DayTemplate is a named, reusable list of bookable time slots for one kind
// of working day ("Regular Day", "Short Friday").
type DayTemplate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	Slots     []Slot    `json:"slots,omitempty"`
}

// Slot is a single time-of-day entry inside a day template.
type Slot struct {
	ID         int64  `json:"id"`
	TemplateID int64  `json:"template_id"`
	StartTime  string `json:"start_time"`
}

// WeekPlan maps each weekday (0=Sunday..6=Saturday) to a day-template name.
// An empty entry means the salon is closed that weekday.
type WeekPlan struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Days      []string  `json:"days"`
	CreatedAt time.Time `json:"created_at"`
}

// WeekAssignment binds a week plan to a half-open effective date range.
// DateTo nil means the assignment is open-ended.
type WeekAssignment struct {
	ID         int64     `json:"id"`
	WeekPlanID int64     `json:"week_plan_id"`
	PlanName   string    `json:"plan_name,omitempty"`
	DateFrom   string    `json:"date_from"`
	DateTo     *string   `json:"date_to"`
	CreatedAt  time.Time `json:"created_at"`
}

// DateOverride is a per-date exception to week-plan resolution: fully closed,
// or forced onto a specific day template.
type DateOverride struct {
	WorkDate             string  `json:"work_date"`
	IsOpen               bool    `json:"is_open"`
	OverrideTemplateID   *int64  `json:"override_template_id"`
	OverrideTemplateName *string `json:"override_template_name,omitempty"`
	Notes                *string `json:"notes"`
}

// SlotOverride closes or re-opens a single slot on a specific date without
// touching the rest of the day's template.
type SlotOverride struct {
	WorkDate  string `json:"work_date"`
	StartTime string `json:"start_time"`
	IsOpen    bool   `json:"is_open"`
}

// CreateTemplateRequest is the body for creating a day template.
type CreateTemplateRequest struct {
	Name  string  `json:"name"`
	Notes *string `json:"notes"`
}

func (r *CreateTemplateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// AddSlotRequest is the body for adding a slot to a day template.
type AddSlotRequest struct {
	TemplateID int64  `json:"template_id"`
	StartTime  string `json:"start_time"`
}

func (r *AddSlotRequest) Validate() error {
	if r.TemplateID == 0 || r.StartTime == "" {
		return ErrSlotFieldsRequired
	}
	if !dateutil.ValidClock(r.StartTime) {
		return ErrBadClock
	}
	r.StartTime = dateutil.NormalizeClock(r.StartTime)
	return nil
}

// WeekPlanRequest is the body for creating or updating a week plan. Days must
// be exactly 7 entries; no coercion of other shapes is attempted.
type WeekPlanRequest struct {
	Name string   `json:"name"`
	Days []string `json:"days"`
}

func (r *WeekPlanRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrNameRequired
	}
	if len(r.Days) != 7 {
		return ErrBadDays
	}
	for i, d := range r.Days {
		r.Days[i] = strings.TrimSpace(d)
	}
	return nil
}

// CreateAssignmentRequest binds a week plan to an effective date range.
type CreateAssignmentRequest struct {
	WeekPlanID int64   `json:"week_plan_id"`
	DateFrom   string  `json:"date_from"`
	DateTo     *string `json:"date_to"`
}

func (r *CreateAssignmentRequest) Validate() error {
	if r.WeekPlanID == 0 || r.DateFrom == "" {
		return ErrAssignmentFieldsRequired
	}
	if !dateutil.ValidDate(r.DateFrom) {
		return ErrBadDate
	}
	if r.DateTo != nil {
		if !dateutil.ValidDate(*r.DateTo) {
			return ErrBadDate
		}
		if *r.DateTo < r.DateFrom {
			return ErrBadRange
		}
	}
	return nil
}

// UpsertOverrideRequest creates or updates the override for one date.
type UpsertOverrideRequest struct {
	WorkDate           string  `json:"work_date"`
	IsOpen             *bool   `json:"is_open"`
	OverrideTemplateID *int64  `json:"override_template_id"`
	Notes              *string `json:"notes"`
}

func (r *UpsertOverrideRequest) Validate() error {
	if r.WorkDate == "" {
		return ErrDateRequired
	}
	if !dateutil.ValidDate(r.WorkDate) {
		return ErrBadDate
	}
	if r.IsOpen == nil {
		open := true
		r.IsOpen = &open
	}
	return nil
}

// UpsertSlotOverrideRequest creates or updates a single-slot override.
type UpsertSlotOverrideRequest struct {
	WorkDate  string `json:"work_date"`
	StartTime string `json:"start_time"`
	IsOpen    *bool  `json:"is_open"`
}

func (r *UpsertSlotOverrideRequest) Validate() error {
	if r.WorkDate == "" || r.StartTime == "" || r.IsOpen == nil {
		return ErrSlotOverrideFieldsRequired
	}
	if !dateutil.ValidDate(r.WorkDate) {
		return ErrBadDate
	}
	if !dateutil.ValidClock(r.StartTime) {
		return ErrBadClock
	}
	r.StartTime = dateutil.NormalizeClock(r.StartTime)
	return nil
}
