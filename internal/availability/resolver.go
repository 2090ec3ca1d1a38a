// Package availability computes the open appointment slots for a calendar
// date by layering date overrides, week assignments and day templates over
// the booked appointments.
package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/velvetrow/salonbook/internal/dateutil"
	"github.com/velvetrow/salonbook/internal/schedule"
)

// Resolution sources, from strongest precedence tier down.
const (
	SourceClosedByOverride     = "closed-by-override"
	SourceOverrideTemplate     = "override-template"
	SourceWeekPlan             = "week-plan"
	SourceNoPlan               = "no-plan"
	SourceNoTemplateForWeekday = "no-template-for-weekday"
	SourceTemplateNotFound     = "template-not-found"
)

// ScheduleStore is the slice of the schedule repository the resolver reads.
type ScheduleStore interface {
	OverrideForDate(ctx context.Context, date string) (*schedule.DateOverride, error)
	AssignmentForDate(ctx context.Context, date string) (*schedule.WeekAssignment, error)
	GetWeekPlan(ctx context.Context, id int64) (*schedule.WeekPlan, error)
	TemplateByName(ctx context.Context, name string) (*schedule.DayTemplate, error)
	GetTemplate(ctx context.Context, id int64) (*schedule.DayTemplate, error)
	SlotTimes(ctx context.Context, templateID int64) ([]string, error)
	SlotOverridesForDate(ctx context.Context, date string) ([]schedule.SlotOverride, error)
}

// BookedSlot is a non-canceled appointment occupying a time on a date.
type BookedSlot struct {
	Time     string
	UserID   int64
	UserName string
}

// BookingStore supplies the occupied slots for a date.
type BookingStore interface {
	BookedSlots(ctx context.Context, date string) ([]BookedSlot, error)
}

// SlotStatus is one entry of the resolved day: a bookable time, whether it is
// free, and who holds it otherwise.
type SlotStatus struct {
	Time         string  `json:"time"`
	Available    bool    `json:"available"`
	OccupantID   *int64  `json:"occupant_id"`
	OccupantName *string `json:"occupant_name"`
}

// DaySchedule is the resolved slot list for one date plus the precedence tier
// that produced it.
type DaySchedule struct {
	Date   string       `json:"date"`
	Source string       `json:"schedule_source"`
	Slots  []SlotStatus `json:"slots"`
}

// Resolver layers the schedule stores into per-date availability.
type Resolver struct {
	schedules ScheduleStore
	bookings  BookingStore
}

// NewResolver creates a resolver over the schedule and booking stores.
func NewResolver(schedules ScheduleStore, bookings BookingStore) *Resolver {
	if schedules == nil || bookings == nil {
		panic("availability: schedule and booking stores required")
	}
	return &Resolver{schedules: schedules, bookings: bookings}
}

// Resolve computes the slot list for date (YYYY-MM-DD) in strict precedence
// order: date override, then week assignment + week plan, then nothing.
func (r *Resolver) Resolve(ctx context.Context, date string) (*DaySchedule, error) {
	day, err := dateutil.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("availability: %w: %q", ErrBadDate, date)
	}

	base, source, err := r.baseSlots(ctx, date, dateutil.Weekday(day))
	if err != nil {
		return nil, err
	}

	out := &DaySchedule{Date: date, Source: source, Slots: []SlotStatus{}}
	if base == nil {
		// Closed tiers return an empty list without consulting bookings.
		return out, nil
	}

	booked, err := r.bookings.BookedSlots(ctx, date)
	if err != nil {
		return nil, err
	}
	occupied := make(map[string]BookedSlot, len(booked))
	for _, b := range booked {
		occupied[b.Time] = b
	}

	for _, t := range base {
		if b, ok := occupied[t]; ok {
			out.Slots = append(out.Slots, taken(b))
			delete(occupied, t)
			continue
		}
		out.Slots = append(out.Slots, SlotStatus{Time: t, Available: true})
	}
	// Bookings outside the template (legacy or manually added) still show up,
	// marked unavailable.
	for _, b := range occupied {
		out.Slots = append(out.Slots, taken(b))
	}

	if err := r.applySlotOverrides(ctx, date, out); err != nil {
		return nil, err
	}

	sort.Slice(out.Slots, func(i, j int) bool {
		return out.Slots[i].Time < out.Slots[j].Time
	})
	return out, nil
}

// baseSlots walks the precedence tiers and returns the base slot set, or nil
// when the date resolves closed (with the telling source).
func (r *Resolver) baseSlots(ctx context.Context, date string, weekday int) ([]string, string, error) {
	override, err := r.schedules.OverrideForDate(ctx, date)
	if err != nil {
		return nil, "", err
	}
	if override != nil {
		if !override.IsOpen {
			return nil, SourceClosedByOverride, nil
		}
		if override.OverrideTemplateID != nil {
			tpl, err := r.schedules.GetTemplate(ctx, *override.OverrideTemplateID)
			if err != nil {
				if errors.Is(err, schedule.ErrTemplateNotFound) {
					return nil, SourceTemplateNotFound, nil
				}
				return nil, "", err
			}
			times, err := r.schedules.SlotTimes(ctx, tpl.ID)
			if err != nil {
				return nil, "", err
			}
			return times, SourceOverrideTemplate, nil
		}
		// is_open with no template: explicitly open, resolved as a normal day.
	}

	assignment, err := r.schedules.AssignmentForDate(ctx, date)
	if err != nil {
		return nil, "", err
	}
	if assignment == nil {
		return nil, SourceNoPlan, nil
	}

	plan, err := r.schedules.GetWeekPlan(ctx, assignment.WeekPlanID)
	if err != nil {
		if errors.Is(err, schedule.ErrPlanNotFound) {
			return nil, SourceNoPlan, nil
		}
		return nil, "", err
	}
	if weekday >= len(plan.Days) || plan.Days[weekday] == "" {
		return nil, SourceNoTemplateForWeekday, nil
	}

	tpl, err := r.schedules.TemplateByName(ctx, plan.Days[weekday])
	if err != nil {
		if errors.Is(err, schedule.ErrTemplateNotFound) {
			return nil, SourceTemplateNotFound, nil
		}
		return nil, "", err
	}
	times, err := r.schedules.SlotTimes(ctx, tpl.ID)
	if err != nil {
		return nil, "", err
	}
	return times, SourceWeekPlan, nil
}

// applySlotOverrides folds per-slot exceptions into the merged list: a closed
// slot loses its availability, an opened slot is added when absent. Occupied
// slots are never freed.
func (r *Resolver) applySlotOverrides(ctx context.Context, date string, day *DaySchedule) error {
	overrides, err := r.schedules.SlotOverridesForDate(ctx, date)
	if err != nil {
		return err
	}
	for _, o := range overrides {
		found := false
		for i := range day.Slots {
			if day.Slots[i].Time != o.StartTime {
				continue
			}
			found = true
			if !o.IsOpen && day.Slots[i].OccupantID == nil {
				day.Slots[i].Available = false
			}
			break
		}
		if !found && o.IsOpen {
			day.Slots = append(day.Slots, SlotStatus{Time: o.StartTime, Available: true})
		}
	}
	return nil
}

func taken(b BookedSlot) SlotStatus {
	id := b.UserID
	name := b.UserName
	return SlotStatus{Time: b.Time, Available: false, OccupantID: &id, OccupantName: &name}
}

// SlotFree reports whether time t resolves available on date. Used as the
// booking precheck; the storage uniqueness constraint remains the backstop.
func (r *Resolver) SlotFree(ctx context.Context, date, t string) (bool, error) {
	day, err := r.Resolve(ctx, date)
	if err != nil {
		return false, err
	}
	for _, s := range day.Slots {
		if s.Time == t {
			return s.Available, nil
		}
	}
	return false, nil
}
