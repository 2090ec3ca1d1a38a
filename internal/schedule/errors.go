package schedule

import "errors"

var (
	// ErrNameRequired is returned when a template or plan name is blank.
	ErrNameRequired = errors.New("name is required")

	// ErrSlotFieldsRequired is returned when template_id or start_time is missing.
	ErrSlotFieldsRequired = errors.New("template_id and start_time are required")

	// ErrAssignmentFieldsRequired is returned when week_plan_id or date_from is missing.
	ErrAssignmentFieldsRequired = errors.New("week_plan_id and date_from are required")

	// ErrSlotOverrideFieldsRequired is returned when a slot override is incomplete.
	ErrSlotOverrideFieldsRequired = errors.New("work_date, start_time and is_open are required")

	// ErrDateRequired is returned when work_date is missing.
	ErrDateRequired = errors.New("work_date is required")

	// ErrBadDate is returned for dates not in YYYY-MM-DD form.
	ErrBadDate = errors.New("date must be YYYY-MM-DD")

	// ErrBadClock is returned for times not in zero-padded HH:MM[:SS] form.
	ErrBadClock = errors.New("time must be HH:MM or HH:MM:SS")

	// ErrBadRange is returned when date_to precedes date_from.
	ErrBadRange = errors.New("date_to must not precede date_from")

	// ErrBadDays is returned when a week plan is not exactly 7 entries.
	ErrBadDays = errors.New("days must be an array of exactly 7 entries")

	// ErrDuplicateName is returned on unique-name violations.
	ErrDuplicateName = errors.New("name already exists")

	// ErrDuplicateSlot is returned when a slot time already exists in a template.
	ErrDuplicateSlot = errors.New("a slot at this time already exists in this template")

	// ErrTemplateNotFound is returned when the referenced day template is absent.
	ErrTemplateNotFound = errors.New("day template not found")

	// ErrPlanNotFound is returned when the referenced week plan is absent.
	ErrPlanNotFound = errors.New("week plan not found")

	// ErrNotFound is returned for absent rows of any schedule entity.
	ErrNotFound = errors.New("not found")
)
