package appointments

import "errors"

var (
	// ErrMissingFields is returned when user_id, work_date or slot is absent.
	ErrMissingFields = errors.New("user_id, work_date and slot are required")

	// ErrBadDate is returned for dates not in YYYY-MM-DD form.
	ErrBadDate = errors.New("work_date must be YYYY-MM-DD")

	// ErrBadClock is returned for slot times not in HH:MM[:SS] form.
	ErrBadClock = errors.New("slot must be HH:MM or HH:MM:SS")

	// ErrBadAmount is returned when amount_paid is not a finite number > 0.
	ErrBadAmount = errors.New("amount_paid must be a number greater than zero")

	// ErrSlotTaken is returned when the (date, slot) pair is not bookable.
	ErrSlotTaken = errors.New("slot is not available")

	// ErrUserNotFound is returned when the booking user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrNotFound is returned when the appointment does not exist.
	ErrNotFound = errors.New("appointment not found")

	// ErrNotOpen is returned when a close or cancel hits a terminal state.
	ErrNotOpen = errors.New("appointment not found or already finalized")
)
