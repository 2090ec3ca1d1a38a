package appointments

import (
	"math"
	"time"

	"github.com/velvetrow/salonbook/internal/dateutil"
)

// Appointment lifecycle states. Both closed and canceled are terminal.
const (
	StatusOpen     = "open"
	StatusClosed   = "closed"
	StatusCanceled = "canceled"
)

// Appointment is one booked slot. Username/Phone are joined from the users
// table on admin reads; InspoImageURL is the resolved absolute URL for the
// stored inspo image key.
type Appointment struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	Username      string     `json:"username,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	WorkDate      string     `json:"work_date"`
	Slot          string     `json:"slot"`
	Status        string     `json:"status"`
	Notes         *string    `json:"notes"`
	AmountPaid    *float64   `json:"amount_paid"`
	InspoImage    *string    `json:"inspo_image"`
	InspoImageURL *string    `json:"inspo_image_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ClosedAt      *time.Time `json:"closed_at"`
}

// BookRequest is the body for creating an appointment.
type BookRequest struct {
	UserID     int64   `json:"user_id"`
	WorkDate   string  `json:"work_date"`
	Slot       string  `json:"slot"`
	Notes      *string `json:"notes"`
	InspoImage *string `json:"inspo_image"`
}

func (r *BookRequest) Validate() error {
	if r.UserID <= 0 || r.WorkDate == "" || r.Slot == "" {
		return ErrMissingFields
	}
	if !dateutil.ValidDate(r.WorkDate) {
		return ErrBadDate
	}
	if !dateutil.ValidClock(r.Slot) {
		return ErrBadClock
	}
	r.Slot = dateutil.NormalizeClock(r.Slot)
	return nil
}

// CloseRequest is the body for closing an appointment with payment.
type CloseRequest struct {
	AmountPaid float64 `json:"amount_paid"`
}

func (r *CloseRequest) Validate() error {
	if r.AmountPaid <= 0 || math.IsNaN(r.AmountPaid) || math.IsInf(r.AmountPaid, 0) {
		return ErrBadAmount
	}
	return nil
}

// UpdateRequest is the body for editing an appointment's notes.
type UpdateRequest struct {
	Notes *string `json:"notes"`
}
