package appointments

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/velvetrow/salonbook/internal/dateutil"
	"github.com/velvetrow/salonbook/internal/observability/metrics"
	"github.com/velvetrow/salonbook/pkg/logging"
)

var appointmentsTracer = otel.Tracer("salonbook.internal.appointments")

// store is the repository surface the service drives; tests inject fakes.
type store interface {
	Insert(ctx context.Context, req *BookRequest) (*Appointment, error)
	Close(ctx context.Context, id int64, amountPaid float64) (*Appointment, error)
	Cancel(ctx context.Context, id int64) (*Appointment, error)
	UpdateNotes(ctx context.Context, id int64, notes *string) (*Appointment, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, date string) ([]Appointment, error)
	ListByUser(ctx context.Context, userID int64) ([]Appointment, error)
}

// slotChecker answers whether a slot resolves available on a date.
type slotChecker interface {
	SlotFree(ctx context.Context, date, t string) (bool, error)
}

// URLResolver turns a stored inspo image key into a client-facing URL.
type URLResolver interface {
	ResolveURL(key string) string
}

// Service coordinates bookings: availability precheck, persistence, and the
// lifecycle transitions that touch the monthly ledger.
type Service struct {
	repo    store
	slots   slotChecker
	inspo   URLResolver
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

// NewService constructs an appointments service. inspo and metrics may be nil.
func NewService(repo store, slots slotChecker, inspo URLResolver, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if slots == nil {
		panic("appointments: slot checker required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, slots: slots, inspo: inspo, metrics: m, logger: logger}
}

// Book validates the request, checks the slot resolves available, and inserts
// the appointment. The unique index on (work_date, slot) catches the race two
// concurrent bookings can still produce.
func (s *Service) Book(ctx context.Context, req *BookRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.book")
	defer span.End()

	if err := req.Validate(); err != nil {
		s.metrics.ObserveBooking("rejected")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("salonbook.work_date", req.WorkDate),
		attribute.String("salonbook.slot", req.Slot),
	)

	free, err := s.slots.SlotFree(ctx, req.WorkDate, req.Slot)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveBooking("error")
		return nil, err
	}
	if !free {
		s.metrics.ObserveBooking("conflict")
		return nil, ErrSlotTaken
	}

	a, err := s.repo.Insert(ctx, req)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveBooking("conflict")
		} else {
			s.metrics.ObserveBooking("error")
		}
		return nil, err
	}
	s.metrics.ObserveBooking("created")
	s.logger.Info("appointment booked",
		"appointment_id", a.ID, "user_id", a.UserID, "work_date", a.WorkDate, "slot", a.Slot)
	return s.withInspoURL(a), nil
}

// Close finalizes an open appointment with the amount paid. The status change
// and the ledger income land in one transaction.
func (s *Service) Close(ctx context.Context, id int64, req *CloseRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.close")
	defer span.End()
	span.SetAttributes(attribute.Int64("salonbook.appointment_id", id))

	if err := req.Validate(); err != nil {
		return nil, err
	}
	a, err := s.repo.Close(ctx, id, req.AmountPaid)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveClose()
	s.logger.Info("appointment closed",
		"appointment_id", a.ID, "work_date", a.WorkDate, "amount_paid", req.AmountPaid)
	return s.withInspoURL(a), nil
}

// Cancel releases an open appointment's slot.
func (s *Service) Cancel(ctx context.Context, id int64) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(attribute.Int64("salonbook.appointment_id", id))

	a, err := s.repo.Cancel(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveCancel()
	s.logger.Info("appointment canceled", "appointment_id", a.ID, "work_date", a.WorkDate)
	return s.withInspoURL(a), nil
}

// UpdateNotes edits an appointment's notes in any state.
func (s *Service) UpdateNotes(ctx context.Context, id int64, req *UpdateRequest) (*Appointment, error) {
	a, err := s.repo.UpdateNotes(ctx, id, req.Notes)
	if err != nil {
		return nil, err
	}
	return s.withInspoURL(a), nil
}

// Delete removes an appointment row entirely.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns appointments for admins, optionally filtered to one date.
func (s *Service) List(ctx context.Context, date string) ([]Appointment, error) {
	if date != "" && !dateutil.ValidDate(date) {
		return nil, ErrBadDate
	}
	out, err := s.repo.List(ctx, date)
	if err != nil {
		return nil, err
	}
	for i := range out {
		s.setInspoURL(&out[i])
	}
	if out == nil {
		out = []Appointment{}
	}
	return out, nil
}

// ListByUser returns one user's appointments, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Appointment, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		s.setInspoURL(&out[i])
	}
	if out == nil {
		out = []Appointment{}
	}
	return out, nil
}

func (s *Service) withInspoURL(a *Appointment) *Appointment {
	s.setInspoURL(a)
	return a
}

func (s *Service) setInspoURL(a *Appointment) {
	if s.inspo == nil || a.InspoImage == nil || *a.InspoImage == "" {
		return
	}
	u := s.inspo.ResolveURL(*a.InspoImage)
	a.InspoImageURL = &u
}
