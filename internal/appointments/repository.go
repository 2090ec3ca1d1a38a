package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velvetrow/salonbook/internal/availability"
	"github.com/velvetrow/salonbook/internal/dateutil"
	"github.com/velvetrow/salonbook/internal/finance"
	"github.com/velvetrow/salonbook/internal/storage"
)

// db is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it.
type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository persists appointments and drives their lifecycle transitions.
// Slot uniqueness is enforced by a partial unique index on (work_date, slot)
// over non-canceled rows; the insert surfaces it as ErrSlotTaken.
type Repository struct {
	db db
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for tests.
func NewRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

const appointmentColumns = `id, user_id, to_char(work_date, 'YYYY-MM-DD'), slot::text,
	status, notes, amount_paid, inspo_image, created_at, closed_at`

func scanAppointment(row pgx.Row, a *Appointment) error {
	return row.Scan(&a.ID, &a.UserID, &a.WorkDate, &a.Slot,
		&a.Status, &a.Notes, &a.AmountPaid, &a.InspoImage, &a.CreatedAt, &a.ClosedAt)
}

// Insert books a slot in the open state. Two concurrent inserts for the same
// (date, slot) race on the unique index; exactly one wins.
func (r *Repository) Insert(ctx context.Context, req *BookRequest) (*Appointment, error) {
	a := Appointment{
		UserID:     req.UserID,
		WorkDate:   req.WorkDate,
		Slot:       req.Slot,
		Status:     StatusOpen,
		Notes:      req.Notes,
		InspoImage: req.InspoImage,
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO appointments (user_id, work_date, slot, notes, inspo_image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		req.UserID, req.WorkDate, req.Slot, req.Notes, req.InspoImage).Scan(&a.ID, &a.CreatedAt)
	if storage.UniqueViolation(err) {
		return nil, ErrSlotTaken
	}
	if storage.ForeignKeyViolation(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: insert: %w", err)
	}
	return &a, nil
}

// Close finalizes an open appointment and books the income into the monthly
// ledger for the appointment's work_date month. Both writes happen in one
// transaction; a ledger failure rolls the status change back.
func (r *Repository) Close(ctx context.Context, id int64, amountPaid float64) (*Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin close: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var a Appointment
	err = scanAppointment(tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'closed', amount_paid = $2, closed_at = now()
		WHERE id = $1 AND status = 'open'
		RETURNING `+appointmentColumns, id, amountPaid), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotOpen
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: close: %w", err)
	}

	if err := finance.AddIncome(ctx, tx, dateutil.MonthKey(a.WorkDate), amountPaid); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("appointments: commit close: %w", err)
	}
	return &a, nil
}

// Cancel moves an open appointment to canceled. No financial side effect.
func (r *Repository) Cancel(ctx context.Context, id int64) (*Appointment, error) {
	var a Appointment
	err := scanAppointment(r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'canceled'
		WHERE id = $1 AND status = 'open'
		RETURNING `+appointmentColumns, id), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotOpen
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: cancel: %w", err)
	}
	return &a, nil
}

// UpdateNotes edits the notes of an appointment in any state.
func (r *Repository) UpdateNotes(ctx context.Context, id int64, notes *string) (*Appointment, error) {
	var a Appointment
	err := scanAppointment(r.db.QueryRow(ctx, `
		UPDATE appointments
		SET notes = COALESCE($2, notes)
		WHERE id = $1
		RETURNING `+appointmentColumns, id, notes), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: update notes: %w", err)
	}
	return &a, nil
}

// Delete removes an appointment row entirely (admin cleanup).
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns appointments with user details, optionally filtered by date,
// ordered by slot.
func (r *Repository) List(ctx context.Context, date string) ([]Appointment, error) {
	query := `
		SELECT a.id, a.user_id, u.username, u.phone_raw, to_char(a.work_date, 'YYYY-MM-DD'),
		       a.slot::text, a.status, a.notes, a.amount_paid, a.inspo_image, a.created_at, a.closed_at
		FROM appointments a
		JOIN users u ON u.id = a.user_id`
	var args []any
	if date != "" {
		query += ` WHERE a.work_date = $1`
		args = append(args, date)
	}
	query += ` ORDER BY a.work_date DESC, a.slot`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Username, &a.Phone, &a.WorkDate,
			&a.Slot, &a.Status, &a.Notes, &a.AmountPaid, &a.InspoImage, &a.CreatedAt, &a.ClosedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListByUser returns a user's appointments, most recent work date first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1
		ORDER BY work_date DESC, slot`, userID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by user: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := scanAppointment(rows, &a); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// BookedSlots returns the occupied slots for a date for the availability
// resolver. Canceled appointments do not occupy their slot.
func (r *Repository) BookedSlots(ctx context.Context, date string) ([]availability.BookedSlot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.slot::text, a.user_id, u.username
		FROM appointments a
		JOIN users u ON u.id = a.user_id
		WHERE a.work_date = $1 AND a.status <> 'canceled'`, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: booked slots: %w", err)
	}
	defer rows.Close()

	var out []availability.BookedSlot
	for rows.Next() {
		var b availability.BookedSlot
		if err := rows.Scan(&b.Time, &b.UserID, &b.UserName); err != nil {
			return nil, fmt.Errorf("appointments: scan booked slot: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
