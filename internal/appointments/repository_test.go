package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func appointmentRows(id int64, status string, amountPaid *float64, closedAt *time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "work_date", "slot", "status", "notes",
		"amount_paid", "inspo_image", "created_at", "closed_at",
	}).AddRow(id, int64(7), "2024-01-07", "10:00:00", status, (*string)(nil),
		amountPaid, (*string)(nil), time.Now(), closedAt)
}

func TestInsertSlotTaken(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(int64(7), "2024-01-07", "10:00:00", (*string)(nil), (*string)(nil)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := NewRepositoryWithDB(mock)
	_, err := repo.Insert(context.Background(), &BookRequest{
		UserID: 7, WorkDate: "2024-01-07", Slot: "10:00:00",
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertUnknownUser(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(int64(99), "2024-01-07", "10:00:00", (*string)(nil), (*string)(nil)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	repo := NewRepositoryWithDB(mock)
	_, err := repo.Insert(context.Background(), &BookRequest{
		UserID: 99, WorkDate: "2024-01-07", Slot: "10:00:00",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOpensAppointment(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(int64(7), "2024-01-07", "10:00:00", (*string)(nil), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), time.Now()))

	repo := NewRepositoryWithDB(mock)
	a, err := repo.Insert(context.Background(), &BookRequest{
		UserID: 7, WorkDate: "2024-01-07", Slot: "10:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), a.ID)
	assert.Equal(t, StatusOpen, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseWritesLedgerInSameTransaction(t *testing.T) {
	mock := newMock(t)
	amount := 55.0
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE appointments`).
		WithArgs(int64(42), amount).
		WillReturnRows(appointmentRows(42, StatusClosed, &amount, &now))
	mock.ExpectExec(`INSERT INTO monthly_finance`).
		WithArgs("2024-01", amount).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewRepositoryWithDB(mock)
	a, err := repo.Close(context.Background(), 42, amount)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, a.Status)
	require.NotNil(t, a.AmountPaid)
	assert.Equal(t, amount, *a.AmountPaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseRollsBackWhenLedgerFails(t *testing.T) {
	mock := newMock(t)
	amount := 55.0
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE appointments`).
		WithArgs(int64(42), amount).
		WillReturnRows(appointmentRows(42, StatusClosed, &amount, &now))
	mock.ExpectExec(`INSERT INTO monthly_finance`).
		WithArgs("2024-01", amount).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := NewRepositoryWithDB(mock)
	_, err := repo.Close(context.Background(), 42, amount)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseOnFinalizedAppointment(t *testing.T) {
	mock := newMock(t)

	// Guarded update matches no row; no ledger write happens.
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE appointments`).
		WithArgs(int64(42), 55.0).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	repo := NewRepositoryWithDB(mock)
	_, err := repo.Close(context.Background(), 42, 55.0)
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelGuardsOpenState(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`UPDATE appointments`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	repo := NewRepositoryWithDB(mock)
	_, err := repo.Cancel(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelReleasesSlot(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`UPDATE appointments`).
		WithArgs(int64(42)).
		WillReturnRows(appointmentRows(42, StatusCanceled, nil, nil))

	repo := NewRepositoryWithDB(mock)
	a, err := repo.Cancel(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingAppointment(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM appointments`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewRepositoryWithDB(mock)
	err := repo.Delete(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookedSlotsSkipCanceled(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT a.slot::text, a.user_id, u.username`).
		WithArgs("2024-01-07").
		WillReturnRows(pgxmock.NewRows([]string{"slot", "user_id", "username"}).
			AddRow("10:00:00", int64(5), "mira"))

	repo := NewRepositoryWithDB(mock)
	booked, err := repo.BookedSlots(context.Background(), "2024-01-07")
	require.NoError(t, err)
	require.Len(t, booked, 1)
	assert.Equal(t, "10:00:00", booked[0].Time)
	assert.Equal(t, "mira", booked[0].UserName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
