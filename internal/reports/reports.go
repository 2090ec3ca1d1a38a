// Package reports assembles the admin dashboard aggregates: ledger totals,
// appointment counts and user growth bucketed by month, plus the weekday
// distribution of kept appointments.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velvetrow/salonbook/internal/dateutil"
)

// ErrBadMonth is returned for range bounds not in YYYY-MM form.
var ErrBadMonth = errors.New("from and to must be YYYY-MM")

// MonthRange is the inclusive month window a report covers.
type MonthRange struct {
	From string `json:"from_month"`
	To   string `json:"to_month"`
}

// FinanceRow is one month of ledger totals.
type FinanceRow struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Outcome float64 `json:"outcome"`
}

// AppointmentsRow is one month of appointment counts by status.
type AppointmentsRow struct {
	Month    string `json:"month"`
	Total    int    `json:"total"`
	Open     int    `json:"open"`
	Closed   int    `json:"closed"`
	Canceled int    `json:"canceled"`
}

// UsersRow is one month of signups.
type UsersRow struct {
	Month    string `json:"month"`
	NewUsers int    `json:"new_users"`
}

// WeekdayRow is the all-time count of non-canceled appointments on a weekday.
type WeekdayRow struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

// Report is the full dashboard payload.
type Report struct {
	Range               MonthRange        `json:"range"`
	Finance             []FinanceRow      `json:"finance"`
	CurrentFinance      FinanceRow        `json:"current_finance"`
	MonthlyAppointments []AppointmentsRow `json:"monthly_appointments"`
	MonthlyUsers        []UsersRow        `json:"monthly_users"`
	WeekdayDistribution []WeekdayRow      `json:"weekday_distribution"`
}

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads the dashboard aggregates.
type Repository struct {
	db  db
	now func() time.Time
}

// NewRepository creates a reports repository over a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("reports: pgx pool required")
	}
	return &Repository{db: pool, now: time.Now}
}

// NewRepositoryWithDB allows injecting a mock database for tests.
func NewRepositoryWithDB(db db) *Repository {
	return &Repository{db: db, now: time.Now}
}

var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Build assembles the report for the inclusive month range. Empty bounds
// default to the last twelve months.
func (r *Repository) Build(ctx context.Context, from, to string) (*Report, error) {
	now := r.now()
	if from == "" {
		from = now.AddDate(0, -11, 0).Format("2006-01")
	}
	if to == "" {
		to = now.Format("2006-01")
	}
	if !dateutil.ValidMonth(from) || !dateutil.ValidMonth(to) || from > to {
		return nil, ErrBadMonth
	}

	report := &Report{
		Range:               MonthRange{From: from, To: to},
		Finance:             []FinanceRow{},
		MonthlyAppointments: []AppointmentsRow{},
		MonthlyUsers:        []UsersRow{},
		WeekdayDistribution: []WeekdayRow{},
	}

	var err error
	if report.Finance, err = r.financeRows(ctx, from, to); err != nil {
		return nil, err
	}
	if report.MonthlyAppointments, err = r.appointmentRows(ctx, from, to); err != nil {
		return nil, err
	}
	if report.MonthlyUsers, err = r.userRows(ctx, from, to); err != nil {
		return nil, err
	}
	if report.WeekdayDistribution, err = r.weekdayRows(ctx); err != nil {
		return nil, err
	}
	if report.CurrentFinance, err = r.currentFinance(ctx, now.Format("2006-01")); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Repository) financeRows(ctx context.Context, from, to string) ([]FinanceRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT month_year, round(income::numeric, 2), round(outcome::numeric, 2)
		FROM monthly_finance
		WHERE month_year >= $1 AND month_year <= $2
		ORDER BY month_year`, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports: finance: %w", err)
	}
	defer rows.Close()

	out := []FinanceRow{}
	for rows.Next() {
		var f FinanceRow
		if err := rows.Scan(&f.Month, &f.Income, &f.Outcome); err != nil {
			return nil, fmt.Errorf("reports: scan finance: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *Repository) appointmentRows(ctx context.Context, from, to string) ([]AppointmentsRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(work_date, 'YYYY-MM') AS month,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'open'),
		       COUNT(*) FILTER (WHERE status = 'closed'),
		       COUNT(*) FILTER (WHERE status = 'canceled')
		FROM appointments
		WHERE to_char(work_date, 'YYYY-MM') >= $1 AND to_char(work_date, 'YYYY-MM') <= $2
		GROUP BY month
		ORDER BY month`, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports: appointments: %w", err)
	}
	defer rows.Close()

	out := []AppointmentsRow{}
	for rows.Next() {
		var a AppointmentsRow
		if err := rows.Scan(&a.Month, &a.Total, &a.Open, &a.Closed, &a.Canceled); err != nil {
			return nil, fmt.Errorf("reports: scan appointments: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) userRows(ctx context.Context, from, to string) ([]UsersRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(created_at, 'YYYY-MM') AS month, COUNT(*)
		FROM users
		WHERE to_char(created_at, 'YYYY-MM') >= $1 AND to_char(created_at, 'YYYY-MM') <= $2
		GROUP BY month
		ORDER BY month`, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports: users: %w", err)
	}
	defer rows.Close()

	out := []UsersRow{}
	for rows.Next() {
		var u UsersRow
		if err := rows.Scan(&u.Month, &u.NewUsers); err != nil {
			return nil, fmt.Errorf("reports: scan users: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repository) weekdayRows(ctx context.Context) ([]WeekdayRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT EXTRACT(DOW FROM work_date)::int AS dow, COUNT(*)
		FROM appointments
		WHERE status <> 'canceled'
		GROUP BY dow
		ORDER BY dow`)
	if err != nil {
		return nil, fmt.Errorf("reports: weekdays: %w", err)
	}
	defer rows.Close()

	out := []WeekdayRow{}
	for rows.Next() {
		var (
			dow   int
			count int
		)
		if err := rows.Scan(&dow, &count); err != nil {
			return nil, fmt.Errorf("reports: scan weekday: %w", err)
		}
		if dow < 0 || dow > 6 {
			continue
		}
		out = append(out, WeekdayRow{Weekday: weekdayNames[dow], Count: count})
	}
	return out, rows.Err()
}

func (r *Repository) currentFinance(ctx context.Context, month string) (FinanceRow, error) {
	f := FinanceRow{Month: month}
	err := r.db.QueryRow(ctx, `
		SELECT round(income::numeric, 2), round(outcome::numeric, 2)
		FROM monthly_finance
		WHERE month_year = $1`, month).Scan(&f.Income, &f.Outcome)
	if errors.Is(err, pgx.ErrNoRows) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("reports: current finance: %w", err)
	}
	return f, nil
}
