// Package finance keeps the per-month income/outcome ledger. Income rows are
// only touched inside the same transaction that finalizes an appointment;
// outcome rows inside the one that records a shopping run.
package finance

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MonthlyFinance is one ledger row keyed by YYYY-MM.
type MonthlyFinance struct {
	MonthYear string  `json:"month_year"`
	Income    float64 `json:"income"`
	Outcome   float64 `json:"outcome"`
}

// Execer is satisfied by pgxpool.Pool and pgx.Tx; ledger mutations take it so
// callers control the transaction boundary.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Execer
}

// Ledger reads and mutates the monthly finance table.
type Ledger struct {
	db db
}

// NewLedger creates a ledger over a pgx pool.
func NewLedger(pool *pgxpool.Pool) *Ledger {
	if pool == nil {
		panic("finance: pgx pool required")
	}
	return &Ledger{db: pool}
}

// NewLedgerWithDB allows injecting a mock database for tests.
func NewLedgerWithDB(db db) *Ledger {
	return &Ledger{db: db}
}

// List returns all ledger rows, newest month first.
func (l *Ledger) List(ctx context.Context) ([]MonthlyFinance, error) {
	rows, err := l.db.Query(ctx, `
		SELECT month_year, income, outcome
		FROM monthly_finance
		ORDER BY month_year DESC`)
	if err != nil {
		return nil, fmt.Errorf("finance: list: %w", err)
	}
	defer rows.Close()

	var out []MonthlyFinance
	for rows.Next() {
		var m MonthlyFinance
		if err := rows.Scan(&m.MonthYear, &m.Income, &m.Outcome); err != nil {
			return nil, fmt.Errorf("finance: scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddIncome upserts amount into the month's income using the caller's
// transaction handle.
func AddIncome(ctx context.Context, q Execer, monthYear string, amount float64) error {
	_, err := q.Exec(ctx, `
		INSERT INTO monthly_finance (month_year, income)
		VALUES ($1, $2)
		ON CONFLICT (month_year) DO UPDATE SET income = monthly_finance.income + excluded.income`,
		monthYear, amount)
	if err != nil {
		return fmt.Errorf("finance: add income for %s: %w", monthYear, err)
	}
	return nil
}

// AddOutcome upserts amount into the month's outcome using the caller's
// transaction handle.
func AddOutcome(ctx context.Context, q Execer, monthYear string, amount float64) error {
	_, err := q.Exec(ctx, `
		INSERT INTO monthly_finance (month_year, outcome)
		VALUES ($1, $2)
		ON CONFLICT (month_year) DO UPDATE SET outcome = monthly_finance.outcome + excluded.outcome`,
		monthYear, amount)
	if err != nil {
		return fmt.Errorf("finance: add outcome for %s: %w", monthYear, err)
	}
	return nil
}
