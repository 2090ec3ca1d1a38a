package finance

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
)

func TestAddIncomeUpserts(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO monthly_finance \(month_year, income\)`).
		WithArgs("2024-01", 150.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := AddIncome(context.Background(), mock, "2024-01", 150); err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM monthly_finance`).
		WillReturnRows(pgxmock.NewRows([]string{"month_year", "income", "outcome"}).
			AddRow("2024-02", 900.0, 120.0).
			AddRow("2024-01", 450.0, 80.0))

	ledger := NewLedgerWithDB(mock)
	rows, err := ledger.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 || rows[0].MonthYear != "2024-02" {
		t.Fatalf("rows = %+v, want 2024-02 first", rows)
	}
}
