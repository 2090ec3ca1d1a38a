package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestCreateTemplateDuplicateName(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO day_templates`).
		WithArgs("Regular Day", (*string)(nil)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := NewRepositoryWithDB(mock)
	_, err := repo.CreateTemplate(context.Background(), &CreateTemplateRequest{Name: "Regular Day"})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateTemplateTrimsName(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO day_templates`).
		WithArgs("Short Friday", (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), time.Now()))

	repo := NewRepositoryWithDB(mock)
	tpl, err := repo.CreateTemplate(context.Background(), &CreateTemplateRequest{Name: "  Short Friday  "})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	if tpl.Name != "Short Friday" {
		t.Errorf("name = %q, want trimmed", tpl.Name)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAddSlotNormalizesTime(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO template_slots`).
		WithArgs(int64(1), "09:00:00").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	repo := NewRepositoryWithDB(mock)
	s, err := repo.AddSlot(context.Background(), &AddSlotRequest{TemplateID: 1, StartTime: "09:00"})
	if err != nil {
		t.Fatalf("AddSlot: %v", err)
	}
	if s.StartTime != "09:00:00" {
		t.Errorf("start_time = %q, want zero-padded with seconds", s.StartTime)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAddSlotDuplicateInTemplate(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO template_slots`).
		WithArgs(int64(1), "10:00:00").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := NewRepositoryWithDB(mock)
	_, err := repo.AddSlot(context.Background(), &AddSlotRequest{TemplateID: 1, StartTime: "10:00"})
	if !errors.Is(err, ErrDuplicateSlot) {
		t.Fatalf("err = %v, want ErrDuplicateSlot", err)
	}
}

func TestWeekPlanRequestRejectsWrongLength(t *testing.T) {
	for _, days := range [][]string{nil, {}, {"Regular"}, make([]string, 8)} {
		req := WeekPlanRequest{Name: "Standard", Days: days}
		if err := req.Validate(); !errors.Is(err, ErrBadDays) {
			t.Errorf("Validate(days len %d) = %v, want ErrBadDays", len(days), err)
		}
	}

	req := WeekPlanRequest{Name: "Standard", Days: []string{"Regular", "", "", "", "", "", ""}}
	if err := req.Validate(); err != nil {
		t.Errorf("Validate(seven entries) = %v, want nil", err)
	}
}

func TestCreateWeekPlanDuplicateName(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO week_plans`).
		WithArgs("Standard", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := NewRepositoryWithDB(mock)
	_, err := repo.CreateWeekPlan(context.Background(), &WeekPlanRequest{
		Name: "Standard",
		Days: []string{"Regular", "", "", "", "", "", ""},
	})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
}

func TestAssignmentForDatePicksMostRecentFrom(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM week_assignments`).
		WithArgs("2024-01-07").
		WillReturnRows(pgxmock.NewRows([]string{"id", "week_plan_id", "date_from", "date_to", "created_at"}).
			AddRow(int64(5), int64(2), "2024-01-01", (*string)(nil), time.Now()))

	repo := NewRepositoryWithDB(mock)
	a, err := repo.AssignmentForDate(context.Background(), "2024-01-07")
	if err != nil {
		t.Fatalf("AssignmentForDate: %v", err)
	}
	if a == nil || a.WeekPlanID != 2 {
		t.Fatalf("assignment = %+v, want plan 2", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAssignmentForDateNone(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM week_assignments`).
		WithArgs("1999-01-01").
		WillReturnRows(pgxmock.NewRows([]string{"id", "week_plan_id", "date_from", "date_to", "created_at"}))

	repo := NewRepositoryWithDB(mock)
	a, err := repo.AssignmentForDate(context.Background(), "1999-01-01")
	if err != nil {
		t.Fatalf("AssignmentForDate: %v", err)
	}
	if a != nil {
		t.Fatalf("assignment = %+v, want nil when no range covers the date", a)
	}
}

func TestCreateAssignmentOpenEnded(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO week_assignments`).
		WithArgs(int64(1), "2024-01-01", (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), time.Now()))

	repo := NewRepositoryWithDB(mock)
	a, err := repo.CreateAssignment(context.Background(), &CreateAssignmentRequest{
		WeekPlanID: 1,
		DateFrom:   "2024-01-01",
	})
	if err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}
	if a.DateTo != nil {
		t.Errorf("date_to = %v, want nil for an open-ended range", *a.DateTo)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateAssignmentRejectsInvertedRange(t *testing.T) {
	to := "2024-01-01"
	req := CreateAssignmentRequest{WeekPlanID: 1, DateFrom: "2024-06-01", DateTo: &to}
	if err := req.Validate(); !errors.Is(err, ErrBadRange) {
		t.Fatalf("Validate = %v, want ErrBadRange", err)
	}
}

func TestOverrideForDateAbsent(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM date_overrides`).
		WithArgs("2024-01-07").
		WillReturnRows(pgxmock.NewRows([]string{"work_date", "is_open", "override_template_id", "notes"}))

	repo := NewRepositoryWithDB(mock)
	o, err := repo.OverrideForDate(context.Background(), "2024-01-07")
	if err != nil {
		t.Fatalf("OverrideForDate: %v", err)
	}
	if o != nil {
		t.Fatalf("override = %+v, want nil when none exists", o)
	}
}

func TestDeleteTemplateNotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM day_templates`).
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewRepositoryWithDB(mock)
	if err := repo.DeleteTemplate(context.Background(), 42); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("err = %v, want ErrTemplateNotFound", err)
	}
}
