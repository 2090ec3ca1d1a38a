package migrations

import (
	"regexp"
	"strings"
	"testing"
)

func initSchema(t *testing.T) string {
	t.Helper()
	b, err := FS.ReadFile("0001_init.up.sql")
	if err != nil {
		t.Fatalf("read init migration: %v", err)
	}
	return string(b)
}

func tableDDL(t *testing.T, schema, table string) string {
	t.Helper()
	re := regexp.MustCompile(`(?s)CREATE TABLE ` + table + ` \((.*?)\);`)
	m := re.FindStringSubmatch(schema)
	if m == nil {
		t.Fatalf("no CREATE TABLE %s in init migration", table)
	}
	return m[1]
}

func TestWeekAssignmentsDateToNullable(t *testing.T) {
	ddl := tableDDL(t, initSchema(t), "week_assignments")
	for _, line := range strings.Split(ddl, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "date_to ") {
			continue
		}
		if strings.Contains(line, "NOT NULL") {
			t.Fatalf("date_to declared NOT NULL; open-ended assignments need a nullable column: %q", line)
		}
		return
	}
	t.Fatal("no date_to column in week_assignments")
}

func TestWeekPlanNamesUnique(t *testing.T) {
	ddl := tableDDL(t, initSchema(t), "week_plans")
	if !regexp.MustCompile(`name TEXT NOT NULL UNIQUE`).MatchString(ddl) {
		t.Fatal("week_plans.name must be UNIQUE; duplicate plan names map to a conflict error")
	}
}

func TestActiveSlotIndexIsPartial(t *testing.T) {
	schema := initSchema(t)
	re := regexp.MustCompile(`(?s)CREATE UNIQUE INDEX appointments_active_slot_idx.*?WHERE status <> 'canceled'`)
	if !re.MatchString(schema) {
		t.Fatal("appointments needs a partial unique index on (work_date, slot) excluding canceled rows")
	}
}
