package availability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetrow/salonbook/internal/schedule"
)

// fakeSchedules implements ScheduleStore in memory, mirroring the repository
// contract (greatest date_from at or before the target wins).
type fakeSchedules struct {
	overrides     map[string]*schedule.DateOverride
	assignments   []schedule.WeekAssignment
	plans         map[int64]*schedule.WeekPlan
	templates     map[string]*schedule.DayTemplate
	slots         map[int64][]string
	slotOverrides map[string][]schedule.SlotOverride
}

func newFakeSchedules() *fakeSchedules {
	return &fakeSchedules{
		overrides:     map[string]*schedule.DateOverride{},
		plans:         map[int64]*schedule.WeekPlan{},
		templates:     map[string]*schedule.DayTemplate{},
		slots:         map[int64][]string{},
		slotOverrides: map[string][]schedule.SlotOverride{},
	}
}

func (f *fakeSchedules) OverrideForDate(_ context.Context, date string) (*schedule.DateOverride, error) {
	return f.overrides[date], nil
}

func (f *fakeSchedules) AssignmentForDate(_ context.Context, date string) (*schedule.WeekAssignment, error) {
	var best *schedule.WeekAssignment
	for i := range f.assignments {
		a := &f.assignments[i]
		if a.DateFrom > date {
			continue
		}
		if a.DateTo != nil && *a.DateTo < date {
			continue
		}
		if best == nil || a.DateFrom > best.DateFrom || (a.DateFrom == best.DateFrom && a.ID > best.ID) {
			best = a
		}
	}
	return best, nil
}

func (f *fakeSchedules) GetWeekPlan(_ context.Context, id int64) (*schedule.WeekPlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, schedule.ErrPlanNotFound
	}
	return p, nil
}

func (f *fakeSchedules) TemplateByName(_ context.Context, name string) (*schedule.DayTemplate, error) {
	t, ok := f.templates[name]
	if !ok {
		return nil, schedule.ErrTemplateNotFound
	}
	return t, nil
}

func (f *fakeSchedules) GetTemplate(_ context.Context, id int64) (*schedule.DayTemplate, error) {
	for _, t := range f.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, schedule.ErrTemplateNotFound
}

func (f *fakeSchedules) SlotTimes(_ context.Context, templateID int64) ([]string, error) {
	return f.slots[templateID], nil
}

func (f *fakeSchedules) SlotOverridesForDate(_ context.Context, date string) ([]schedule.SlotOverride, error) {
	return f.slotOverrides[date], nil
}

type fakeBookings struct {
	byDate map[string][]BookedSlot
}

func (f *fakeBookings) BookedSlots(_ context.Context, date string) ([]BookedSlot, error) {
	return f.byDate[date], nil
}

// standardSetup builds a typical salon week: template "Regular" with
// slots 09/10/11, week plan "Standard" mapping Sunday to "Regular", assigned
// open-ended from 2024-01-01. 2024-01-07 is a Sunday.
func standardSetup() (*fakeSchedules, *fakeBookings) {
	s := newFakeSchedules()
	s.templates["Regular"] = &schedule.DayTemplate{ID: 1, Name: "Regular"}
	s.slots[1] = []string{"09:00:00", "10:00:00", "11:00:00"}
	s.plans[1] = &schedule.WeekPlan{ID: 1, Name: "Standard", Days: []string{"Regular", "", "", "", "", "", ""}}
	s.assignments = []schedule.WeekAssignment{{ID: 1, WeekPlanID: 1, DateFrom: "2024-01-01"}}
	return s, &fakeBookings{byDate: map[string][]BookedSlot{}}
}

func TestResolveWeekFallback(t *testing.T) {
	s, b := standardSetup()
	day, err := NewResolver(s, b).Resolve(context.Background(), "2024-01-07")
	require.NoError(t, err)

	assert.Equal(t, SourceWeekPlan, day.Source)
	require.Len(t, day.Slots, 3)
	for i, want := range []string{"09:00:00", "10:00:00", "11:00:00"} {
		assert.Equal(t, want, day.Slots[i].Time)
		assert.True(t, day.Slots[i].Available)
		assert.Nil(t, day.Slots[i].OccupantID)
	}
}

func TestResolveClosedOverrideWinsOverPlan(t *testing.T) {
	s, b := standardSetup()
	s.overrides["2024-01-07"] = &schedule.DateOverride{WorkDate: "2024-01-07", IsOpen: false}
	// A booking exists, but the closed override must still return nothing.
	b.byDate["2024-01-07"] = []BookedSlot{{Time: "10:00:00", UserID: 5, UserName: "mira"}}

	day, err := NewResolver(s, b).Resolve(context.Background(), "2024-01-07")
	require.NoError(t, err)

	assert.Equal(t, SourceClosedByOverride, day.Source)
	assert.Empty(t, day.Slots)
}

func TestResolveOverrideTemplateReplacesWeekTemplate(t *testing.T) {
	s, b := standardSetup()
	s.templates["Holiday Hours"] = &schedule.DayTemplate{ID: 2, Name: "Holiday Hours"}
	s.slots[2] = []string{"12:00:00", "13:00:00"}
	tplID := int64(2)
	s.overrides["2024-01-07"] = &schedule.DateOverride{WorkDate: "2024-01-07", IsOpen: true, OverrideTemplateID: &tplID}

	day, err := NewResolver(s, b).Resolve(context.Background(), "2024-01-07")
	require.NoError(t, err)

	assert.Equal(t, SourceOverrideTemplate, day.Source)
	require.Len(t, day.Slots, 2)
	assert.Equal(t, "12:00:00", day.Slots[0].Time)
	assert.Equal(t, "13:00:00", day.Slots[1].Time)
}

func TestResolveOpenOverrideWithoutTemplateFallsThrough(t *testing.T) {
	s, b := standardSetup()
	s.overrides["2024-01-07"] = &schedule.DateOverride{WorkDate: "2024-01-07", IsOpen: true}

	day, err := NewResolver(s, b).Resolve(context.Background(), "2024-01-07")
	require.NoError(t, err)

	// Explicitly open without a forced template resolves like a normal day.
	assert.Equal(t, SourceWeekPlan, day.Source)
	assert.Len(t, day.Slots, 3)
}

func TestResolveNoPlan(t *testing.T) {
	s, b := standardSetup()
	day, err := NewResolver(s, b).Resolve(context.Background(), "2023-12-25")
	require.NoError(t, err)

	assert.Equal(t, SourceNoPlan, day.Source)
	assert.Empty(t, day.Slots)
}

func TestResolveClosedWeekday(t *testing.T) {
	s, b := standardSetup()
	// 2024-01-08 is a Monday; the Standard plan leaves Monday blank.
	day, err := NewResolver(s, b).Resolve(context.Background(), "2024-01-08")
	require.NoError(t, err)

	assert.Equal(t, SourceNoTemplateForWeekday, day.Source)
	assert.Empty(t, day.Slots)
}

func TestResolveDanglingTemplateName(t *testing.T) {
	s, b := standardSetup()
	s.plans[1].Days[0] = "Deleted Template"

	day, err := NewResolver(s, b).Resolve(context.Background(), "2024-01-07")
	require.NoError(t, err)

	assert.Equal(t, SourceTemplateNotFound, day.Source)
	assert.Empty(t, day.Slots)
}

func TestResolveMergesBookings(t *testing.T) {
	s, b := standardSetup()
	b.byDate["2024-01-07"] = []BookedSlot{{Time: "10:00:00", UserID: 5, UserName: "mira"}}

	day, err := NewResolver(s, b).Resolve(context.Background(), "2024-01-07")
	require.NoError(t, err)

	require.Len(t, day.Slots, 3)
	ten := day.Slots[1]
	assert.Equal(t, "10:00:00", ten.Time)
	assert.False(t, ten.Available)
	require.NotNil(t, ten.OccupantID)
	assert.Equal(t, int64(5), *ten.OccupantID)
	require.NotNil(t, ten.OccupantName)
	assert.Equal(t, "mira", *ten.OccupantName)

	assert.True(t, day.Slots[0].Available)
	assert.True(t, day.Slots[2].Available)
}

func TestResolveExtraBookingOutsideTemplate(t *testing.T) {
	s, b := standardSetup()
	b.byDate["2024-01-07"] = []BookedSlot{{Time: "14:00:00", UserID: 9, UserName: "lena"}}

	day, err := NewResolver(s, b).Resolve(context.Background(), "2024-01-07")
	require.NoError(t, err)

	require.Len(t, day.Slots, 4)
	extra := day.Slots[3]
	assert.Equal(t, "14:00:00", extra.Time)
	assert.False(t, extra.Available)
	require.NotNil(t, extra.OccupantID)
	assert.Equal(t, int64(9), *extra.OccupantID)
}

func TestResolveOutputSortedByTime(t *testing.T) {
	s, b := standardSetup()
	b.byDate["2024-01-07"] = []BookedSlot{
		{Time: "08:00:00", UserID: 2, UserName: "ana"},
		{Time: "14:00:00", UserID: 9, UserName: "lena"},
	}

	day, err := NewResolver(s, b).Resolve(context.Background(), "2024-01-07")
	require.NoError(t, err)

	require.Len(t, day.Slots, 5)
	for i := 1; i < len(day.Slots); i++ {
		assert.Less(t, day.Slots[i-1].Time, day.Slots[i].Time)
	}
}

func TestResolveSlotOverrideClosesSlot(t *testing.T) {
	s, b := standardSetup()
	s.slotOverrides["2024-01-07"] = []schedule.SlotOverride{
		{WorkDate: "2024-01-07", StartTime: "09:00:00", IsOpen: false},
	}

	day, err := NewResolver(s, b).Resolve(context.Background(), "2024-01-07")
	require.NoError(t, err)

	require.Len(t, day.Slots, 3)
	assert.False(t, day.Slots[0].Available)
	assert.Nil(t, day.Slots[0].OccupantID)
	assert.True(t, day.Slots[1].Available)
}

func TestResolveSlotOverrideOpensExtraSlot(t *testing.T) {
	s, b := standardSetup()
	s.slotOverrides["2024-01-07"] = []schedule.SlotOverride{
		{WorkDate: "2024-01-07", StartTime: "18:00:00", IsOpen: true},
	}

	day, err := NewResolver(s, b).Resolve(context.Background(), "2024-01-07")
	require.NoError(t, err)

	require.Len(t, day.Slots, 4)
	last := day.Slots[3]
	assert.Equal(t, "18:00:00", last.Time)
	assert.True(t, last.Available)
}

func TestResolveSlotOverrideNeverFreesOccupied(t *testing.T) {
	s, b := standardSetup()
	b.byDate["2024-01-07"] = []BookedSlot{{Time: "10:00:00", UserID: 5, UserName: "mira"}}
	s.slotOverrides["2024-01-07"] = []schedule.SlotOverride{
		{WorkDate: "2024-01-07", StartTime: "10:00:00", IsOpen: true},
	}

	day, err := NewResolver(s, b).Resolve(context.Background(), "2024-01-07")
	require.NoError(t, err)

	ten := day.Slots[1]
	assert.False(t, ten.Available)
	require.NotNil(t, ten.OccupantID)
	assert.Equal(t, int64(5), *ten.OccupantID)
}

func TestResolveMostRecentAssignmentWins(t *testing.T) {
	s, b := standardSetup()
	s.templates["Long Day"] = &schedule.DayTemplate{ID: 3, Name: "Long Day"}
	s.slots[3] = []string{"08:00:00", "20:00:00"}
	s.plans[2] = &schedule.WeekPlan{ID: 2, Name: "Summer", Days: []string{"Long Day", "", "", "", "", "", ""}}
	s.assignments = append(s.assignments, schedule.WeekAssignment{ID: 2, WeekPlanID: 2, DateFrom: "2024-01-05"})

	day, err := NewResolver(s, b).Resolve(context.Background(), "2024-01-07")
	require.NoError(t, err)

	assert.Equal(t, SourceWeekPlan, day.Source)
	require.Len(t, day.Slots, 2)
	assert.Equal(t, "08:00:00", day.Slots[0].Time)
}

func TestResolveRejectsMalformedDate(t *testing.T) {
	s, b := standardSetup()
	_, err := NewResolver(s, b).Resolve(context.Background(), "07-01-2024")
	assert.ErrorIs(t, err, ErrBadDate)
}

func TestSlotFree(t *testing.T) {
	s, b := standardSetup()
	b.byDate["2024-01-07"] = []BookedSlot{{Time: "10:00:00", UserID: 5, UserName: "mira"}}
	r := NewResolver(s, b)

	free, err := r.SlotFree(context.Background(), "2024-01-07", "09:00:00")
	require.NoError(t, err)
	assert.True(t, free)

	free, err = r.SlotFree(context.Background(), "2024-01-07", "10:00:00")
	require.NoError(t, err)
	assert.False(t, free)

	// A time outside the resolved day is not bookable.
	free, err = r.SlotFree(context.Background(), "2024-01-07", "23:00:00")
	require.NoError(t, err)
	assert.False(t, free)
}
