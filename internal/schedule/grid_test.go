package schedule_test

import (
	"testing"
	"time"

	"github.com/p-n-ai/pai-records/internal/schedule"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// 2025-04-09 is a Wednesday.
var wednesday = time.Date(2025, time.April, 9, 15, 45, 0, 0, time.UTC)

func TestWeekDates_StartOnMonday(t *testing.T) {
	wantMonday := time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC)

	for offset := 0; offset < 7; offset++ {
		ref := wantMonday.AddDate(0, 0, offset).Add(13 * time.Hour)
		dates := schedule.WeekDates(ref)

		if !dates[0].Equal(wantMonday) {
			t.Errorf("WeekDates(%s)[0] = %s, want %s", ref.Weekday(), dates[0], wantMonday)
		}
		for i, d := range dates {
			if d.Weekday() != schedule.Days[i].Weekday() {
				t.Errorf("WeekDates(%s)[%d] is %s", ref.Weekday(), i, d.Weekday())
			}
		}
	}
}

func TestTimeSlots(t *testing.T) {
	slots := schedule.TimeSlots()

	if len(slots) != 32 {
		t.Fatalf("len(TimeSlots()) = %d, want 32", len(slots))
	}
	if slots[0].String() != "07:00" {
		t.Errorf("first slot = %s, want 07:00", slots[0])
	}
	if slots[len(slots)-1].String() != "22:30" {
		t.Errorf("last slot = %s, want 22:30", slots[len(slots)-1])
	}
	for i := 1; i < len(slots); i++ {
		if slots[i]-slots[i-1] != 30 {
			t.Errorf("slot %d step = %d, want 30", i, slots[i]-slots[i-1])
		}
	}
}

func TestItemsAtSlot_Scenario(t *testing.T) {
	r := schedule.NewResolver(nil, fixedNow(wednesday))
	item := schedule.Item{CourseID: "web", CourseName: "Programación Web", Recurrence: "Monday 08:00-10:00, Wednesday 14:00-16:00"}
	items := []schedule.Item{item}

	dates := r.WeekDates(wednesday)
	monday, tuesday := dates[0], dates[1]

	if got := r.ItemsAtSlot(items, monday, schedule.At(9, 0)); len(got) != 1 || got[0].CourseID != "web" {
		t.Errorf("Monday 09:00 = %v, want [web]", got)
	}
	if got := r.ItemsAtSlot(items, monday, schedule.At(10, 0)); len(got) != 0 {
		t.Errorf("Monday 10:00 = %v, want empty", got)
	}
	if got := r.ItemsAtSlot(items, tuesday, schedule.At(9, 0)); len(got) != 0 {
		t.Errorf("Tuesday 09:00 = %v, want empty", got)
	}
}

func TestItemsAtSlot_Overlaps(t *testing.T) {
	r := schedule.NewResolver(nil, fixedNow(wednesday))
	items := []schedule.Item{
		{CourseID: "a", Recurrence: "Friday 08:00-10:00"},
		{CourseID: "b", Recurrence: "Friday 09:00-11:00"},
		{CourseID: "c", Recurrence: "Friday 10:00-11:00"},
	}
	friday := r.WeekDates(wednesday)[4]

	got := r.ItemsAtSlot(items, friday, schedule.At(9, 30))
	if len(got) != 2 || got[0].CourseID != "a" || got[1].CourseID != "b" {
		t.Errorf("ItemsAtSlot(09:30) = %v, want [a b]", got)
	}
}

func TestItemsAtSlot_OutsideLattice(t *testing.T) {
	r := schedule.NewResolver(nil, fixedNow(wednesday))
	items := []schedule.Item{{CourseID: "early", Recurrence: "Monday 06:00-06:30"}}
	monday := r.WeekDates(wednesday)[0]

	for _, slot := range r.TimeSlots() {
		if got := r.ItemsAtSlot(items, monday, slot); len(got) != 0 {
			t.Errorf("slot %s matched %v", slot, got)
		}
	}
}

func TestNavigateWeek_Reversible(t *testing.T) {
	r := schedule.NewResolver(nil, fixedNow(wednesday))

	refs := []time.Time{
		wednesday,
		time.Date(2024, time.December, 30, 23, 59, 0, 0, time.UTC),
		time.Date(2025, time.March, 30, 2, 30, 0, 0, time.FixedZone("X", 3600)),
	}
	for _, ref := range refs {
		next := r.NavigateWeek(ref, 1)
		if days := next.Sub(ref).Hours() / 24; days != 7 {
			t.Errorf("NavigateWeek(+1) moved %v days", days)
		}
		back := r.NavigateWeek(next, -1)
		if !schedule.SameDate(back, ref) {
			t.Errorf("NavigateWeek(+1, -1) = %s, want %s", back, ref)
		}
	}
}

func TestWeek_Transitions(t *testing.T) {
	w := schedule.Week{Reference: wednesday}

	prev := w.Navigate(-1)
	if got := prev.Start(); !got.Equal(time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("previous week start = %s", got)
	}

	later := w.Navigate(3).Today(wednesday)
	if !later.Reference.Equal(wednesday) {
		t.Errorf("Today() reference = %s, want %s", later.Reference, wednesday)
	}
}

func TestIsToday(t *testing.T) {
	r := schedule.NewResolver(nil, fixedNow(wednesday))

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"midnight", time.Date(2025, time.April, 9, 0, 0, 0, 0, time.UTC), true},
		{"late", time.Date(2025, time.April, 9, 23, 59, 0, 0, time.UTC), true},
		{"yesterday", time.Date(2025, time.April, 8, 23, 59, 0, 0, time.UTC), false},
		{"next week", time.Date(2025, time.April, 16, 15, 45, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.IsToday(tt.date); got != tt.want {
				t.Errorf("IsToday(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}

	if !schedule.SameDate(r.GoToToday(), wednesday) {
		t.Errorf("GoToToday() = %s, want %s", r.GoToToday(), wednesday)
	}
}

func TestDayAgenda(t *testing.T) {
	r := schedule.NewResolver(nil, fixedNow(wednesday))
	items := []schedule.Item{
		{CourseID: "late", Recurrence: "Wednesday 18:00-20:00"},
		{CourseID: "web", Recurrence: "Monday 08:00-10:00, Wednesday 14:00-16:00"},
		{CourseID: "early", Recurrence: "Miércoles 07:00-08:30, Viernes 07:00-08:30"},
	}

	got := r.DayAgenda(items, wednesday)
	if len(got) != 3 {
		t.Fatalf("DayAgenda() = %d entries, want 3", len(got))
	}
	want := []string{"early", "web", "late"}
	for i, e := range got {
		if e.Item.CourseID != want[i] {
			t.Errorf("entry %d = %s, want %s", i, e.Item.CourseID, want[i])
		}
	}
	if got[1].Occurrence.Start != schedule.At(14, 0) {
		t.Errorf("web start = %s, want 14:00", got[1].Occurrence.Start)
	}
}

func TestGrid(t *testing.T) {
	r := schedule.NewResolver(nil, fixedNow(wednesday))
	items := []schedule.Item{
		{CourseID: "web", Recurrence: "Monday 08:00-10:00, Wednesday 14:00-16:00"},
		{CourseID: "bad", Recurrence: "Someday 08:00-10:00"},
	}

	g := r.Grid(items, wednesday)
	if len(g.Days) != 7 {
		t.Fatalf("len(Days) = %d, want 7", len(g.Days))
	}
	if len(g.Warnings) != 1 || g.Warnings[0].CourseID != "bad" {
		t.Errorf("Warnings = %v, want one for bad", g.Warnings)
	}

	for i, d := range g.Days {
		if d.IsToday != (d.Day == schedule.Wednesday) {
			t.Errorf("Days[%d] (%s) IsToday = %v", i, d.Day, d.IsToday)
		}
		if len(d.Cells) != len(g.Slots) {
			t.Errorf("Days[%d] has %d cells, want %d", i, len(d.Cells), len(g.Slots))
		}
	}

	filled := 0
	for _, d := range g.Days {
		for _, c := range d.Cells {
			filled += len(c.Items)
		}
	}
	// Two hours on Monday and two on Wednesday, four half-hour cells each.
	if filled != 8 {
		t.Errorf("filled cells = %d, want 8", filled)
	}
}
