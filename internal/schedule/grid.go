package schedule

import (
	"sort"
	"time"
)

// The grid lattice: half-hour marks from 07:00 through 22:30.
const (
	FirstSlot    = Clock(7 * 60)
	LastSlot     = Clock(22*60 + 30)
	SlotInterval = 30
)

// Item is a course occurrence source as returned by the course listing.
type Item struct {
	CourseID    string  `json:"course_id"`
	CourseName  string  `json:"course_name"`
	TeacherCode string  `json:"teacher_code,omitempty"`
	TeacherName string  `json:"teacher_name,omitempty"`
	Room        string  `json:"room,omitempty"`
	WeeklyHours float64 `json:"weekly_hours,omitempty"`
	Recurrence  string  `json:"recurrence"`
}

// AgendaEntry is one class in the day-list view.
type AgendaEntry struct {
	Item       Item       `json:"item"`
	Occurrence Occurrence `json:"occurrence"`
}

// Cell is one day × slot position of the week grid.
type Cell struct {
	Slot  Clock  `json:"slot"`
	Items []Item `json:"items"`
}

// GridDay is one column of the week grid.
type GridDay struct {
	Date    time.Time `json:"date"`
	Day     DayOfWeek `json:"day"`
	IsToday bool      `json:"is_today"`
	Cells   []Cell    `json:"cells"`
}

// ItemWarning attaches parse warnings to the item they came from.
type ItemWarning struct {
	CourseID string  `json:"course_id"`
	Warning  Warning `json:"warning"`
}

// WeekGrid is the full 7-day × half-hour lattice for one week.
type WeekGrid struct {
	Reference time.Time     `json:"reference"`
	Slots     []Clock       `json:"slots"`
	Days      []GridDay     `json:"days"`
	Warnings  []ItemWarning `json:"warnings,omitempty"`
}

// Resolver answers week-grid queries. It keeps no state of its own; the reference
// date is passed in by the caller.
type Resolver struct {
	parser Parser
	now    func() time.Time
}

// NewResolver creates a resolver. A nil parser selects TextParser and a nil clock
// selects time.Now.
func NewResolver(parser Parser, now func() time.Time) *Resolver {
	if parser == nil {
		parser = TextParser{}
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{parser: parser, now: now}
}

// Now returns the resolver's current time.
func (r *Resolver) Now() time.Time {
	return r.now()
}

// WeekDates returns the Monday-first window containing ref.
func (r *Resolver) WeekDates(ref time.Time) [7]time.Time {
	return WeekDates(ref)
}

// NavigateWeek moves ref by delta weeks.
func (r *Resolver) NavigateWeek(ref time.Time, delta int) time.Time {
	return Week{Reference: ref}.Navigate(delta).Reference
}

// GoToToday returns the reference date for the current week.
func (r *Resolver) GoToToday() time.Time {
	return r.now()
}

// IsToday compares calendar dates only.
func (r *Resolver) IsToday(date time.Time) bool {
	return SameDate(date, r.now().In(date.Location()))
}

// TimeSlots returns the fixed half-hour lattice.
func (r *Resolver) TimeSlots() []Clock {
	return TimeSlots()
}

// TimeSlots returns the half-hour marks from FirstSlot to LastSlot inclusive.
func TimeSlots() []Clock {
	slots := make([]Clock, 0, int(LastSlot-FirstSlot)/SlotInterval+1)
	for c := FirstSlot; c <= LastSlot; c += SlotInterval {
		slots = append(slots, c)
	}
	return slots
}

// Occurrences parses one item's recurrence.
func (r *Resolver) Occurrences(item Item) Parsed {
	return r.parser.Parse(item.Recurrence)
}

// ItemsAtSlot returns every item scheduled at slot on the weekday of date, in input
// order. Overlapping items are all returned.
func (r *Resolver) ItemsAtSlot(items []Item, date time.Time, slot Clock) []Item {
	day := DayOf(date)
	var out []Item
	for _, item := range items {
		if OccursAt(r.parser.Parse(item.Recurrence).Occurrences, day, slot) {
			out = append(out, item)
		}
	}
	return out
}

// DayAgenda lists the classes on date's weekday, ordered by start time.
func (r *Resolver) DayAgenda(items []Item, date time.Time) []AgendaEntry {
	day := DayOf(date)
	var entries []AgendaEntry
	for _, item := range items {
		for _, o := range r.parser.Parse(item.Recurrence).Occurrences {
			if o.Day == day {
				entries = append(entries, AgendaEntry{Item: item, Occurrence: o})
			}
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Occurrence.Start < entries[j].Occurrence.Start
	})
	return entries
}

// Grid builds the full week lattice around ref. Each recurrence is parsed once per call.
func (r *Resolver) Grid(items []Item, ref time.Time) WeekGrid {
	parsed := make([][]Occurrence, len(items))
	grid := WeekGrid{Reference: ref, Slots: TimeSlots()}
	for i, item := range items {
		p := r.parser.Parse(item.Recurrence)
		parsed[i] = p.Occurrences
		for _, w := range p.Warnings {
			grid.Warnings = append(grid.Warnings, ItemWarning{CourseID: item.CourseID, Warning: w})
		}
	}

	for _, date := range WeekDates(ref) {
		day := DayOf(date)
		gd := GridDay{Date: date, Day: day, IsToday: r.IsToday(date)}
		for _, slot := range grid.Slots {
			cell := Cell{Slot: slot, Items: []Item{}}
			for i, item := range items {
				if OccursAt(parsed[i], day, slot) {
					cell.Items = append(cell.Items, item)
				}
			}
			gd.Cells = append(gd.Cells, cell)
		}
		grid.Days = append(grid.Days, gd)
	}
	return grid
}
