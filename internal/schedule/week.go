package schedule

import "time"

// Week is the navigation state of a week view: a single reference date. Every
// transition returns a new value.
type Week struct {
	Reference time.Time
}

// Navigate moves the reference date by delta weeks.
func (w Week) Navigate(delta int) Week {
	return Week{Reference: w.Reference.AddDate(0, 0, 7*delta)}
}

// Today resets the reference date to now.
func (w Week) Today(now time.Time) Week {
	return Week{Reference: now}
}

// Dates returns the Monday-to-Sunday window containing the reference date.
func (w Week) Dates() [7]time.Time {
	return WeekDates(w.Reference)
}

// Start returns the Monday of the week at midnight.
func (w Week) Start() time.Time {
	return w.Dates()[0]
}

// WeekDates returns the seven dates, Monday first, of the week containing ref.
// Dates are at midnight in ref's location.
func WeekDates(ref time.Time) [7]time.Time {
	day := StartOfDay(ref)
	monday := day.AddDate(0, 0, -int(DayOf(day)))

	var dates [7]time.Time
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i)
	}
	return dates
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar date, ignoring time of day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
