// Package schedule parses weekly recurrence strings and resolves week-grid lookups.
package schedule

import (
	"fmt"
	"time"

	"github.com/p-n-ai/pai-records/internal/textfold"
)

// DayOfWeek is the canonical day enum. The week starts on Monday.
type DayOfWeek int

const (
	Monday DayOfWeek = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Days lists the week in display order.
var Days = [7]DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// dayNames is indexed by time.Weekday, so Sunday is 0.
var dayNames = [7][]string{
	time.Sunday:    {"sunday", "sun", "domingo"},
	time.Monday:    {"monday", "mon", "lunes"},
	time.Tuesday:   {"tuesday", "tue", "martes"},
	time.Wednesday: {"wednesday", "wed", "miercoles"},
	time.Thursday:  {"thursday", "thu", "jueves"},
	time.Friday:    {"friday", "fri", "viernes"},
	time.Saturday:  {"saturday", "sat", "sabado"},
}

// FromWeekday converts the Sunday-first calendar convention to DayOfWeek.
func FromWeekday(w time.Weekday) DayOfWeek {
	return DayOfWeek((int(w) + 6) % 7)
}

// Weekday converts d back to the Sunday-first calendar convention.
func (d DayOfWeek) Weekday() time.Weekday {
	return time.Weekday((int(d) + 1) % 7)
}

// DayOf returns the day of the week of t in t's location.
func DayOf(t time.Time) DayOfWeek {
	return FromWeekday(t.Weekday())
}

// Valid reports whether d is one of the seven days.
func (d DayOfWeek) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d DayOfWeek) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DayOfWeek(%d)", int(d))
	}
	return d.Weekday().String()
}

// ParseDay matches an English or Spanish day name, ignoring case and accents.
func ParseDay(name string) (DayOfWeek, bool) {
	folded := textfold.Fold(name)
	if folded == "" {
		return 0, false
	}
	for w, names := range dayNames {
		for _, n := range names {
			if n == folded {
				return FromWeekday(time.Weekday(w)), true
			}
		}
	}
	return 0, false
}

// MarshalText renders the English day name.
func (d DayOfWeek) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid day %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText accepts any name ParseDay accepts.
func (d *DayOfWeek) UnmarshalText(b []byte) error {
	v, ok := ParseDay(string(b))
	if !ok {
		return fmt.Errorf("unknown day %q", string(b))
	}
	*d = v
	return nil
}
