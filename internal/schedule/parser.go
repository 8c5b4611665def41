package schedule

import (
	"fmt"
	"strings"
)

// Occurrence is one weekly interval [Start, End) on a day.
type Occurrence struct {
	Day   DayOfWeek `json:"day"`
	Start Clock     `json:"start"`
	End   Clock     `json:"end"`
}

// Contains reports whether t falls inside the half-open interval on day.
func (o Occurrence) Contains(day DayOfWeek, t Clock) bool {
	return o.Day == day && o.Start <= t && t < o.End
}

func (o Occurrence) String() string {
	return fmt.Sprintf("%s %s-%s", o.Day, o.Start, o.End)
}

// Warning describes a recurrence segment that was skipped.
type Warning struct {
	Segment string `json:"segment"`
	Reason  string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%q: %s", w.Segment, w.Reason)
}

// Parsed is the outcome of parsing one recurrence string. Warnings never invalidate
// the occurrences that did parse.
type Parsed struct {
	Occurrences []Occurrence `json:"occurrences"`
	Warnings    []Warning    `json:"warnings,omitempty"`
}

// Parser turns a recurrence description into occurrences.
type Parser interface {
	Parse(text string) Parsed
}

// TextParser reads comma-separated "<Day> <HH:MM>-<HH:MM>" segments, such as
// "Monday 08:00-10:00, Wednesday 14:00-16:00".
type TextParser struct{}

// Parse never fails; malformed segments are skipped and reported as warnings.
func (TextParser) Parse(text string) Parsed {
	var p Parsed
	for _, segment := range strings.Split(text, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		occ, err := parseSegment(segment)
		if err != nil {
			p.Warnings = append(p.Warnings, Warning{Segment: segment, Reason: err.Error()})
			continue
		}
		p.Occurrences = append(p.Occurrences, occ)
	}
	return p
}

func parseSegment(segment string) (Occurrence, error) {
	fields := strings.Fields(segment)
	if len(fields) < 2 {
		return Occurrence{}, fmt.Errorf("expected day and time range")
	}

	day, ok := ParseDay(fields[0])
	if !ok {
		return Occurrence{}, fmt.Errorf("unknown day %q", fields[0])
	}

	// "08:00-10:00" and "08:00 - 10:00" are both accepted.
	span := strings.Join(fields[1:], "")
	from, to, ok := strings.Cut(span, "-")
	if !ok {
		return Occurrence{}, fmt.Errorf("missing time range")
	}
	start, err := ParseClock(from)
	if err != nil {
		return Occurrence{}, err
	}
	end, err := ParseClock(to)
	if err != nil {
		return Occurrence{}, err
	}
	if start >= end {
		return Occurrence{}, fmt.Errorf("start %s is not before end %s", start, end)
	}
	return Occurrence{Day: day, Start: start, End: end}, nil
}

// OccursOn reports whether any occurrence falls on day.
func OccursOn(occs []Occurrence, day DayOfWeek) bool {
	for _, o := range occs {
		if o.Day == day {
			return true
		}
	}
	return false
}

// OccursAt reports whether any occurrence on day contains t, with start <= t < end.
func OccursAt(occs []Occurrence, day DayOfWeek, t Clock) bool {
	for _, o := range occs {
		if o.Contains(day, t) {
			return true
		}
	}
	return false
}
