package grading

import (
	"sort"

	"github.com/p-n-ai/pai-records/internal/textfold"
)

// Criteria narrows a record list. Zero-valued fields are ignored.
type Criteria struct {
	CourseID   string `json:"course_id,omitempty"`
	CycleID    string `json:"cycle_id,omitempty"`
	TeacherID  string `json:"teacher_id,omitempty"`
	Year       int    `json:"year,omitempty"`
	SearchText string `json:"q,omitempty"`
}

// Empty reports whether no criterion is set.
func (c Criteria) Empty() bool {
	return c.CourseID == "" && c.CycleID == "" && c.TeacherID == "" && c.Year == 0 &&
		textfold.Fold(c.SearchText) == ""
}

// Match reports whether r satisfies every set criterion.
func (c Criteria) Match(r EvaluationRecord) bool {
	if c.CourseID != "" && r.CourseID != c.CourseID {
		return false
	}
	if c.CycleID != "" && r.CycleID != c.CycleID {
		return false
	}
	if c.TeacherID != "" && r.TeacherID != c.TeacherID {
		return false
	}
	if c.Year != 0 && r.Year != c.Year {
		return false
	}
	return Search(r, c.SearchText)
}

// Filter returns the records matching all criteria, in input order.
func Filter(records []EvaluationRecord, c Criteria) []EvaluationRecord {
	out := make([]EvaluationRecord, 0, len(records))
	for _, r := range records {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Search matches text against the course, teacher and cycle names, ignoring case and
// accents. Blank text matches every record.
func Search(r EvaluationRecord, text string) bool {
	if textfold.Fold(text) == "" {
		return true
	}
	return textfold.Contains(r.CourseName, text) ||
		textfold.Contains(r.TeacherName, text) ||
		textfold.Contains(r.CycleName, text)
}

// CyclesForYear returns the cycles of one year; year 0 returns all of them.
func CyclesForYear(cycles []Cycle, year int) []Cycle {
	out := make([]Cycle, 0, len(cycles))
	for _, c := range cycles {
		if year == 0 || c.Year == year {
			out = append(out, c)
		}
	}
	return out
}

// Years lists the distinct cycle years, most recent first.
func Years(cycles []Cycle) []int {
	seen := make(map[int]bool)
	var years []int
	for _, c := range cycles {
		if c.Year == 0 || seen[c.Year] {
			continue
		}
		seen[c.Year] = true
		years = append(years, c.Year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// FilterState is the filter selection of one grades view. Changing the year drops the
// chosen cycle, since it may not belong to the new year.
type FilterState struct {
	criteria Criteria
}

// Criteria returns the current selection.
func (s FilterState) Criteria() Criteria {
	return s.criteria
}

// SetYear selects a year and clears the cycle selection.
func (s FilterState) SetYear(year int) FilterState {
	if year != s.criteria.Year {
		s.criteria.CycleID = ""
	}
	s.criteria.Year = year
	return s
}

// SetCycle selects a cycle. A cycle outside the selected year is rejected.
func (s FilterState) SetCycle(cycles []Cycle, cycleID string) FilterState {
	if cycleID == "" {
		s.criteria.CycleID = ""
		return s
	}
	for _, c := range CyclesForYear(cycles, s.criteria.Year) {
		if c.ID == cycleID {
			s.criteria.CycleID = cycleID
			return s
		}
	}
	return s
}

// SetCourse selects a course.
func (s FilterState) SetCourse(courseID string) FilterState {
	s.criteria.CourseID = courseID
	return s
}

// SetTeacher selects a teacher.
func (s FilterState) SetTeacher(teacherID string) FilterState {
	s.criteria.TeacherID = teacherID
	return s
}

// SetSearch sets the free-text search.
func (s FilterState) SetSearch(text string) FilterState {
	s.criteria.SearchText = text
	return s
}

// CycleOptions lists the cycles selectable under the current year.
func (s FilterState) CycleOptions(cycles []Cycle) []Cycle {
	return CyclesForYear(cycles, s.criteria.Year)
}
