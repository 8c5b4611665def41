// Package grading turns raw per-evaluation scores into per-record and per-course averages,
// approval status and cross-course statistics, and filters, groups and searches the records.
package grading

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Scores live on a 0–20 scale.
const (
	MinScore = 0.0
	MaxScore = 20.0
)

// ErrScoreOutOfRange is wrapped by every ScoreRangeError.
var ErrScoreOutOfRange = errors.New("score out of range")

// Slot structure errors, wrapped by SlotError.
var (
	ErrUnknownEvaluationType = errors.New("unknown evaluation type")
	ErrSlotIndexOutOfRange   = errors.New("slot index out of range")
	ErrDuplicateSlot         = errors.New("duplicate slot")
)

// EvaluationType is one category of the evaluation taxonomy.
type EvaluationType string

const (
	Weekly   EvaluationType = "weekly"
	Practice EvaluationType = "practice"
	Midterm  EvaluationType = "midterm"
)

// EvaluationTypes lists the taxonomy in display order.
var EvaluationTypes = []EvaluationType{Weekly, Practice, Midterm}

// Valid reports whether t belongs to the taxonomy.
func (t EvaluationType) Valid() bool {
	switch t {
	case Weekly, Practice, Midterm:
		return true
	default:
		return false
	}
}

// Slot is one numbered instance of a category. A nil Score means not graded yet.
type Slot struct {
	Type  EvaluationType `json:"type"`
	Index int            `json:"index"`
	Score *float64       `json:"score"`
}

// Value returns the score and whether the slot has been graded.
func (s Slot) Value() (float64, bool) {
	if s.Score == nil {
		return 0, false
	}
	return *s.Score, true
}

// EvaluationRecord is one graded assessment row as delivered by the grades listing.
type EvaluationRecord struct {
	ID             string         `json:"id"`
	CourseID       string         `json:"course_id"`
	CourseName     string         `json:"course_name"`
	TeacherID      string         `json:"teacher_id,omitempty"`
	TeacherName    string         `json:"teacher_name"`
	CycleID        string         `json:"cycle_id,omitempty"`
	CycleName      string         `json:"cycle_name"`
	Year           int            `json:"year,omitempty"`
	Type           EvaluationType `json:"evaluation_type"`
	Slots          []Slot         `json:"slots"`
	EvaluationDate time.Time      `json:"evaluation_date"`
	Notes          string         `json:"notes,omitempty"`
	FinalAverage   *float64       `json:"final_average,omitempty"`
}

// Scores returns the graded scores of the given category, in slot order as stored.
func (r EvaluationRecord) Scores(t EvaluationType) []float64 {
	var out []float64
	for _, s := range r.Slots {
		if s.Type != t {
			continue
		}
		if v, ok := s.Value(); ok {
			out = append(out, v)
		}
	}
	return out
}

// Graded reports whether the record carries at least one score.
func (r EvaluationRecord) Graded() bool {
	for _, s := range r.Slots {
		if _, ok := s.Value(); ok {
			return true
		}
	}
	return false
}

// Validate checks the slot structure, every present score and the precomputed final
// average. Each (type, index) pair may appear once and indexes start at 1.
func (r EvaluationRecord) Validate() error {
	seen := make(map[Slot]bool, len(r.Slots))
	for _, s := range r.Slots {
		if !s.Type.Valid() {
			return &SlotError{RecordID: r.ID, Type: s.Type, Index: s.Index, Err: ErrUnknownEvaluationType}
		}
		if s.Index < 1 {
			return &SlotError{RecordID: r.ID, Type: s.Type, Index: s.Index, Err: ErrSlotIndexOutOfRange}
		}
		key := Slot{Type: s.Type, Index: s.Index}
		if seen[key] {
			return &SlotError{RecordID: r.ID, Type: s.Type, Index: s.Index, Err: ErrDuplicateSlot}
		}
		seen[key] = true

		v, ok := s.Value()
		if !ok {
			continue
		}
		if _, err := NewScore(v); err != nil {
			var rangeErr *ScoreRangeError
			if errors.As(err, &rangeErr) {
				rangeErr.RecordID = r.ID
				rangeErr.Type = s.Type
				rangeErr.Index = s.Index
			}
			return err
		}
	}
	if r.FinalAverage != nil {
		if _, err := NewScore(*r.FinalAverage); err != nil {
			return fmt.Errorf("record %s final average: %w", r.ID, err)
		}
	}
	return nil
}

// CheckSlots rejects slots whose index exceeds the expected count of their category.
func (r EvaluationRecord) CheckSlots(expected map[EvaluationType]int) error {
	for _, s := range r.Slots {
		if s.Index > expected[s.Type] {
			return &SlotError{RecordID: r.ID, Type: s.Type, Index: s.Index, Err: ErrSlotIndexOutOfRange}
		}
	}
	return nil
}

// SlotError reports a slot that breaks the per-category structure of a record.
type SlotError struct {
	RecordID string
	Type     EvaluationType
	Index    int
	Err      error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("record %s %s slot %d: %v", e.RecordID, e.Type, e.Index, e.Err)
}

func (e *SlotError) Unwrap() error {
	return e.Err
}

// ScoreRangeError reports a score outside [MinScore, MaxScore].
type ScoreRangeError struct {
	RecordID string
	Type     EvaluationType
	Index    int
	Value    float64
}

func (e *ScoreRangeError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("score %v outside [%v, %v]", e.Value, MinScore, MaxScore)
	}
	return fmt.Sprintf("record %s %s slot %d: score %v outside [%v, %v]",
		e.RecordID, e.Type, e.Index, e.Value, MinScore, MaxScore)
}

func (e *ScoreRangeError) Unwrap() error {
	return ErrScoreOutOfRange
}

// NewScore accepts v only when it lies on the grading scale. Values are never clamped.
func NewScore(v float64) (float64, error) {
	if math.IsNaN(v) || v < MinScore || v > MaxScore {
		return 0, &ScoreRangeError{Value: v}
	}
	return v, nil
}

// Ptr returns a pointer to a score, for building slots by hand.
func Ptr(v float64) *float64 {
	return &v
}

// Cycle is an academic term offered in the cascading year/cycle filter.
type Cycle struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Year int    `json:"year"`
}
