package grading

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

const dateLayout = "2006-01-02"

const slotSchema = `{
	"type": "object",
	"required": ["type", "index"],
	"properties": {
		"type": {"enum": ["weekly", "practice", "midterm"]},
		"index": {"type": "integer", "minimum": 1},
		"score": {"type": ["number", "null"], "minimum": 0, "maximum": 20}
	}
}`

const evaluationsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "course_id", "course_name", "slots"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"course_id": {"type": "string", "minLength": 1},
			"course_name": {"type": "string"},
			"teacher_id": {"type": "string"},
			"teacher_name": {"type": "string"},
			"cycle_id": {"type": "string"},
			"cycle_name": {"type": "string"},
			"year": {"type": "integer"},
			"evaluation_type": {"enum": ["weekly", "practice", "midterm", ""]},
			"evaluation_date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
			"notes": {"type": ["string", "null"]},
			"final_average": {"type": ["number", "null"], "minimum": 0, "maximum": 20},
			"slots": {"type": "array", "items": ` + slotSchema + `}
		}
	}
}`

var (
	evaluationsValidator = mustSchema(evaluationsSchema)
	slotsValidator       = mustSchema(`{"type": "array", "items": ` + slotSchema + `}`)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compiling schema: %v", err))
	}
	return s
}

// ValidationError lists every problem found in a rejected payload.
type ValidationError struct {
	Problems []string
	errs     []error
}

func (e *ValidationError) Error() string {
	return "invalid payload: " + strings.Join(e.Problems, "; ")
}

// Unwrap exposes the record-level errors behind the problems, if any.
func (e *ValidationError) Unwrap() []error {
	return e.errs
}

type rawEvaluation struct {
	ID             string         `json:"id"`
	CourseID       string         `json:"course_id"`
	CourseName     string         `json:"course_name"`
	TeacherID      string         `json:"teacher_id"`
	TeacherName    string         `json:"teacher_name"`
	CycleID        string         `json:"cycle_id"`
	CycleName      string         `json:"cycle_name"`
	Year           int            `json:"year"`
	Type           EvaluationType `json:"evaluation_type"`
	EvaluationDate string         `json:"evaluation_date"`
	Notes          *string        `json:"notes"`
	FinalAverage   *float64       `json:"final_average"`
	Slots          []Slot         `json:"slots"`
}

// DecodeEvaluations validates a grades-listing payload against the schema and the
// slot structure of p, and converts it into records. Out-of-range scores, repeated
// slots and slot indexes beyond the expected counts reject the whole payload;
// nothing is clamped.
func DecodeEvaluations(data []byte, p Policy) ([]EvaluationRecord, error) {
	if err := validate(evaluationsValidator, data); err != nil {
		return nil, err
	}

	var raw []rawEvaluation
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding evaluations: %w", err)
	}

	records := make([]EvaluationRecord, 0, len(raw))
	verr := &ValidationError{}
	for _, r := range raw {
		rec := EvaluationRecord{
			ID:           r.ID,
			CourseID:     r.CourseID,
			CourseName:   r.CourseName,
			TeacherID:    r.TeacherID,
			TeacherName:  r.TeacherName,
			CycleID:      r.CycleID,
			CycleName:    r.CycleName,
			Year:         r.Year,
			Type:         r.Type,
			Slots:        r.Slots,
			FinalAverage: r.FinalAverage,
		}
		if r.Notes != nil {
			rec.Notes = *r.Notes
		}
		if r.EvaluationDate != "" {
			d, err := time.Parse(dateLayout, r.EvaluationDate)
			if err != nil {
				return nil, fmt.Errorf("record %s evaluation_date: %w", r.ID, err)
			}
			rec.EvaluationDate = d
		}
		if err := p.CheckRecord(rec); err != nil {
			verr.Problems = append(verr.Problems, err.Error())
			verr.errs = append(verr.errs, err)
			continue
		}
		records = append(records, rec)
	}
	if len(verr.Problems) > 0 {
		return nil, verr
	}
	return records, nil
}

// DecodeSlots validates and decodes a JSON slot array.
func DecodeSlots(data []byte) ([]Slot, error) {
	if err := validate(slotsValidator, data); err != nil {
		return nil, err
	}
	var slots []Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("decoding slots: %w", err)
	}
	return slots, nil
}

func validate(schema *gojsonschema.Schema, data []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{}
	for _, e := range result.Errors() {
		verr.Problems = append(verr.Problems, e.String())
	}
	return verr
}
