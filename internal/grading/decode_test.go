package grading

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const validPayload = `[
	{
		"id": "e1",
		"course_id": "web",
		"course_name": "Programación Web",
		"teacher_id": "t1",
		"teacher_name": "Ana Torres",
		"cycle_id": "2025-1",
		"cycle_name": "Ciclo 2025-I",
		"year": 2025,
		"evaluation_type": "weekly",
		"evaluation_date": "2025-04-07",
		"notes": null,
		"slots": [
			{"type": "weekly", "index": 1, "score": 14},
			{"type": "weekly", "index": 2, "score": null},
			{"type": "weekly", "index": 3}
		]
	}
]`

func TestDecodeEvaluations(t *testing.T) {
	records, err := DecodeEvaluations([]byte(validPayload), DefaultPolicy())
	if err != nil {
		t.Fatalf("DecodeEvaluations() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}

	r := records[0]
	if r.CourseName != "Programación Web" || r.Year != 2025 || r.Type != Weekly {
		t.Errorf("record = %+v", r)
	}
	if !r.EvaluationDate.Equal(time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("EvaluationDate = %v, want 2025-04-07", r.EvaluationDate)
	}
	if len(r.Slots) != 3 {
		t.Fatalf("len(Slots) = %d, want 3", len(r.Slots))
	}
	if v, ok := r.Slots[0].Value(); !ok || v != 14 {
		t.Errorf("Slots[0] = %v, %v; want 14, true", v, ok)
	}
	for _, i := range []int{1, 2} {
		if _, ok := r.Slots[i].Value(); ok {
			t.Errorf("Slots[%d] should be ungraded", i)
		}
	}
}

func TestDecodeEvaluations_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantIs  error
	}{
		{"score above 20", `[{"id":"e1","course_id":"c","course_name":"C","slots":[{"type":"weekly","index":1,"score":21}]}]`, nil},
		{"negative score", `[{"id":"e1","course_id":"c","course_name":"C","slots":[{"type":"weekly","index":1,"score":-1}]}]`, nil},
		{"unknown type", `[{"id":"e1","course_id":"c","course_name":"C","slots":[{"type":"quiz","index":1,"score":10}]}]`, nil},
		{"zero index", `[{"id":"e1","course_id":"c","course_name":"C","slots":[{"type":"weekly","index":0,"score":10}]}]`, nil},
		{"missing course", `[{"id":"e1","course_name":"C","slots":[]}]`, nil},
		{"final average out of range", `[{"id":"e1","course_id":"c","course_name":"C","final_average":30,"slots":[]}]`, nil},
		{"bad date", `[{"id":"e1","course_id":"c","course_name":"C","evaluation_date":"07/04/2025","slots":[]}]`, nil},
		{
			name:    "repeated practice slot",
			payload: `[{"id":"e1","course_id":"c","course_name":"C","slots":[{"type":"practice","index":1,"score":20},{"type":"practice","index":1,"score":20},{"type":"practice","index":1,"score":20},{"type":"practice","index":1,"score":20},{"type":"practice","index":2,"score":0}]}]`,
			wantIs:  ErrDuplicateSlot,
		},
		{
			name:    "weekly index beyond expected",
			payload: `[{"id":"e1","course_id":"c","course_name":"C","slots":[{"type":"weekly","index":40,"score":10}]}]`,
			wantIs:  ErrSlotIndexOutOfRange,
		},
		{
			name:    "practice index beyond expected",
			payload: `[{"id":"e1","course_id":"c","course_name":"C","slots":[{"type":"practice","index":9,"score":10}]}]`,
			wantIs:  ErrSlotIndexOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := DecodeEvaluations([]byte(tt.payload), DefaultPolicy())
			if err == nil {
				t.Fatalf("DecodeEvaluations() = %+v, want error", records)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error = %T, want *ValidationError", err)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}

func TestDecodeEvaluations_MalformedJSON(t *testing.T) {
	if _, err := DecodeEvaluations([]byte(`[{`), DefaultPolicy()); err == nil {
		t.Fatal("DecodeEvaluations() should return error for malformed JSON")
	}
}

func TestValidationError_ListsAllProblems(t *testing.T) {
	payload := `[{"id":"e1","course_id":"c","course_name":"C","slots":[
		{"type":"weekly","index":1,"score":25},
		{"type":"weekly","index":2,"score":-3}
	]}]`

	_, err := DecodeEvaluations([]byte(payload), DefaultPolicy())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if len(verr.Problems) < 2 {
		t.Errorf("Problems = %v, want at least 2", verr.Problems)
	}
	if !strings.Contains(err.Error(), "invalid payload") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestDecodeSlots(t *testing.T) {
	got, err := DecodeSlots([]byte(`[{"type":"midterm","index":2,"score":17.5}]`))
	if err != nil {
		t.Fatalf("DecodeSlots() error = %v", err)
	}
	if len(got) != 1 || got[0].Type != Midterm || got[0].Index != 2 {
		t.Errorf("DecodeSlots() = %+v", got)
	}

	if _, err := DecodeSlots([]byte(`[{"type":"midterm","index":2,"score":20.5}]`)); err == nil {
		t.Error("DecodeSlots() should reject score 20.5")
	}
}

func TestNewScore(t *testing.T) {
	for _, v := range []float64{0, 10.5, 20} {
		if _, err := NewScore(v); err != nil {
			t.Errorf("NewScore(%v) error = %v", v, err)
		}
	}
	for _, v := range []float64{-0.01, 20.01} {
		_, err := NewScore(v)
		if !errors.Is(err, ErrScoreOutOfRange) {
			t.Errorf("NewScore(%v) error = %v, want ErrScoreOutOfRange", v, err)
		}
	}
}

func TestEvaluationRecord_Validate(t *testing.T) {
	r := EvaluationRecord{
		ID:    "e9",
		Slots: []Slot{{Type: Practice, Index: 3, Score: Ptr(21)}},
	}

	err := r.Validate()
	var rangeErr *ScoreRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("Validate() error = %v, want *ScoreRangeError", err)
	}
	if rangeErr.RecordID != "e9" || rangeErr.Type != Practice || rangeErr.Index != 3 {
		t.Errorf("ScoreRangeError = %+v", rangeErr)
	}
}

func TestEvaluationRecord_ValidateSlots(t *testing.T) {
	tests := []struct {
		name   string
		slots  []Slot
		wantIs error
	}{
		{"distinct slots", []Slot{{Type: Practice, Index: 1, Score: Ptr(20)}, {Type: Midterm, Index: 1, Score: Ptr(12)}}, nil},
		{"same index in two categories", []Slot{{Type: Weekly, Index: 1}, {Type: Practice, Index: 1}}, nil},
		{"repeated ungraded slot", []Slot{{Type: Weekly, Index: 2}, {Type: Weekly, Index: 2}}, ErrDuplicateSlot},
		{"unknown type", []Slot{{Type: "quiz", Index: 1, Score: Ptr(10)}}, ErrUnknownEvaluationType},
		{"negative index", []Slot{{Type: Midterm, Index: -1}}, ErrSlotIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EvaluationRecord{ID: "e1", Slots: tt.slots}.Validate()
			if tt.wantIs == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantIs)
			}
			var slotErr *SlotError
			if !errors.As(err, &slotErr) || slotErr.RecordID != "e1" {
				t.Errorf("Validate() error = %#v, want *SlotError for e1", err)
			}
		})
	}
}

func TestPolicy_CheckRecord(t *testing.T) {
	p := DefaultPolicy()
	p.ExpectedSlots[Midterm] = 3

	ok := EvaluationRecord{ID: "e1", Slots: []Slot{{Type: Midterm, Index: 3, Score: Ptr(15)}}}
	if err := p.CheckRecord(ok); err != nil {
		t.Errorf("CheckRecord() error = %v", err)
	}

	tooHigh := EvaluationRecord{ID: "e2", Slots: []Slot{{Type: Midterm, Index: 4, Score: Ptr(15)}}}
	if err := p.CheckRecord(tooHigh); !errors.Is(err, ErrSlotIndexOutOfRange) {
		t.Errorf("CheckRecord() error = %v, want ErrSlotIndexOutOfRange", err)
	}
	if err := DefaultPolicy().CheckRecord(ok); !errors.Is(err, ErrSlotIndexOutOfRange) {
		t.Errorf("default CheckRecord() error = %v, want ErrSlotIndexOutOfRange", err)
	}
}
