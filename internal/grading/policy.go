package grading

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the grading constants that vary by institution.
type Policy struct {
	// ApprovalThreshold is the lowest course average that still approves.
	ApprovalThreshold float64 `yaml:"approval_threshold"`
	// Weights are the category weights of the CategoryWeighted strategy. They are
	// applied as given and need not sum to 1.
	Weights map[EvaluationType]float64 `yaml:"weights"`
	// ExpectedSlots is the number of slots a complete course-cycle carries per category.
	ExpectedSlots map[EvaluationType]int `yaml:"expected_slots"`
	// WeeklySlotsPerRecord is the weekly slot count of a single evaluation record.
	WeeklySlotsPerRecord int `yaml:"weekly_slots_per_record"`
}

// DefaultPolicy returns the constants currently used by the dashboard.
func DefaultPolicy() Policy {
	return Policy{
		ApprovalThreshold: 11,
		Weights: map[EvaluationType]float64{
			Weekly:   0.10,
			Practice: 0.30,
			Midterm:  0.30,
		},
		ExpectedSlots: map[EvaluationType]int{
			Weekly:   32,
			Practice: 4,
			Midterm:  2,
		},
		WeeklySlotsPerRecord: 8,
	}
}

// LoadPolicy reads a YAML policy file. Keys missing from the file keep their defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("reading policy: %w", err)
	}

	var file struct {
		ApprovalThreshold    *float64                   `yaml:"approval_threshold"`
		Weights              map[EvaluationType]float64 `yaml:"weights"`
		ExpectedSlots        map[EvaluationType]int     `yaml:"expected_slots"`
		WeeklySlotsPerRecord *int                       `yaml:"weekly_slots_per_record"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Policy{}, fmt.Errorf("parsing policy %s: %w", path, err)
	}

	if file.ApprovalThreshold != nil {
		p.ApprovalThreshold = *file.ApprovalThreshold
	}
	for t, w := range file.Weights {
		p.Weights[t] = w
	}
	for t, n := range file.ExpectedSlots {
		p.ExpectedSlots[t] = n
	}
	if file.WeeklySlotsPerRecord != nil {
		p.WeeklySlotsPerRecord = *file.WeeklySlotsPerRecord
	}

	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("policy %s: %w", path, err)
	}
	return p, nil
}

// Validate checks that the policy can drive the aggregator.
func (p Policy) Validate() error {
	if p.ApprovalThreshold < MinScore || p.ApprovalThreshold > MaxScore {
		return fmt.Errorf("approval_threshold must be within [%v, %v], got %v", MinScore, MaxScore, p.ApprovalThreshold)
	}
	for t, w := range p.Weights {
		if !t.Valid() {
			return fmt.Errorf("unknown evaluation type %q in weights", t)
		}
		if w < 0 {
			return fmt.Errorf("weight for %s must be non-negative, got %v", t, w)
		}
	}
	for _, t := range EvaluationTypes {
		n, ok := p.ExpectedSlots[t]
		if !ok || n <= 0 {
			return fmt.Errorf("expected_slots for %s must be positive, got %d", t, n)
		}
	}
	for t := range p.ExpectedSlots {
		if !t.Valid() {
			return fmt.Errorf("unknown evaluation type %q in expected_slots", t)
		}
	}
	if p.WeeklySlotsPerRecord <= 0 {
		return fmt.Errorf("weekly_slots_per_record must be positive, got %d", p.WeeklySlotsPerRecord)
	}
	return nil
}

// CheckRecord validates r and bounds its slot indexes by ExpectedSlots.
func (p Policy) CheckRecord(r EvaluationRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return r.CheckSlots(p.ExpectedSlots)
}
