package grading

import (
	"os"
	"path/filepath"
	"testing"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing policy: %v", err)
	}
	return path
}

func TestDefaultPolicy_Valid(t *testing.T) {
	p := DefaultPolicy()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if p.ApprovalThreshold != 11 {
		t.Errorf("ApprovalThreshold = %v, want 11", p.ApprovalThreshold)
	}
	if p.ExpectedSlots[Weekly] != 32 || p.ExpectedSlots[Practice] != 4 || p.ExpectedSlots[Midterm] != 2 {
		t.Errorf("ExpectedSlots = %v, want weekly 32, practice 4, midterm 2", p.ExpectedSlots)
	}
	if p.WeeklySlotsPerRecord != 8 {
		t.Errorf("WeeklySlotsPerRecord = %d, want 8", p.WeeklySlotsPerRecord)
	}
}

func TestLoadPolicy_Overrides(t *testing.T) {
	path := writePolicy(t, `
approval_threshold: 13
weights:
  midterm: 0.4
expected_slots:
  weekly: 8
`)

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	if p.ApprovalThreshold != 13 {
		t.Errorf("ApprovalThreshold = %v, want 13", p.ApprovalThreshold)
	}
	if p.Weights[Midterm] != 0.4 {
		t.Errorf("Weights[midterm] = %v, want 0.4", p.Weights[Midterm])
	}
	if p.Weights[Practice] != 0.30 {
		t.Errorf("Weights[practice] = %v, want default 0.30", p.Weights[Practice])
	}
	if p.ExpectedSlots[Weekly] != 8 {
		t.Errorf("ExpectedSlots[weekly] = %d, want 8", p.ExpectedSlots[Weekly])
	}
}

func TestLoadPolicy_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"threshold above scale", "approval_threshold: 25\n"},
		{"negative weight", "weights:\n  weekly: -0.1\n"},
		{"unknown type", "weights:\n  quiz: 0.2\n"},
		{"zero expected", "expected_slots:\n  practice: 0\n"},
		{"bad yaml", "approval_threshold: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadPolicy(writePolicy(t, tt.content)); err == nil {
				t.Fatal("LoadPolicy() should return error")
			}
		})
	}
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadPolicy() should return error for missing file")
	}
}
