package source

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-records/internal/grading"
	"github.com/p-n-ai/pai-records/internal/schedule"
)

// Seed file suffixes recognised by LoadDir.
const (
	cyclesSuffix      = ".cycles.yaml"
	scheduleSuffix    = ".schedule.yaml"
	evaluationsSuffix = ".evaluations.json"
)

type seedCycle struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Year int    `yaml:"year"`
}

type seedItem struct {
	CourseID    string  `yaml:"course_id"`
	CourseName  string  `yaml:"course_name"`
	TeacherCode string  `yaml:"teacher_code"`
	TeacherName string  `yaml:"teacher_name"`
	Room        string  `yaml:"room"`
	WeeklyHours float64 `yaml:"weekly_hours"`
	Recurrence  string  `yaml:"recurrence"`
}

// LoadDir builds a MemorySource from a directory of seed files:
// *.cycles.yaml, *.schedule.yaml and *.evaluations.json. Evaluations are checked
// against the slot structure of policy. Files that fail to parse are logged and
// skipped.
func LoadDir(dir string, policy grading.Policy) (*MemorySource, error) {
	s := NewMemorySource(nil, nil, nil)

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		switch {
		case strings.HasSuffix(path, cyclesSuffix):
			return s.loadCycles(path)
		case strings.HasSuffix(path, scheduleSuffix):
			return s.loadSchedule(path)
		case strings.HasSuffix(path, evaluationsSuffix):
			return s.loadEvaluations(path, policy)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading seed data: %w", err)
	}

	slog.Info("seed data loaded",
		"dir", dir,
		"evaluations", len(s.records),
		"cycles", len(s.cycles),
		"schedule_items", len(s.items),
	)
	return s, nil
}

func (s *MemorySource) loadCycles(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw []seedCycle
	if err := yaml.Unmarshal(data, &raw); err != nil {
		slog.Warn("skipping invalid cycles YAML", "path", path, "error", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range raw {
		if c.ID == "" {
			continue
		}
		s.cycles = append(s.cycles, grading.Cycle{ID: c.ID, Name: c.Name, Year: c.Year})
	}
	return nil
}

func (s *MemorySource) loadSchedule(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw []seedItem
	if err := yaml.Unmarshal(data, &raw); err != nil {
		slog.Warn("skipping invalid schedule YAML", "path", path, "error", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range raw {
		if it.CourseID == "" {
			continue
		}
		s.items = append(s.items, schedule.Item{
			CourseID:    it.CourseID,
			CourseName:  it.CourseName,
			TeacherCode: it.TeacherCode,
			TeacherName: it.TeacherName,
			Room:        it.Room,
			WeeklyHours: it.WeeklyHours,
			Recurrence:  it.Recurrence,
		})
	}
	return nil
}

func (s *MemorySource) loadEvaluations(path string, policy grading.Policy) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	records, err := grading.DecodeEvaluations(data, policy)
	if err != nil {
		slog.Warn("skipping invalid evaluations file", "path", path, "error", err)
		return nil
	}

	s.mu.Lock()
	s.records = append(s.records, records...)
	s.mu.Unlock()
	return nil
}
