// Package source supplies the raw records the engines work on: evaluation
// records, academic cycles and schedule items.
package source

import (
	"context"
	"slices"
	"sync"

	"github.com/p-n-ai/pai-records/internal/grading"
	"github.com/p-n-ai/pai-records/internal/schedule"
)

// Source loads the listings consumed by the grading and schedule engines.
type Source interface {
	Evaluations(ctx context.Context) ([]grading.EvaluationRecord, error)
	Cycles(ctx context.Context) ([]grading.Cycle, error)
	ScheduleItems(ctx context.Context) ([]schedule.Item, error)
}

// MemorySource is an in-memory Source. Callers get copies of the stored slices.
type MemorySource struct {
	records []grading.EvaluationRecord
	cycles  []grading.Cycle
	items   []schedule.Item
	mu      sync.RWMutex
}

// NewMemorySource creates a source holding the given listings.
func NewMemorySource(records []grading.EvaluationRecord, cycles []grading.Cycle, items []schedule.Item) *MemorySource {
	return &MemorySource{
		records: slices.Clone(records),
		cycles:  slices.Clone(cycles),
		items:   slices.Clone(items),
	}
}

func (s *MemorySource) Evaluations(_ context.Context) ([]grading.EvaluationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records), nil
}

func (s *MemorySource) Cycles(_ context.Context) ([]grading.Cycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cycles), nil
}

func (s *MemorySource) ScheduleItems(_ context.Context) ([]schedule.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), nil
}

// ReplaceEvaluations swaps the stored evaluation listing.
func (s *MemorySource) ReplaceEvaluations(records []grading.EvaluationRecord) {
	s.mu.Lock()
	s.records = slices.Clone(records)
	s.mu.Unlock()
}

// ReplaceScheduleItems swaps the stored course listing.
func (s *MemorySource) ReplaceScheduleItems(items []schedule.Item) {
	s.mu.Lock()
	s.items = slices.Clone(items)
	s.mu.Unlock()
}
