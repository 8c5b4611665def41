package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-records/internal/grading"
	"github.com/p-n-ai/pai-records/internal/schedule"
)

const dbTimeout = 5 * time.Second

// PostgresSource is a PostgreSQL-backed Source.
type PostgresSource struct {
	pool   *pgxpool.Pool
	policy grading.Policy
}

// NewPostgresSource creates a source reading from the cycles, evaluations and
// schedule_items tables. Stored slots are checked against the structure of policy.
func NewPostgresSource(pool *pgxpool.Pool, policy grading.Policy) (*PostgresSource, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresSource{pool: pool, policy: policy}, nil
}

// Evaluations returns every stored evaluation record in insertion order. Rows
// whose slots or scores are invalid are logged and skipped.
func (s *PostgresSource) Evaluations(ctx context.Context) ([]grading.EvaluationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT e.id, e.course_id, e.course_name, e.teacher_id, e.teacher_name,
		        COALESCE(e.cycle_id, ''), COALESCE(c.name, ''), COALESCE(c.year, 0),
		        e.evaluation_type, e.evaluation_date, e.notes,
		        e.final_average::float8, e.slots::text
		 FROM evaluations e
		 LEFT JOIN cycles c ON c.id = e.cycle_id
		 ORDER BY e.created_at ASC, e.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var records []grading.EvaluationRecord
	for rows.Next() {
		var rec grading.EvaluationRecord
		var evalType string
		var evalDate *time.Time
		var slots string
		if err := rows.Scan(
			&rec.ID,
			&rec.CourseID,
			&rec.CourseName,
			&rec.TeacherID,
			&rec.TeacherName,
			&rec.CycleID,
			&rec.CycleName,
			&rec.Year,
			&evalType,
			&evalDate,
			&rec.Notes,
			&rec.FinalAverage,
			&slots,
		); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		rec.Type = grading.EvaluationType(evalType)
		if evalDate != nil {
			rec.EvaluationDate = *evalDate
		}

		rec.Slots, err = grading.DecodeSlots([]byte(slots))
		if err != nil {
			slog.Warn("skipping evaluation with invalid slots", "id", rec.ID, "error", err)
			continue
		}
		if err := s.policy.CheckRecord(rec); err != nil {
			slog.Warn("skipping invalid evaluation", "id", rec.ID, "error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}

	return records, nil
}

// Cycles returns the academic cycles, newest year first.
func (s *PostgresSource) Cycles(ctx context.Context) ([]grading.Cycle, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, year FROM cycles ORDER BY year DESC, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var cycles []grading.Cycle
	for rows.Next() {
		var c grading.Cycle
		if err := rows.Scan(&c.ID, &c.Name, &c.Year); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cycles: %w", err)
	}

	return cycles, nil
}

// ScheduleItems returns the course listing ordered by course ID.
func (s *PostgresSource) ScheduleItems(ctx context.Context) ([]schedule.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT course_id, course_name, teacher_code, teacher_name, room,
		        weekly_hours::float8, recurrence
		 FROM schedule_items
		 ORDER BY course_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query schedule items: %w", err)
	}
	defer rows.Close()

	var items []schedule.Item
	for rows.Next() {
		var it schedule.Item
		if err := rows.Scan(
			&it.CourseID,
			&it.CourseName,
			&it.TeacherCode,
			&it.TeacherName,
			&it.Room,
			&it.WeeklyHours,
			&it.Recurrence,
		); err != nil {
			return nil, fmt.Errorf("scan schedule item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedule items: %w", err)
	}

	return items, nil
}
