package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/p-n-ai/pai-records/internal/grading"
	"github.com/p-n-ai/pai-records/internal/report"
)

type gradesResponse struct {
	Criteria grading.Criteria           `json:"criteria"`
	Groups   []grading.CourseGradeGroup `json:"groups"`
	Summary  grading.Summary            `json:"summary"`
}

type completenessResponse struct {
	CourseID      string               `json:"course_id"`
	CycleID       string               `json:"cycle_id,omitempty"`
	Completeness  grading.Completeness `json:"completeness"`
	CourseAverage grading.Average      `json:"course_average"`
	Status        grading.Status       `json:"status"`
	Records       []recordCompleteness `json:"records"`
}

type recordCompleteness struct {
	RecordID      string               `json:"record_id"`
	RecordAverage grading.Average      `json:"record_average"`
	Completeness  grading.Completeness `json:"completeness"`
}

type cyclesResponse struct {
	Years  []int           `json:"years"`
	Year   int             `json:"year,omitempty"`
	Cycles []grading.Cycle `json:"cycles"`
}

// criteria reads the grade filter from the query string. The cycle must belong
// to the selected year when both are given.
func (s *Server) criteria(r *http.Request) (grading.Criteria, error) {
	q := r.URL.Query()

	var year int
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return grading.Criteria{}, fmt.Errorf("invalid year %q", v)
		}
		year = y
	}

	state := grading.FilterState{}.
		SetYear(year).
		SetCourse(q.Get("course_id")).
		SetTeacher(q.Get("teacher_id")).
		SetSearch(q.Get("q"))

	if cycleID := q.Get("cycle_id"); cycleID != "" {
		cycles, err := s.source.Cycles(r.Context())
		if err != nil {
			return grading.Criteria{}, err
		}
		state = state.SetCycle(cycles, cycleID)
		if state.Criteria().CycleID != cycleID {
			return grading.Criteria{}, fmt.Errorf("cycle %q is not offered in year %d", cycleID, year)
		}
	}
	return state.Criteria(), nil
}

// filtered loads the evaluation listing and applies the request's criteria.
// It writes the error response itself and reports whether the caller may go on.
func (s *Server) filtered(w http.ResponseWriter, r *http.Request) (grading.Criteria, []grading.EvaluationRecord, bool) {
	c, err := s.criteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return c, nil, false
	}

	records, err := s.source.Evaluations(r.Context())
	if err != nil {
		slog.Error("loading evaluations", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load evaluations")
		return c, nil, false
	}
	return c, grading.Filter(records, c), true
}

func (s *Server) handleGrades(w http.ResponseWriter, r *http.Request) {
	c, records, ok := s.filtered(w, r)
	if !ok {
		return
	}

	groups := s.agg.GroupByCourse(records)
	writeJSON(w, http.StatusOK, gradesResponse{
		Criteria: c,
		Groups:   nonNil(groups),
		Summary:  s.agg.SummaryStatistics(groups),
	})
}

// handleGradesSummary aggregates a grades-listing payload sent in the request body.
func (s *Server) handleGradesSummary(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	records, err := grading.DecodeEvaluations(body, s.agg.Policy())
	if err != nil {
		var verr *grading.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:    "invalid evaluations payload",
				Problems: verr.Problems,
			})
		case errors.Is(err, grading.ErrScoreOutOfRange):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	groups := s.agg.GroupByCourse(records)
	writeJSON(w, http.StatusOK, gradesResponse{
		Groups:  nonNil(groups),
		Summary: s.agg.SummaryStatistics(groups),
	})
}

func (s *Server) handleCompleteness(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("course_id") == "" {
		writeError(w, http.StatusBadRequest, "course_id is required")
		return
	}

	c, records, ok := s.filtered(w, r)
	if !ok {
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "no evaluations for course "+c.CourseID)
		return
	}

	perRecord := make([]recordCompleteness, 0, len(records))
	for _, rec := range records {
		perRecord = append(perRecord, recordCompleteness{
			RecordID:      rec.ID,
			RecordAverage: s.agg.RecordAverage(rec),
			Completeness:  s.agg.RecordCompleteness(rec),
		})
	}

	avg := s.agg.CourseAverage(records)
	writeJSON(w, http.StatusOK, completenessResponse{
		CourseID:      c.CourseID,
		CycleID:       c.CycleID,
		Completeness:  s.agg.StructureCompleteness(records),
		CourseAverage: avg,
		Status:        s.agg.ApprovalStatus(avg),
		Records:       perRecord,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	_, records, ok := s.filtered(w, r)
	if !ok {
		return
	}

	groups := s.agg.GroupByCourse(records)
	f, err := report.Gradebook(s.agg, groups, s.agg.SummaryStatistics(groups))
	if err != nil {
		slog.Error("building gradebook", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build gradebook")
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("gradebook_%s.xlsx", s.resolver().Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(w); err != nil {
		slog.Error("writing gradebook", "error", err)
	}
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	var year int
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid year %q", v))
			return
		}
		year = y
	}

	cycles, err := s.source.Cycles(r.Context())
	if err != nil {
		slog.Error("loading cycles", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load cycles")
		return
	}

	writeJSON(w, http.StatusOK, cyclesResponse{
		Years:  nonNil(grading.Years(cycles)),
		Year:   year,
		Cycles: nonNil(grading.CyclesForYear(cycles, year)),
	})
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
