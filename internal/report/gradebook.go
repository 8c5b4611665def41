// Package report renders grade aggregates as spreadsheet exports.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-records/internal/grading"
)

// Sheet names of the gradebook workbook.
const (
	CoursesSheet = "Courses"
	RecordsSheet = "Records"
	SummarySheet = "Summary"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateFormat = "2006-01-02"

var courseHeaders = []string{
	"Course ID", "Course", "Teacher", "Cycle",
	"Weekly avg", "Practice avg", "Midterm avg", "Course avg", "Status", "Records",
}

var recordHeaders = []string{
	"Record ID", "Course", "Type", "Date", "Graded slots", "Record avg", "Final avg", "Notes",
}

// Gradebook builds a workbook with one row per course group, one row per record
// and a summary sheet. Averages without data are left blank.
func Gradebook(agg *grading.Aggregator, groups []grading.CourseGradeGroup, summary grading.Summary) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", CoursesSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	for _, name := range []string{RecordsSheet, SummarySheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	if err := writeHeaders(f, CoursesSheet, courseHeaders); err != nil {
		return nil, err
	}
	if err := writeHeaders(f, RecordsSheet, recordHeaders); err != nil {
		return nil, err
	}

	recordRow := 2
	for i, g := range groups {
		row := i + 2
		values := []any{
			g.CourseID,
			g.CourseName,
			g.TeacherName,
			g.CycleName,
			averageCell(agg.AverageOfType(g.Records, grading.Weekly)),
			averageCell(agg.AverageOfType(g.Records, grading.Practice)),
			averageCell(agg.AverageOfType(g.Records, grading.Midterm)),
			averageCell(g.CourseAverage),
			string(g.Status),
			len(g.Records),
		}
		if err := writeRow(f, CoursesSheet, row, values); err != nil {
			return nil, err
		}

		for _, r := range g.Records {
			date := ""
			if !r.EvaluationDate.IsZero() {
				date = r.EvaluationDate.Format(dateFormat)
			}
			var final any = ""
			if r.FinalAverage != nil {
				final = grading.Round(*r.FinalAverage, 2)
			}
			values := []any{
				r.ID,
				r.CourseName,
				string(r.Type),
				date,
				gradedSlots(r),
				averageCell(agg.RecordAverage(r)),
				final,
				r.Notes,
			}
			if err := writeRow(f, RecordsSheet, recordRow, values); err != nil {
				return nil, err
			}
			recordRow++
		}
	}

	summaryRows := [][]any{
		{"Overall average", averageCell(summary.OverallAverage)},
		{"Approval threshold", agg.Policy().ApprovalThreshold},
		{"Approved", summary.ApprovedCount},
		{"Failed", summary.FailedCount},
		{"Ungraded", summary.UngradedCount},
		{"Total courses", summary.TotalCourses},
	}
	for i, values := range summaryRows {
		if err := writeRow(f, SummarySheet, i+1, values); err != nil {
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteGradebook builds the gradebook and writes it to w as XLSX.
func WriteGradebook(w io.Writer, agg *grading.Aggregator, groups []grading.CourseGradeGroup, summary grading.Summary) error {
	f, err := Gradebook(agg, groups, summary)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing gradebook: %w", err)
	}
	return nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	return writeRow(f, sheet, 1, values)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("setting %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func averageCell(avg grading.Average) any {
	if !avg.HasData {
		return ""
	}
	return grading.Round(avg.Value, 2)
}

func gradedSlots(r grading.EvaluationRecord) int {
	n := 0
	for _, s := range r.Slots {
		if _, ok := s.Value(); ok {
			n++
		}
	}
	return n
}
