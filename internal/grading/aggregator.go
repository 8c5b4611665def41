package grading

// Status is the approval state of a course.
type Status string

const (
	Approved Status = "APPROVED"
	Failed   Status = "FAILED"
	Ungraded Status = "UNGRADED"
)

// TypeCompleteness compares the graded slots of one category with the expected count.
type TypeCompleteness struct {
	Actual     int  `json:"actual"`
	Expected   int  `json:"expected"`
	IsComplete bool `json:"is_complete"`
}

// Completeness reports how much of a course-cycle's evaluation structure is graded.
type Completeness struct {
	Types      map[EvaluationType]TypeCompleteness `json:"types"`
	IsComplete bool                                `json:"is_complete"`
}

// CourseGradeGroup is the records of one course with their computed average.
type CourseGradeGroup struct {
	CourseID      string             `json:"course_id"`
	CourseName    string             `json:"course_name"`
	TeacherName   string             `json:"teacher_name"`
	CycleName     string             `json:"cycle_name"`
	Records       []EvaluationRecord `json:"records"`
	CourseAverage Average            `json:"course_average"`
	Status        Status             `json:"status"`
}

// Summary aggregates course averages across groups.
type Summary struct {
	OverallAverage Average `json:"overall_average"`
	ApprovedCount  int     `json:"approved_count"`
	FailedCount    int     `json:"failed_count"`
	UngradedCount  int     `json:"ungraded_count"`
	TotalCourses   int     `json:"total_courses"`
}

// Aggregator computes averages, approval and statistics under a Policy.
// It holds no mutable state and is safe for concurrent use.
type Aggregator struct {
	policy Policy
	course AveragingPolicy
	record AveragingPolicy
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithCourseAveraging replaces the cross-record strategy (CategoryWeighted by default).
func WithCourseAveraging(p AveragingPolicy) Option {
	return func(a *Aggregator) { a.course = p }
}

// WithRecordAveraging replaces the single-record strategy (DirectMean by default).
func WithRecordAveraging(p AveragingPolicy) Option {
	return func(a *Aggregator) { a.record = p }
}

// NewAggregator creates an aggregator for the given policy.
func NewAggregator(policy Policy, opts ...Option) *Aggregator {
	a := &Aggregator{
		policy: policy,
		course: CategoryWeighted{Weights: policy.Weights},
		record: DirectMean{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Policy returns the policy the aggregator was built with.
func (a *Aggregator) Policy() Policy {
	return a.policy
}

// AverageOfType is the mean of every graded score of category t across records.
func (a *Aggregator) AverageOfType(records []EvaluationRecord, t EvaluationType) Average {
	return meanOfType(records, t)
}

// CourseAverage combines records of one course with the cross-record strategy.
func (a *Aggregator) CourseAverage(records []EvaluationRecord) Average {
	return a.course.Average(records)
}

// RecordAverage averages a single record's own slots.
func (a *Aggregator) RecordAverage(r EvaluationRecord) Average {
	return a.record.Average([]EvaluationRecord{r})
}

// ApprovalStatus maps an average onto the approval threshold.
func (a *Aggregator) ApprovalStatus(avg Average) Status {
	switch {
	case !avg.HasData:
		return Ungraded
	case avg.Value >= a.policy.ApprovalThreshold:
		return Approved
	default:
		return Failed
	}
}

// StructureCompleteness counts graded slots per category against the expected counts
// of a whole course-cycle.
func (a *Aggregator) StructureCompleteness(records []EvaluationRecord) Completeness {
	return completeness(records, a.policy.ExpectedSlots)
}

// RecordCompleteness checks one record against the per-evaluation structure: the
// weekly category expects WeeklySlotsPerRecord slots, the others their full counts.
func (a *Aggregator) RecordCompleteness(r EvaluationRecord) Completeness {
	expected := make(map[EvaluationType]int, len(a.policy.ExpectedSlots))
	for t, n := range a.policy.ExpectedSlots {
		expected[t] = n
	}
	expected[Weekly] = a.policy.WeeklySlotsPerRecord
	return completeness([]EvaluationRecord{r}, expected)
}

func completeness(records []EvaluationRecord, expected map[EvaluationType]int) Completeness {
	c := Completeness{
		Types:      make(map[EvaluationType]TypeCompleteness, len(EvaluationTypes)),
		IsComplete: true,
	}
	for _, t := range EvaluationTypes {
		actual := 0
		for _, r := range records {
			actual += len(r.Scores(t))
		}
		tc := TypeCompleteness{
			Actual:     actual,
			Expected:   expected[t],
			IsComplete: actual >= expected[t],
		}
		c.Types[t] = tc
		if !tc.IsComplete {
			c.IsComplete = false
		}
	}
	return c
}

// SummaryStatistics averages the course averages of groups. Every graded course weighs
// the same; ungraded courses are counted but stay out of the overall mean.
func (a *Aggregator) SummaryStatistics(groups []CourseGradeGroup) Summary {
	s := Summary{TotalCourses: len(groups)}

	var sum float64
	var graded int
	for _, g := range groups {
		switch a.ApprovalStatus(g.CourseAverage) {
		case Approved:
			s.ApprovedCount++
		case Failed:
			s.FailedCount++
		default:
			s.UngradedCount++
			continue
		}
		sum += g.CourseAverage.Value
		graded++
	}

	if graded > 0 {
		s.OverallAverage = Average{Value: sum / float64(graded), HasData: true}
	}
	return s
}

// GroupByCourse partitions records by CourseID, keeping the order in which courses
// first appear, and computes each group's average and status.
func (a *Aggregator) GroupByCourse(records []EvaluationRecord) []CourseGradeGroup {
	index := make(map[string]int)
	var groups []CourseGradeGroup

	for _, r := range records {
		i, ok := index[r.CourseID]
		if !ok {
			i = len(groups)
			index[r.CourseID] = i
			groups = append(groups, CourseGradeGroup{
				CourseID:    r.CourseID,
				CourseName:  r.CourseName,
				TeacherName: r.TeacherName,
				CycleName:   r.CycleName,
			})
		}
		groups[i].Records = append(groups[i].Records, r)
	}

	for i := range groups {
		groups[i].CourseAverage = a.CourseAverage(groups[i].Records)
		groups[i].Status = a.ApprovalStatus(groups[i].CourseAverage)
	}
	return groups
}
