package grading

import "math"

// Average is the result of a mean. Value is 0 when HasData is false, so callers must
// check HasData to tell "nothing graded" from "graded zero".
type Average struct {
	Value   float64 `json:"value"`
	HasData bool    `json:"has_data"`
}

// AveragingPolicy reduces a set of records to one average.
type AveragingPolicy interface {
	Name() string
	Average(records []EvaluationRecord) Average
}

// CategoryWeighted combines the per-category means with fixed weights. A category
// without scores contributes nothing.
type CategoryWeighted struct {
	Weights map[EvaluationType]float64
}

func (CategoryWeighted) Name() string { return "category_weighted" }

func (p CategoryWeighted) Average(records []EvaluationRecord) Average {
	var total float64
	var hasData bool
	for _, t := range EvaluationTypes {
		avg := meanOfType(records, t)
		if !avg.HasData {
			continue
		}
		hasData = true
		total += avg.Value * p.Weights[t]
	}
	if !hasData {
		return Average{}
	}
	return Average{Value: total, HasData: true}
}

// DirectMean is the plain mean of every graded slot, regardless of category.
type DirectMean struct{}

func (DirectMean) Name() string { return "direct_mean" }

func (DirectMean) Average(records []EvaluationRecord) Average {
	var sum float64
	var n int
	for _, r := range records {
		for _, s := range r.Slots {
			if v, ok := s.Value(); ok {
				sum += v
				n++
			}
		}
	}
	if n == 0 {
		return Average{}
	}
	return Average{Value: sum / float64(n), HasData: true}
}

func meanOfType(records []EvaluationRecord, t EvaluationType) Average {
	var sum float64
	var n int
	for _, r := range records {
		for _, v := range r.Scores(t) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return Average{}
	}
	return Average{Value: sum / float64(n), HasData: true}
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
