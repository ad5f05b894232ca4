package stats

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/yourname/fittrack/internal"
)

type CalorieSummary struct {
	Average int `json:"average"`
	Highest int `json:"highest"`
	Lowest  int `json:"lowest"`
}

type WeightSummary struct {
	Start   decimal.Decimal `json:"start"`
	Current decimal.Decimal `json:"current"`
	Change  decimal.Decimal `json:"change"`
}

type WorkoutSummary struct {
	Total           int                  `json:"total"`
	MostCommonType  internal.WorkoutType `json:"mostCommonType"`
	MostCommonLabel string               `json:"mostCommonLabel"`
	AvgDuration     int                  `json:"avgDuration"`
}

// TypeCount is one slice of the workout type breakdown.
type TypeCount struct {
	Type  internal.WorkoutType `json:"type"`
	Label string               `json:"label"`
	Count int                  `json:"count"`
}

// SummarizeCalories reports ok=false for an empty list.
func SummarizeCalories(entries []internal.CalorieEntry) (CalorieSummary, bool) {
	if len(entries) == 0 {
		return CalorieSummary{}, false
	}
	sum := 0
	out := CalorieSummary{Highest: entries[0].TotalCalories, Lowest: entries[0].TotalCalories}
	for _, e := range entries {
		sum += e.TotalCalories
		if e.TotalCalories > out.Highest {
			out.Highest = e.TotalCalories
		}
		if e.TotalCalories < out.Lowest {
			out.Lowest = e.TotalCalories
		}
	}
	out.Average = roundedMean(sum, len(entries))
	return out, true
}

// SummarizeWeights orders entries by date; equal dates keep input order.
func SummarizeWeights(entries []internal.WeightEntry) (WeightSummary, bool) {
	if len(entries) == 0 {
		return WeightSummary{}, false
	}
	sorted := make([]internal.WeightEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	start := sorted[0].Weight
	current := sorted[len(sorted)-1].Weight
	return WeightSummary{
		Start:   start,
		Current: current,
		Change:  current.Sub(start),
	}, true
}

// SummarizeWorkouts picks the most frequent type, breaking ties in favour of
// the type seen first in entries.
func SummarizeWorkouts(entries []internal.WorkoutEntry) (WorkoutSummary, bool) {
	if len(entries) == 0 {
		return WorkoutSummary{}, false
	}
	total := 0
	for _, e := range entries {
		total += e.Duration
	}
	var best TypeCount
	for _, tc := range CountByType(entries) {
		if tc.Count > best.Count {
			best = tc
		}
	}
	return WorkoutSummary{
		Total:           len(entries),
		MostCommonType:  best.Type,
		MostCommonLabel: best.Label,
		AvgDuration:     roundedMean(total, len(entries)),
	}, true
}

// CountByType counts workouts per type in first-seen order.
func CountByType(entries []internal.WorkoutEntry) []TypeCount {
	index := make(map[internal.WorkoutType]int)
	var out []TypeCount
	for _, e := range entries {
		i, ok := index[e.Type]
		if !ok {
			i = len(out)
			index[e.Type] = i
			out = append(out, TypeCount{Type: e.Type, Label: e.Type.Label()})
		}
		out[i].Count++
	}
	return out
}

func roundedMean(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}
