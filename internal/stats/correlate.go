package stats

import (
	"sort"

	"github.com/yourname/fittrack/internal"
)

type DatedValue struct {
	Date  internal.Date
	Value float64
}

type CorrelationPoint struct {
	Date internal.Date `json:"date"`
	X    float64       `json:"x"`
	Y    float64       `json:"y"`
}

// Correlate pairs xs with ys on calendar date (inner join). Dates missing on
// either side are dropped, never imputed. When ys holds several values for
// one date the last one wins; every x on a matched date yields a point.
func Correlate(xs, ys []DatedValue) []CorrelationPoint {
	byDate := make(map[internal.Date]float64, len(ys))
	for _, y := range ys {
		byDate[y.Date] = y.Value
	}
	var out []CorrelationPoint
	for _, x := range xs {
		y, ok := byDate[x.Date]
		if !ok {
			continue
		}
		out = append(out, CorrelationPoint{Date: x.Date, X: x.Value, Y: y})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func CalorieValues(entries []internal.CalorieEntry) []DatedValue {
	out := make([]DatedValue, 0, len(entries))
	for _, e := range entries {
		out = append(out, DatedValue{Date: e.Date, Value: float64(e.TotalCalories)})
	}
	return out
}

func WeightValues(entries []internal.WeightEntry) []DatedValue {
	out := make([]DatedValue, 0, len(entries))
	for _, e := range entries {
		out = append(out, DatedValue{Date: e.Date, Value: e.Weight.InexactFloat64()})
	}
	return out
}
