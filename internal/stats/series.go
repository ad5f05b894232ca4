package stats

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yourname/fittrack/internal"
)

var ErrUnknownTimeframe = errors.New("stats: unknown timeframe")

// Timeframe selects the chart range and its bucket size.
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
	TimeframeYearly  Timeframe = "yearly"
)

// ParseTimeframe defaults to weekly for an empty value.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(s); tf {
	case "":
		return TimeframeWeekly, nil
	case TimeframeDaily, TimeframeWeekly, TimeframeMonthly, TimeframeYearly:
		return tf, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTimeframe, s)
	}
}

type Granularity int

const (
	Hour Granularity = iota
	Day
	Week
	Month
)

// Plan is a half-open range [Start, End) cut into fixed buckets.
type Plan struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
	Layout      string
}

// PlanFor derives the chart range for tf around now. Weeks start on Sunday.
func PlanFor(tf Timeframe, now time.Time) Plan {
	today := startOfDay(now)
	switch tf {
	case TimeframeDaily:
		return Plan{Start: today, End: today.AddDate(0, 0, 1), Granularity: Hour, Layout: "15:04"}
	case TimeframeMonthly:
		thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Plan{Start: thisMonth.AddDate(0, -1, 0), End: thisMonth.AddDate(0, 1, 0), Granularity: Week, Layout: "Jan 02"}
	case TimeframeYearly:
		jan1 := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Plan{Start: jan1, End: jan1.AddDate(1, 0, 0), Granularity: Month, Layout: "Jan"}
	default:
		sunday := today.AddDate(0, 0, -int(today.Weekday()))
		return Plan{Start: sunday, End: sunday.AddDate(0, 0, 7), Granularity: Day, Layout: "Mon"}
	}
}

// LastDaysPlan covers the n calendar days ending today, one bucket per day.
func LastDaysPlan(n int, now time.Time) Plan {
	today := startOfDay(now)
	return Plan{Start: today.AddDate(0, 0, 1-n), End: today.AddDate(0, 0, 1), Granularity: Day, Layout: "Mon"}
}

func (p Plan) next(t time.Time) time.Time {
	switch p.Granularity {
	case Hour:
		return t.Add(time.Hour)
	case Week:
		return t.AddDate(0, 0, 7)
	case Month:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Buckets returns the start instant of every bucket in ascending order.
func (p Plan) Buckets() []time.Time {
	var out []time.Time
	for t := p.Start; t.Before(p.End); t = p.next(t) {
		out = append(out, t)
	}
	return out
}

// Instant places a record on the plan's time axis. Records only carry a
// calendar date, so hourly plans borrow the clock time of CreatedAt.
func (p Plan) Instant(d internal.Date, createdAt time.Time) time.Time {
	loc := p.Start.Location()
	midnight := d.In(loc)
	if p.Granularity != Hour || createdAt.IsZero() {
		return midnight
	}
	c := createdAt.In(loc)
	return midnight.Add(time.Duration(c.Hour())*time.Hour + time.Duration(c.Minute())*time.Minute)
}

// Mode decides how a bucket folds its samples and what an empty bucket holds.
type Mode int

const (
	Sum   Mode = iota // empty bucket is 0
	Count             // empty bucket is 0
	Last              // empty bucket is nil
)

type Sample struct {
	At    time.Time
	Value float64
}

// SeriesPoint is one chart-ready bucket. A nil Value means no observation.
type SeriesPoint struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// Bucket folds samples into one point per plan bucket, in chronological
// order. Samples outside the plan are ignored.
func Bucket(samples []Sample, plan Plan, mode Mode) []SeriesPoint {
	starts := plan.Buckets()
	points := make([]SeriesPoint, len(starts))
	for i, s := range starts {
		points[i].Label = s.Format(plan.Layout)
		if mode != Last {
			zero := 0.0
			points[i].Value = &zero
		}
	}

	ordered := make([]Sample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].At.Before(ordered[j].At) })

	for _, s := range ordered {
		if s.At.Before(plan.Start) || !s.At.Before(plan.End) {
			continue
		}
		i := sort.Search(len(starts), func(i int) bool { return starts[i].After(s.At) }) - 1
		if i < 0 {
			continue
		}
		v := s.Value
		switch mode {
		case Sum:
			*points[i].Value += v
		case Count:
			*points[i].Value++
		case Last:
			points[i].Value = &v
		}
	}
	return points
}

func CalorieSamples(entries []internal.CalorieEntry, plan Plan) []Sample {
	out := make([]Sample, 0, len(entries))
	for _, e := range entries {
		out = append(out, Sample{At: plan.Instant(e.Date, e.CreatedAt), Value: float64(e.TotalCalories)})
	}
	return out
}

func WeightSamples(entries []internal.WeightEntry, plan Plan) []Sample {
	out := make([]Sample, 0, len(entries))
	for _, e := range entries {
		out = append(out, Sample{At: plan.Instant(e.Date, e.CreatedAt), Value: e.Weight.InexactFloat64()})
	}
	return out
}

// WorkoutSamples carries the duration as value so the same samples serve
// both a Count (frequency) and a Sum (minutes) series.
func WorkoutSamples(entries []internal.WorkoutEntry, plan Plan) []Sample {
	out := make([]Sample, 0, len(entries))
	for _, e := range entries {
		out = append(out, Sample{At: plan.Instant(e.Date, e.CreatedAt), Value: float64(e.Duration)})
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
