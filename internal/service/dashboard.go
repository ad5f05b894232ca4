package service

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/stats"
)

type Goals struct {
	DailyCalories  int
	Weight         decimal.Decimal
	WeeklyWorkouts int
}

type CalorieProgress struct {
	Latest     *int `json:"latest"`
	Goal       int  `json:"goal"`
	Percentage int  `json:"percentage"`
}

type WeightProgress struct {
	Start    *decimal.Decimal `json:"start"`
	Current  *decimal.Decimal `json:"current"`
	Goal     decimal.Decimal  `json:"goal"`
	Progress int              `json:"progress"`
}

type WorkoutProgress struct {
	ThisWeek   int `json:"thisWeek"`
	Goal       int `json:"goal"`
	Percentage int `json:"percentage"`
}

type Trend struct {
	Calories []stats.SeriesPoint `json:"calories"`
	Weight   []stats.SeriesPoint `json:"weight"`
}

type Dashboard struct {
	Calories       CalorieProgress      `json:"calories"`
	Weight         WeightProgress       `json:"weight"`
	Workouts       WorkoutProgress      `json:"workouts"`
	Trend          Trend                `json:"trend"`
	RecentActivity []stats.ActivityItem `json:"recentActivity"`
}

func percent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	p := int(math.Round(part / whole * 100))
	return max(0, min(p, 100))
}

func DashboardFor(ctx context.Context, recs Records, user *internal.User, goals Goals, now time.Time) (*Dashboard, error) {
	snap, err := load(ctx, recs, user.ID)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{
		Calories: CalorieProgress{Goal: goals.DailyCalories},
		Weight:   WeightProgress{Goal: goals.Weight},
		Workouts: WorkoutProgress{Goal: goals.WeeklyWorkouts},
	}

	// lists come back newest date first
	if len(snap.calories) > 0 {
		latest := snap.calories[0].TotalCalories
		d.Calories.Latest = &latest
		d.Calories.Percentage = percent(float64(latest), float64(goals.DailyCalories))
	}

	if ws, ok := stats.SummarizeWeights(snap.weights); ok {
		d.Weight.Start = &ws.Start
		d.Weight.Current = &ws.Current
		d.Weight.Progress = weightProgress(ws.Start, ws.Current, goals.Weight)
	}

	week := stats.FilterByWindow(snap.workouts, stats.Window7Days, now)
	d.Workouts.ThisWeek = len(week)
	d.Workouts.Percentage = percent(float64(len(week)), float64(goals.WeeklyWorkouts))

	plan := stats.LastDaysPlan(7, now)
	d.Trend.Calories = stats.Bucket(stats.CalorieSamples(snap.calories, plan), plan, stats.Sum)
	d.Trend.Weight = stats.Bucket(stats.WeightSamples(snap.weights, plan), plan, stats.Last)

	d.RecentActivity = stats.MergeRecentActivity(snap.calories, snap.weights, snap.workouts, stats.DefaultActivityLimit)
	return d, nil
}

// weightProgress is how far current has moved from start toward goal, in
// percent, clamped to 0..100.
func weightProgress(start, current, goal decimal.Decimal) int {
	span := start.Sub(goal)
	if span.IsZero() {
		if current.Equal(goal) {
			return 100
		}
		return 0
	}
	done := start.Sub(current)
	return percent(done.Div(span).InexactFloat64(), 1)
}
