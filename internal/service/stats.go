package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/stats"
	"github.com/yourname/fittrack/internal/storage"
)

// Records is the read side every aggregate view needs.
type Records interface {
	storage.CalorieRepository
	storage.WeightRepository
	storage.WorkoutRepository
}

type snapshot struct {
	calories []internal.CalorieEntry
	weights  []internal.WeightEntry
	workouts []internal.WorkoutEntry
}

// load fetches all three lists; nothing is computed unless every one of
// them arrived.
func load(ctx context.Context, recs Records, userID string) (*snapshot, error) {
	cals, err := recs.ListCalories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list calories: %w", err)
	}
	weights, err := recs.ListWeights(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}
	workouts, err := recs.ListWorkouts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return &snapshot{calories: cals, weights: weights, workouts: workouts}, nil
}

func (s *snapshot) window(w stats.Window, now time.Time) *snapshot {
	return &snapshot{
		calories: stats.FilterByWindow(s.calories, w, now),
		weights:  stats.FilterByWindow(s.weights, w, now),
		workouts: stats.FilterByWindow(s.workouts, w, now),
	}
}

// MacroTotals sums macronutrients; entries without a value count as 0.
type MacroTotals struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

type Statistics struct {
	Timeframe   stats.Timeframe `json:"timeframe"`
	Window      stats.Window    `json:"window"`
	GeneratedAt time.Time       `json:"generatedAt"`

	// nil means no entries in the window
	Calories *stats.CalorieSummary `json:"calories"`
	Weight   *stats.WeightSummary  `json:"weight"`
	Workouts *stats.WorkoutSummary `json:"workouts"`
	Macros   MacroTotals           `json:"macros"`

	CalorieSeries    []stats.SeriesPoint      `json:"calorieSeries"`
	WeightSeries     []stats.SeriesPoint      `json:"weightSeries"`
	WorkoutFrequency []stats.SeriesPoint      `json:"workoutFrequency"`
	WorkoutMinutes   []stats.SeriesPoint      `json:"workoutMinutes"`
	WorkoutTypes     []stats.TypeCount        `json:"workoutTypes"`
	Correlation      []stats.CorrelationPoint `json:"correlation"`
}

func summary[T any](s T, ok bool) *T {
	if !ok {
		return nil
	}
	return &s
}

func macroTotals(entries []internal.CalorieEntry) MacroTotals {
	var m MacroTotals
	orZero := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	}
	for _, e := range entries {
		m.Protein += orZero(e.Protein)
		m.Carbs += orZero(e.Carbs)
		m.Fat += orZero(e.Fat)
	}
	return m
}

// StatisticsFor computes the statistics page for one user at now.
func StatisticsFor(ctx context.Context, recs Records, user *internal.User, tf stats.Timeframe, w stats.Window, now time.Time) (*Statistics, error) {
	all, err := load(ctx, recs, user.ID)
	if err != nil {
		return nil, err
	}
	snap := all.window(w, now)
	plan := stats.PlanFor(tf, now)
	workoutSamples := stats.WorkoutSamples(snap.workouts, plan)

	out := &Statistics{
		Timeframe:        tf,
		Window:           w,
		GeneratedAt:      now,
		Calories:         summary(stats.SummarizeCalories(snap.calories)),
		Weight:           summary(stats.SummarizeWeights(snap.weights)),
		Workouts:         summary(stats.SummarizeWorkouts(snap.workouts)),
		Macros:           macroTotals(snap.calories),
		CalorieSeries:    stats.Bucket(stats.CalorieSamples(snap.calories, plan), plan, stats.Sum),
		WeightSeries:     stats.Bucket(stats.WeightSamples(snap.weights, plan), plan, stats.Last),
		WorkoutFrequency: stats.Bucket(workoutSamples, plan, stats.Count),
		WorkoutMinutes:   stats.Bucket(workoutSamples, plan, stats.Sum),
		WorkoutTypes:     stats.CountByType(snap.workouts),
		Correlation:      stats.Correlate(stats.CalorieValues(snap.calories), stats.WeightValues(snap.weights)),
	}
	if out.WorkoutTypes == nil {
		out.WorkoutTypes = []stats.TypeCount{}
	}
	if out.Correlation == nil {
		out.Correlation = []stats.CorrelationPoint{}
	}
	return out, nil
}

// RecentActivity merges the newest entries of every kind.
func RecentActivity(ctx context.Context, recs Records, user *internal.User, limit int) ([]stats.ActivityItem, error) {
	snap, err := load(ctx, recs, user.ID)
	if err != nil {
		return nil, err
	}
	return stats.MergeRecentActivity(snap.calories, snap.weights, snap.workouts, limit), nil
}
