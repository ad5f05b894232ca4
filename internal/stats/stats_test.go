package stats_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/stats"
)

var created = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) internal.Date { return internal.NewDate(y, m, d) }

func calorie(id int64, d internal.Date, total int) internal.CalorieEntry {
	return internal.CalorieEntry{
		Record:        internal.Record{ID: id, UserID: "u1", Date: d, CreatedAt: created},
		TotalCalories: total,
	}
}

func weight(id int64, d internal.Date, w string) internal.WeightEntry {
	return internal.WeightEntry{
		Record: internal.Record{ID: id, UserID: "u1", Date: d, CreatedAt: created},
		Weight: decimal.RequireFromString(w),
	}
}

func workout(id int64, d internal.Date, typ internal.WorkoutType, minutes int) internal.WorkoutEntry {
	return internal.WorkoutEntry{
		Record:    internal.Record{ID: id, UserID: "u1", Date: d, CreatedAt: created},
		Type:      typ,
		Duration:  minutes,
		Intensity: internal.IntensityMedium,
	}
}

func values(points []stats.SeriesPoint) []interface{} {
	out := make([]interface{}, len(points))
	for i, p := range points {
		if p.Value == nil {
			out[i] = nil
			continue
		}
		out[i] = *p.Value
	}
	return out
}

func TestSummarizeCalories(t *testing.T) {
	entries := []internal.CalorieEntry{
		calorie(1, day(2024, 1, 1), 2000),
		calorie(2, day(2024, 1, 2), 2500),
		calorie(3, day(2024, 1, 3), 1801),
	}
	got, ok := stats.SummarizeCalories(entries)
	require.True(t, ok)
	assert.Equal(t, 2100, got.Average)
	assert.Equal(t, 2500, got.Highest)
	assert.Equal(t, 1801, got.Lowest)
}

func TestSummarizeCalories_Empty(t *testing.T) {
	got, ok := stats.SummarizeCalories(nil)
	assert.False(t, ok)
	assert.Equal(t, stats.CalorieSummary{}, got)
}

func TestSummarizeWeights(t *testing.T) {
	entries := []internal.WeightEntry{
		weight(2, day(2024, 1, 5), "190"),
		weight(1, day(2024, 1, 1), "200"),
	}
	got, ok := stats.SummarizeWeights(entries)
	require.True(t, ok)
	assert.True(t, got.Start.Equal(decimal.NewFromInt(200)))
	assert.True(t, got.Current.Equal(decimal.NewFromInt(190)))
	assert.True(t, got.Change.Equal(decimal.NewFromInt(-10)), "change was %s", got.Change)
	assert.Equal(t, "190", entries[0].Weight.String(), "input must not be reordered")
}

func TestSummarizeWeights_SingleAndEmpty(t *testing.T) {
	got, ok := stats.SummarizeWeights([]internal.WeightEntry{weight(1, day(2024, 1, 1), "81.25")})
	require.True(t, ok)
	assert.True(t, got.Change.IsZero())
	assert.Equal(t, "81.25", got.Current.String())

	_, ok = stats.SummarizeWeights(nil)
	assert.False(t, ok)
}

func TestSummarizeWorkouts(t *testing.T) {
	entries := []internal.WorkoutEntry{
		workout(1, day(2024, 1, 1), internal.WorkoutCardio, 30),
		workout(2, day(2024, 1, 2), internal.WorkoutCardio, 45),
		workout(3, day(2024, 1, 3), internal.WorkoutHIIT, 20),
	}
	got, ok := stats.SummarizeWorkouts(entries)
	require.True(t, ok)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, internal.WorkoutCardio, got.MostCommonType)
	assert.Equal(t, "Cardio", got.MostCommonLabel)
	assert.Equal(t, 32, got.AvgDuration)
}

func TestSummarizeWorkouts_TieGoesToFirstSeen(t *testing.T) {
	entries := []internal.WorkoutEntry{
		workout(1, day(2024, 1, 1), internal.WorkoutHIIT, 20),
		workout(2, day(2024, 1, 2), internal.WorkoutCardio, 30),
		workout(3, day(2024, 1, 3), internal.WorkoutCardio, 30),
		workout(4, day(2024, 1, 4), internal.WorkoutHIIT, 20),
	}
	got, ok := stats.SummarizeWorkouts(entries)
	require.True(t, ok)
	assert.Equal(t, internal.WorkoutHIIT, got.MostCommonType)

	_, ok = stats.SummarizeWorkouts(nil)
	assert.False(t, ok)
}

func TestCountByType(t *testing.T) {
	entries := []internal.WorkoutEntry{
		workout(1, day(2024, 1, 1), internal.WorkoutUpper, 40),
		workout(2, day(2024, 1, 2), internal.WorkoutLower, 40),
		workout(3, day(2024, 1, 3), internal.WorkoutUpper, 40),
	}
	got := stats.CountByType(entries)
	assert.Equal(t, []stats.TypeCount{
		{Type: internal.WorkoutUpper, Label: "Upper Body", Count: 2},
		{Type: internal.WorkoutLower, Label: "Lower Body", Count: 1},
	}, got)
}

func TestFilterByWindow_SevenDaysBoundary(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	entries := []internal.CalorieEntry{
		calorie(1, day(2024, 1, 3), 1500),
		calorie(2, day(2024, 1, 2), 1600),
		calorie(3, day(2024, 1, 10), 1700),
	}
	got := stats.FilterByWindow(entries, stats.Window7Days, now)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestFilterByWindow_CalendarMonths(t *testing.T) {
	// 2024-05-31 minus 3 months normalizes Feb 31 to Mar 2 (leap year).
	now := time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC)
	entries := []internal.WeightEntry{
		weight(1, day(2024, 3, 2), "80"),
		weight(2, day(2024, 3, 1), "81"),
	}
	got := stats.FilterByWindow(entries, stats.Window3Months, now)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	all := stats.FilterByWindow(entries, stats.WindowAll, now)
	assert.Len(t, all, 2)
}

func TestParseWindow(t *testing.T) {
	w, err := stats.ParseWindow("")
	require.NoError(t, err)
	assert.Equal(t, stats.WindowAll, w)

	w, err = stats.ParseWindow("30days")
	require.NoError(t, err)
	assert.Equal(t, stats.Window30Days, w)

	_, err = stats.ParseWindow("fortnight")
	assert.ErrorIs(t, err, stats.ErrUnknownWindow)
}

func TestMergeRecentActivity_StableOnEqualCreation(t *testing.T) {
	got := stats.MergeRecentActivity(
		[]internal.CalorieEntry{calorie(1, day(2024, 1, 1), 1800)},
		[]internal.WeightEntry{weight(1, day(2024, 1, 1), "80.5")},
		[]internal.WorkoutEntry{workout(1, day(2024, 1, 1), internal.WorkoutCardio, 30)},
		0,
	)
	require.Len(t, got, 3)
	assert.Equal(t, internal.KindCalorie, got[0].Kind)
	assert.Equal(t, internal.KindWeight, got[1].Kind)
	assert.Equal(t, internal.KindWorkout, got[2].Kind)
	assert.Equal(t, "Calories Log", got[0].Metric)
	assert.Equal(t, "1800 cal", got[0].Value)
	assert.Equal(t, "Weight Log", got[1].Metric)
	assert.Equal(t, "80.5 kg", got[1].Value)
	assert.Equal(t, "Cardio", got[2].Metric)
	assert.Equal(t, "30 min", got[2].Value)
}

func TestMergeRecentActivity_NewestFirstAndLimit(t *testing.T) {
	var cals []internal.CalorieEntry
	for i := 0; i < 12; i++ {
		c := calorie(int64(i+1), day(2024, 1, 1), 1000+i)
		c.CreatedAt = created.Add(time.Duration(i) * time.Minute)
		cals = append(cals, c)
	}
	w := weight(1, day(2023, 12, 1), "90")
	w.CreatedAt = created.Add(time.Hour)

	got := stats.MergeRecentActivity(cals, []internal.WeightEntry{w}, nil, 0)
	require.Len(t, got, stats.DefaultActivityLimit)
	assert.Equal(t, internal.KindWeight, got[0].Kind, "sorted by creation, not by logical date")
	assert.Equal(t, int64(12), got[1].ID)

	got = stats.MergeRecentActivity(cals, nil, nil, 3)
	assert.Len(t, got, 3)
}

func TestCorrelate_InnerJoin(t *testing.T) {
	cals := []internal.CalorieEntry{
		calorie(1, day(2024, 1, 2), 2200),
		calorie(2, day(2024, 1, 1), 2000),
	}
	weights := []internal.WeightEntry{
		weight(1, day(2024, 1, 1), "80"),
		weight(2, day(2024, 1, 3), "79"),
	}
	got := stats.Correlate(stats.CalorieValues(cals), stats.WeightValues(weights))
	require.Len(t, got, 1)
	assert.Equal(t, day(2024, 1, 1), got[0].Date)
	assert.Equal(t, 2000.0, got[0].X)
	assert.Equal(t, 80.0, got[0].Y)
}

func TestBucket_WeeklySumFillsEmptyDays(t *testing.T) {
	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC) // Wednesday
	plan := stats.PlanFor(stats.TimeframeWeekly, now)
	entries := []internal.CalorieEntry{
		calorie(1, day(2024, 1, 8), 2000),
		calorie(2, day(2024, 1, 8), 500),
		calorie(3, day(2024, 1, 10), 1800),
		calorie(4, day(2024, 1, 20), 9999),
	}
	got := stats.Bucket(stats.CalorieSamples(entries, plan), plan, stats.Sum)
	require.Len(t, got, 7)
	assert.Equal(t, "Sun", got[0].Label)
	assert.Equal(t, "Sat", got[6].Label)
	assert.Equal(t, []interface{}{0.0, 2500.0, 0.0, 1800.0, 0.0, 0.0, 0.0}, values(got))
}

func TestBucket_LastLeavesGaps(t *testing.T) {
	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	plan := stats.PlanFor(stats.TimeframeWeekly, now)
	entries := []internal.WeightEntry{
		weight(1, day(2024, 1, 8), "80"),
		weight(2, day(2024, 1, 8), "79.5"),
	}
	got := stats.Bucket(stats.WeightSamples(entries, plan), plan, stats.Last)
	assert.Equal(t, []interface{}{nil, 79.5, nil, nil, nil, nil, nil}, values(got))
}

func TestBucket_CountAndHourly(t *testing.T) {
	now := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)
	plan := stats.PlanFor(stats.TimeframeDaily, now)
	w := workout(1, day(2024, 1, 10), internal.WorkoutFull, 50)
	w.CreatedAt = time.Date(2024, 1, 10, 14, 30, 0, 0, time.UTC)
	got := stats.Bucket(stats.WorkoutSamples([]internal.WorkoutEntry{w}, plan), plan, stats.Count)
	require.Len(t, got, 24)
	assert.Equal(t, "14:00", got[14].Label)
	assert.Equal(t, 1.0, *got[14].Value)
	assert.Equal(t, 0.0, *got[13].Value)
}

func TestPlanFor_MonthlyAndYearly(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	monthly := stats.PlanFor(stats.TimeframeMonthly, now).Buckets()
	require.Len(t, monthly, 9)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), monthly[0])
	assert.Equal(t, time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC), monthly[8])

	yearly := stats.Bucket(nil, stats.PlanFor(stats.TimeframeYearly, now), stats.Count)
	require.Len(t, yearly, 12)
	assert.Equal(t, "Jan", yearly[0].Label)
	assert.Equal(t, "Dec", yearly[11].Label)
}

func TestParseTimeframe(t *testing.T) {
	tf, err := stats.ParseTimeframe("")
	require.NoError(t, err)
	assert.Equal(t, stats.TimeframeWeekly, tf)

	_, err = stats.ParseTimeframe("hourly")
	assert.ErrorIs(t, err, stats.ErrUnknownTimeframe)
}
