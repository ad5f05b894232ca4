package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/yourname/fittrack/internal"
)

const DefaultActivityLimit = 10

// ActivityItem is one row of the merged recent-activity feed.
type ActivityItem struct {
	ID        int64               `json:"id"`
	Kind      internal.RecordKind `json:"type"`
	Date      internal.Date       `json:"date"`
	Metric    string              `json:"metric"`
	Value     string              `json:"value"`
	CreatedAt time.Time           `json:"createdAt"`
}

// MergeRecentActivity orders all three kinds by creation time, newest first.
// Entries created at the same instant keep the calorie, weight, workout
// concatenation order. A non-positive limit uses DefaultActivityLimit.
func MergeRecentActivity(
	calories []internal.CalorieEntry,
	weights []internal.WeightEntry,
	workouts []internal.WorkoutEntry,
	limit int,
) []ActivityItem {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	items := make([]ActivityItem, 0, len(calories)+len(weights)+len(workouts))
	for _, e := range calories {
		items = append(items, ActivityItem{
			ID: e.ID, Kind: internal.KindCalorie, Date: e.Date, CreatedAt: e.CreatedAt,
			Metric: "Calories Log",
			Value:  fmt.Sprintf("%d cal", e.TotalCalories),
		})
	}
	for _, e := range weights {
		items = append(items, ActivityItem{
			ID: e.ID, Kind: internal.KindWeight, Date: e.Date, CreatedAt: e.CreatedAt,
			Metric: "Weight Log",
			Value:  e.Weight.String() + " kg",
		})
	}
	for _, e := range workouts {
		items = append(items, ActivityItem{
			ID: e.ID, Kind: internal.KindWorkout, Date: e.Date, CreatedAt: e.CreatedAt,
			Metric: e.Type.Label(),
			Value:  fmt.Sprintf("%d min", e.Duration),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
