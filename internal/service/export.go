package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/storage"
)

// ExportDocument is a raw dump of a user's records, unfiltered.
type ExportDocument struct {
	Calories   []internal.CalorieEntry `json:"calories"`
	Weights    []internal.WeightEntry  `json:"weights"`
	Workouts   []internal.WorkoutEntry `json:"workouts"`
	ExportDate time.Time               `json:"exportDate"`
}

type ImportResult struct {
	Calories int  `json:"calories"`
	Weights  int  `json:"weights"`
	Workouts int  `json:"workouts"`
	Merged   int  `json:"merged"`  // weights that updated an existing date
	Skipped  int  `json:"skipped"` // weights dropped by the reject policy
	DryRun   bool `json:"dryRun"`
}

// ExportFilename is the attachment name for an export taken at now.
func ExportFilename(now time.Time) string {
	return "fittrack-export-" + now.Format(internal.DateLayout) + ".json"
}

func Export(ctx context.Context, recs Records, user *internal.User, now time.Time) (*ExportDocument, error) {
	snap, err := load(ctx, recs, user.ID)
	if err != nil {
		return nil, err
	}
	return &ExportDocument{
		Calories:   snap.calories,
		Weights:    snap.weights,
		Workouts:   snap.workouts,
		ExportDate: now,
	}, nil
}

// Import recreates every record of doc for user. Ids and creation times
// are reassigned; numeric fields are stored exactly as given. The whole
// document is checked before anything is written.
func Import(ctx context.Context, recs Records, user *internal.User, doc *ExportDocument, policy DuplicatePolicy, dryRun bool) (*ImportResult, error) {
	if err := checkDocument(doc); err != nil {
		return nil, err
	}
	res := &ImportResult{DryRun: dryRun}
	if dryRun {
		res.Calories, res.Weights, res.Workouts = len(doc.Calories), len(doc.Weights), len(doc.Workouts)
		return res, nil
	}

	for _, e := range doc.Calories {
		e.Record = internal.Record{UserID: user.ID, Date: e.Date}
		if err := recs.CreateCalorie(ctx, &e); err != nil {
			return res, fmt.Errorf("import calorie entry for %s: %w", e.Date, err)
		}
		res.Calories++
	}
	for _, e := range doc.Weights {
		e.Record = internal.Record{UserID: user.ID, Date: e.Date}
		existing, err := recs.FindWeightByDate(ctx, user.ID, e.Date)
		switch {
		case err == nil && policy == DuplicateReject:
			res.Skipped++
			continue
		case err == nil:
			existing.Weight = e.Weight
			if e.Notes != nil {
				existing.Notes = e.Notes
			}
			if err := recs.UpdateWeight(ctx, existing); err != nil {
				return res, fmt.Errorf("merge weight entry for %s: %w", e.Date, err)
			}
			res.Merged++
			continue
		case !errors.Is(err, storage.ErrNotFound):
			return res, err
		}
		if err := recs.CreateWeight(ctx, &e); err != nil {
			return res, fmt.Errorf("import weight entry for %s: %w", e.Date, err)
		}
		res.Weights++
	}
	for _, e := range doc.Workouts {
		e.Record = internal.Record{UserID: user.ID, Date: e.Date}
		if err := recs.CreateWorkout(ctx, &e); err != nil {
			return res, fmt.Errorf("import workout entry for %s: %w", e.Date, err)
		}
		res.Workouts++
	}
	return res, nil
}

func checkDocument(doc *ExportDocument) error {
	if doc == nil {
		return invalid("empty document")
	}
	for i, e := range doc.Calories {
		switch {
		case e.Date.IsZero():
			return invalid("calories[%d]: missing date", i)
		case e.TotalCalories < 1:
			return invalid("calories[%d]: totalCalories must be at least 1", i)
		case negative(e.Protein) || negative(e.Carbs) || negative(e.Fat):
			return invalid("calories[%d]: macros must not be negative", i)
		}
	}
	seen := make(map[internal.Date]bool, len(doc.Weights))
	for i, e := range doc.Weights {
		if e.Date.IsZero() {
			return invalid("weights[%d]: missing date", i)
		}
		if seen[e.Date] {
			return invalid("weights[%d]: duplicate date %s", i, e.Date)
		}
		seen[e.Date] = true
		w, err := normalizeWeight(e.Weight)
		if err != nil {
			return invalid("weights[%d]: weight out of range", i)
		}
		if !w.Equal(e.Weight) {
			return invalid("weights[%d]: weight %s has more than 2 decimal places", i, e.Weight)
		}
	}
	for i, e := range doc.Workouts {
		switch {
		case e.Date.IsZero():
			return invalid("workouts[%d]: missing date", i)
		case e.Duration < 1:
			return invalid("workouts[%d]: duration must be at least 1", i)
		case !knownWorkoutType(e.Type):
			return invalid("workouts[%d]: unknown type %q", i, e.Type)
		case e.Intensity != internal.IntensityLow && e.Intensity != internal.IntensityMedium && e.Intensity != internal.IntensityHigh:
			return invalid("workouts[%d]: unknown intensity %q", i, e.Intensity)
		}
	}
	return nil
}

func negative(v *float64) bool { return v != nil && *v < 0 }

func knownWorkoutType(t internal.WorkoutType) bool {
	switch t {
	case internal.WorkoutUpper, internal.WorkoutLower, internal.WorkoutFull,
		internal.WorkoutCardio, internal.WorkoutHIIT, internal.WorkoutOther:
		return true
	}
	return false
}
