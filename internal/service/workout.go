package service

import (
	"context"
	"time"

	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/stats"
	"github.com/yourname/fittrack/internal/storage"
)

type WorkoutRequest struct {
	Date      string  `json:"date" validate:"required"`
	Type      string  `json:"type" validate:"required,oneof=upper lower full cardio hiit other"`
	Duration  int     `json:"duration" validate:"required,gte=1,lte=1440"`
	Intensity string  `json:"intensity" validate:"required,oneof=low medium high"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type WorkoutUpdate struct {
	Date      *string `json:"date,omitempty"`
	Type      *string `json:"type,omitempty" validate:"omitempty,oneof=upper lower full cardio hiit other"`
	Duration  *int    `json:"duration,omitempty" validate:"omitempty,gte=1,lte=1440"`
	Intensity *string `json:"intensity,omitempty" validate:"omitempty,oneof=low medium high"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func CreateWorkout(ctx context.Context, repo storage.WorkoutRepository, user *internal.User, req *WorkoutRequest) (*internal.WorkoutEntry, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	e := &internal.WorkoutEntry{
		Record:    internal.Record{UserID: user.ID, Date: date},
		Type:      internal.WorkoutType(req.Type),
		Duration:  req.Duration,
		Intensity: internal.Intensity(req.Intensity),
		Notes:     req.Notes,
	}
	if err := repo.CreateWorkout(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func GetWorkout(ctx context.Context, repo storage.WorkoutRepository, user *internal.User, id int64) (*internal.WorkoutEntry, error) {
	e, err := repo.GetWorkout(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(&e.Record, user); err != nil {
		return nil, err
	}
	return e, nil
}

func UpdateWorkout(ctx context.Context, repo storage.WorkoutRepository, user *internal.User, id int64, req *WorkoutUpdate) (*internal.WorkoutEntry, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	e, err := GetWorkout(ctx, repo, user, id)
	if err != nil {
		return nil, err
	}
	if req.Date != nil {
		if e.Date, err = parseDate("date", *req.Date); err != nil {
			return nil, err
		}
	}
	if req.Type != nil {
		e.Type = internal.WorkoutType(*req.Type)
	}
	if req.Duration != nil {
		e.Duration = *req.Duration
	}
	if req.Intensity != nil {
		e.Intensity = internal.Intensity(*req.Intensity)
	}
	if req.Notes != nil {
		e.Notes = req.Notes
	}
	if err := repo.UpdateWorkout(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func DeleteWorkout(ctx context.Context, repo storage.WorkoutRepository, user *internal.User, id int64) error {
	if _, err := GetWorkout(ctx, repo, user, id); err != nil {
		return err
	}
	return repo.DeleteWorkout(ctx, id)
}

func ListWorkouts(ctx context.Context, repo storage.WorkoutRepository, user *internal.User, w stats.Window, now time.Time) ([]internal.WorkoutEntry, error) {
	entries, err := repo.ListWorkouts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return stats.FilterByWindow(entries, w, now), nil
}

func WorkoutsInRange(ctx context.Context, repo storage.WorkoutRepository, user *internal.User, start, end string) ([]internal.WorkoutEntry, error) {
	from, to, err := ParseRange(start, end)
	if err != nil {
		return nil, err
	}
	return repo.ListWorkoutsInRange(ctx, user.ID, from, to)
}
