package service

import (
	"context"
	"time"

	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/stats"
	"github.com/yourname/fittrack/internal/storage"
)

type CalorieRequest struct {
	Date          string   `json:"date" validate:"required"`
	TotalCalories int      `json:"totalCalories" validate:"required,gte=1"`
	Protein       *float64 `json:"protein,omitempty" validate:"omitempty,gte=0"`
	Carbs         *float64 `json:"carbs,omitempty" validate:"omitempty,gte=0"`
	Fat           *float64 `json:"fat,omitempty" validate:"omitempty,gte=0"`
	Notes         *string  `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// CalorieUpdate carries only the fields the client sent.
type CalorieUpdate struct {
	Date          *string  `json:"date,omitempty"`
	TotalCalories *int     `json:"totalCalories,omitempty" validate:"omitempty,gte=1"`
	Protein       *float64 `json:"protein,omitempty" validate:"omitempty,gte=0"`
	Carbs         *float64 `json:"carbs,omitempty" validate:"omitempty,gte=0"`
	Fat           *float64 `json:"fat,omitempty" validate:"omitempty,gte=0"`
	Notes         *string  `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func CreateCalorie(ctx context.Context, repo storage.CalorieRepository, user *internal.User, req *CalorieRequest) (*internal.CalorieEntry, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	e := &internal.CalorieEntry{
		Record:        internal.Record{UserID: user.ID, Date: date},
		TotalCalories: req.TotalCalories,
		Protein:       req.Protein,
		Carbs:         req.Carbs,
		Fat:           req.Fat,
		Notes:         req.Notes,
	}
	if err := repo.CreateCalorie(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func GetCalorie(ctx context.Context, repo storage.CalorieRepository, user *internal.User, id int64) (*internal.CalorieEntry, error) {
	e, err := repo.GetCalorie(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(&e.Record, user); err != nil {
		return nil, err
	}
	return e, nil
}

func UpdateCalorie(ctx context.Context, repo storage.CalorieRepository, user *internal.User, id int64, req *CalorieUpdate) (*internal.CalorieEntry, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	e, err := GetCalorie(ctx, repo, user, id)
	if err != nil {
		return nil, err
	}
	if req.Date != nil {
		if e.Date, err = parseDate("date", *req.Date); err != nil {
			return nil, err
		}
	}
	if req.TotalCalories != nil {
		e.TotalCalories = *req.TotalCalories
	}
	if req.Protein != nil {
		e.Protein = req.Protein
	}
	if req.Carbs != nil {
		e.Carbs = req.Carbs
	}
	if req.Fat != nil {
		e.Fat = req.Fat
	}
	if req.Notes != nil {
		e.Notes = req.Notes
	}
	if err := repo.UpdateCalorie(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func DeleteCalorie(ctx context.Context, repo storage.CalorieRepository, user *internal.User, id int64) error {
	if _, err := GetCalorie(ctx, repo, user, id); err != nil {
		return err
	}
	return repo.DeleteCalorie(ctx, id)
}

// ListCalories returns the user's entries, newest date first, restricted to w.
func ListCalories(ctx context.Context, repo storage.CalorieRepository, user *internal.User, w stats.Window, now time.Time) ([]internal.CalorieEntry, error) {
	entries, err := repo.ListCalories(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return stats.FilterByWindow(entries, w, now), nil
}

func CaloriesInRange(ctx context.Context, repo storage.CalorieRepository, user *internal.User, start, end string) ([]internal.CalorieEntry, error) {
	from, to, err := ParseRange(start, end)
	if err != nil {
		return nil, err
	}
	return repo.ListCaloriesInRange(ctx, user.ID, from, to)
}
