package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/stats"
	"github.com/yourname/fittrack/internal/storage"
)

var maxWeight = decimal.NewFromInt(10000)

type WeightRequest struct {
	Date   string          `json:"date" validate:"required"`
	Weight decimal.Decimal `json:"weight"`
	Notes  *string         `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type WeightUpdate struct {
	Date   *string          `json:"date,omitempty"`
	Weight *decimal.Decimal `json:"weight,omitempty"`
	Notes  *string          `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// normalizeWeight keeps two decimal places and bounds the value to what
// every backend can store.
func normalizeWeight(w decimal.Decimal) (decimal.Decimal, error) {
	w = w.Round(2)
	if !w.IsPositive() || !w.LessThan(maxWeight) {
		return decimal.Decimal{}, invalid("weight must be greater than 0 and below %s", maxWeight)
	}
	return w, nil
}

// CreateWeight logs a weight for a date. When the user already logged one
// for that date, policy decides between updating it and failing.
func CreateWeight(ctx context.Context, repo storage.WeightRepository, user *internal.User, req *WeightRequest, policy DuplicatePolicy) (*internal.WeightEntry, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	weight, err := normalizeWeight(req.Weight)
	if err != nil {
		return nil, err
	}

	existing, err := repo.FindWeightByDate(ctx, user.ID, date)
	switch {
	case err == nil:
		if policy == DuplicateReject {
			return nil, ErrDuplicateDate
		}
		existing.Weight = weight
		if req.Notes != nil {
			existing.Notes = req.Notes
		}
		if err := repo.UpdateWeight(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	e := &internal.WeightEntry{
		Record: internal.Record{UserID: user.ID, Date: date},
		Weight: weight,
		Notes:  req.Notes,
	}
	if err := repo.CreateWeight(ctx, e); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrDuplicateDate
		}
		return nil, err
	}
	return e, nil
}

func GetWeight(ctx context.Context, repo storage.WeightRepository, user *internal.User, id int64) (*internal.WeightEntry, error) {
	e, err := repo.GetWeight(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(&e.Record, user); err != nil {
		return nil, err
	}
	return e, nil
}

func UpdateWeight(ctx context.Context, repo storage.WeightRepository, user *internal.User, id int64, req *WeightUpdate) (*internal.WeightEntry, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	e, err := GetWeight(ctx, repo, user, id)
	if err != nil {
		return nil, err
	}
	if req.Date != nil {
		if e.Date, err = parseDate("date", *req.Date); err != nil {
			return nil, err
		}
	}
	if req.Weight != nil {
		if e.Weight, err = normalizeWeight(*req.Weight); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		e.Notes = req.Notes
	}
	if err := repo.UpdateWeight(ctx, e); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrDuplicateDate
		}
		return nil, err
	}
	return e, nil
}

func DeleteWeight(ctx context.Context, repo storage.WeightRepository, user *internal.User, id int64) error {
	if _, err := GetWeight(ctx, repo, user, id); err != nil {
		return err
	}
	return repo.DeleteWeight(ctx, id)
}

func ListWeights(ctx context.Context, repo storage.WeightRepository, user *internal.User, w stats.Window, now time.Time) ([]internal.WeightEntry, error) {
	entries, err := repo.ListWeights(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return stats.FilterByWindow(entries, w, now), nil
}

func WeightsInRange(ctx context.Context, repo storage.WeightRepository, user *internal.User, start, end string) ([]internal.WeightEntry, error) {
	from, to, err := ParseRange(start, end)
	if err != nil {
		return nil, err
	}
	return repo.ListWeightsInRange(ctx, user.ID, from, to)
}
