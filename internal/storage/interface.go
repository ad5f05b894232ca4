package storage

import (
	"context"
	"errors"

	"github.com/yourname/fittrack/internal"
)

var (
	ErrNotFound = errors.New("storage: record not found")
	ErrConflict = errors.New("storage: record already exists")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *internal.User) error
	GetUser(ctx context.Context, id string) (*internal.User, error)
	GetUserByEmail(ctx context.Context, email string) (*internal.User, error)
	GetUserByUsername(ctx context.Context, username string) (*internal.User, error)
}

// Create assigns ID and, when zero, CreatedAt. List returns newest date
// first; ListInRange returns from..to inclusive, oldest first.
type CalorieRepository interface {
	CreateCalorie(ctx context.Context, e *internal.CalorieEntry) error
	GetCalorie(ctx context.Context, id int64) (*internal.CalorieEntry, error)
	ListCalories(ctx context.Context, userID string) ([]internal.CalorieEntry, error)
	ListCaloriesInRange(ctx context.Context, userID string, from, to internal.Date) ([]internal.CalorieEntry, error)
	UpdateCalorie(ctx context.Context, e *internal.CalorieEntry) error
	DeleteCalorie(ctx context.Context, id int64) error
}

type WeightRepository interface {
	CreateWeight(ctx context.Context, e *internal.WeightEntry) error
	GetWeight(ctx context.Context, id int64) (*internal.WeightEntry, error)
	FindWeightByDate(ctx context.Context, userID string, date internal.Date) (*internal.WeightEntry, error)
	ListWeights(ctx context.Context, userID string) ([]internal.WeightEntry, error)
	ListWeightsInRange(ctx context.Context, userID string, from, to internal.Date) ([]internal.WeightEntry, error)
	UpdateWeight(ctx context.Context, e *internal.WeightEntry) error
	DeleteWeight(ctx context.Context, id int64) error
}

type WorkoutRepository interface {
	CreateWorkout(ctx context.Context, e *internal.WorkoutEntry) error
	GetWorkout(ctx context.Context, id int64) (*internal.WorkoutEntry, error)
	ListWorkouts(ctx context.Context, userID string) ([]internal.WorkoutEntry, error)
	ListWorkoutsInRange(ctx context.Context, userID string, from, to internal.Date) ([]internal.WorkoutEntry, error)
	UpdateWorkout(ctx context.Context, e *internal.WorkoutEntry) error
	DeleteWorkout(ctx context.Context, id int64) error
}

// Store bundles every repository a backend provides.
type Store interface {
	UserRepository
	CalorieRepository
	WeightRepository
	WorkoutRepository
	Close() error
}
