package internal

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     *string   `json:"fullName,omitempty"`
	AvatarURL    *string   `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Record holds the fields shared by every logged entry.
type Record struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Date      Date      `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r Record) RecordDate() Date { return r.Date }

type CalorieEntry struct {
	Record
	TotalCalories int      `json:"totalCalories"`
	Protein       *float64 `json:"protein,omitempty"`
	Carbs         *float64 `json:"carbs,omitempty"`
	Fat           *float64 `json:"fat,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

type WeightEntry struct {
	Record
	Weight decimal.Decimal `json:"weight"`
	Notes  *string         `json:"notes,omitempty"`
}

type WorkoutEntry struct {
	Record
	Type      WorkoutType `json:"type"`
	Duration  int         `json:"duration"` // minutes
	Intensity Intensity   `json:"intensity"`
	Notes     *string     `json:"notes,omitempty"`
}

type WorkoutType string

const (
	WorkoutUpper  WorkoutType = "upper"
	WorkoutLower  WorkoutType = "lower"
	WorkoutFull   WorkoutType = "full"
	WorkoutCardio WorkoutType = "cardio"
	WorkoutHIIT   WorkoutType = "hiit"
	WorkoutOther  WorkoutType = "other"
)

var workoutLabels = map[WorkoutType]string{
	WorkoutUpper:  "Upper Body",
	WorkoutLower:  "Lower Body",
	WorkoutFull:   "Full Body",
	WorkoutCardio: "Cardio",
	WorkoutHIIT:   "HIIT",
	WorkoutOther:  "Other",
}

// Label returns the display name, falling back to the raw code.
func (t WorkoutType) Label() string {
	if l, ok := workoutLabels[t]; ok {
		return l
	}
	return string(t)
}

type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

type RecordKind string

const (
	KindCalorie RecordKind = "calorie"
	KindWeight  RecordKind = "weight"
	KindWorkout RecordKind = "workout"
)
