package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/fittrack/internal"
)

func day(y int, m time.Month, d int) internal.Date { return internal.NewDate(y, m, d) }

func ptr[T any](v T) *T { return &v }

type backend struct {
	name string
	open func(t *testing.T) Store
}

func backends() []backend {
	return []backend{
		{"memory", func(t *testing.T) Store { return NewMemoryStore(internal.NopLogger()) }},
		{"file", func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "data.json"), internal.NopLogger())
			require.NoError(t, err)
			return s
		}},
		{"sqlite", func(t *testing.T) Store {
			s, err := NewSQLiteStorage(context.Background(), filepath.Join(t.TempDir(), "fittrack.db"), internal.NopLogger())
			require.NoError(t, err)
			return s
		}},
	}
}

func seedUser(t *testing.T, s Store, id string) {
	t.Helper()
	require.NoError(t, s.CreateUser(context.Background(), &internal.User{
		ID: id, Username: id, Email: id + "@example.com", PasswordHash: "hash",
	}))
}

func TestStore_Users(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)
			defer s.Close()

			u := &internal.User{ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "h", FullName: ptr("Alice")}
			require.NoError(t, s.CreateUser(ctx, u))
			assert.False(t, u.CreatedAt.IsZero())

			got, err := s.GetUserByEmail(ctx, "alice@example.com")
			require.NoError(t, err)
			assert.Equal(t, "u1", got.ID)
			assert.Equal(t, "h", got.PasswordHash)
			require.NotNil(t, got.FullName)
			assert.Equal(t, "Alice", *got.FullName)

			_, err = s.GetUserByUsername(ctx, "alice")
			assert.NoError(t, err)

			err = s.CreateUser(ctx, &internal.User{ID: "u2", Username: "alice", Email: "other@example.com"})
			assert.ErrorIs(t, err, ErrConflict)

			_, err = s.GetUser(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_CalorieLifecycleAndOrdering(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)
			defer s.Close()
			seedUser(t, s, "u1")
			seedUser(t, s, "u2")

			for _, d := range []internal.Date{day(2024, 1, 5), day(2024, 1, 1), day(2024, 1, 3)} {
				require.NoError(t, s.CreateCalorie(ctx, &internal.CalorieEntry{
					Record: internal.Record{UserID: "u1", Date: d}, TotalCalories: 2000, Protein: ptr(120.5),
				}))
			}
			require.NoError(t, s.CreateCalorie(ctx, &internal.CalorieEntry{
				Record: internal.Record{UserID: "u2", Date: day(2024, 1, 2)}, TotalCalories: 1500,
			}))

			list, err := s.ListCalories(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, "2024-01-05", list[0].Date.String())
			assert.Equal(t, "2024-01-01", list[2].Date.String())
			require.NotNil(t, list[0].Protein)
			assert.Equal(t, 120.5, *list[0].Protein)
			assert.Nil(t, list[0].Carbs)

			ranged, err := s.ListCaloriesInRange(ctx, "u1", day(2024, 1, 1), day(2024, 1, 3))
			require.NoError(t, err)
			require.Len(t, ranged, 2)
			assert.Equal(t, "2024-01-01", ranged[0].Date.String())
			assert.Equal(t, "2024-01-03", ranged[1].Date.String())

			e := list[0]
			e.TotalCalories = 2222
			e.Notes = ptr("cheat day")
			require.NoError(t, s.UpdateCalorie(ctx, &e))
			got, err := s.GetCalorie(ctx, e.ID)
			require.NoError(t, err)
			assert.Equal(t, 2222, got.TotalCalories)
			assert.Equal(t, "cheat day", *got.Notes)
			assert.Equal(t, "u1", got.UserID)

			require.NoError(t, s.DeleteCalorie(ctx, e.ID))
			_, err = s.GetCalorie(ctx, e.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.DeleteCalorie(ctx, e.ID), ErrNotFound)
		})
	}
}

func TestStore_WeightsKeepDecimalAndUniqueDate(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)
			defer s.Close()
			seedUser(t, s, "u1")

			w := &internal.WeightEntry{Record: internal.Record{UserID: "u1", Date: day(2024, 2, 1)}, Weight: decimal.RequireFromString("80.35")}
			require.NoError(t, s.CreateWeight(ctx, w))
			assert.NotZero(t, w.ID)

			dup := &internal.WeightEntry{Record: internal.Record{UserID: "u1", Date: day(2024, 2, 1)}, Weight: decimal.RequireFromString("81")}
			assert.ErrorIs(t, s.CreateWeight(ctx, dup), ErrConflict)

			found, err := s.FindWeightByDate(ctx, "u1", day(2024, 2, 1))
			require.NoError(t, err)
			assert.True(t, found.Weight.Equal(decimal.RequireFromString("80.35")), found.Weight.String())

			_, err = s.FindWeightByDate(ctx, "u1", day(2024, 2, 2))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_Workouts(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)
			defer s.Close()
			seedUser(t, s, "u1")

			w := &internal.WorkoutEntry{
				Record: internal.Record{UserID: "u1", Date: day(2024, 3, 1)},
				Type:   internal.WorkoutHIIT, Duration: 25, Intensity: internal.IntensityHigh,
			}
			require.NoError(t, s.CreateWorkout(ctx, w))
			got, err := s.GetWorkout(ctx, w.ID)
			require.NoError(t, err)
			assert.Equal(t, internal.WorkoutHIIT, got.Type)
			assert.Equal(t, internal.IntensityHigh, got.Intensity)
			assert.Equal(t, 25, got.Duration)

			none, err := s.ListWorkoutsInRange(ctx, "u1", day(2024, 3, 2), day(2024, 3, 9))
			require.NoError(t, err)
			assert.NotNil(t, none)
			assert.Empty(t, none)
		})
	}
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")

	s, err := NewFileStore(path, internal.NopLogger())
	require.NoError(t, err)
	seedUser(t, s, "u1")
	require.NoError(t, s.CreateWeight(ctx, &internal.WeightEntry{
		Record: internal.Record{UserID: "u1", Date: day(2024, 4, 1)}, Weight: decimal.RequireFromString("70.10"),
	}))
	require.NoError(t, s.Close())

	reopened, err := NewFileStore(path, internal.NopLogger())
	require.NoError(t, err)
	defer reopened.Close()

	u, err := reopened.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.PasswordHash)

	weights, err := reopened.ListWeights(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, weights, 1)
	assert.Equal(t, "70.1", weights[0].Weight.String())

	// ids continue after the highest persisted one
	next := &internal.WeightEntry{Record: internal.Record{UserID: "u1", Date: day(2024, 4, 2)}, Weight: decimal.NewFromInt(70)}
	require.NoError(t, reopened.CreateWeight(ctx, next))
	assert.Greater(t, next.ID, weights[0].ID)
}

func TestSQLite_MigrationsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fittrack.db")
	s, err := NewSQLiteStorage(ctx, path, internal.NopLogger())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewSQLiteStorage(ctx, path, internal.NopLogger())
	require.NoError(t, err)
	defer s.Close()
	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, len(sqliteMigrations), n)
}
