package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/service"
	"github.com/yourname/fittrack/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	backendFlag, sqliteFlag, userFlag, verbose = "", "", "", false
	exportOut, importIn, importDryRun = "", "", false
	statsTimeframe, statsWindow, statsJSON = "weekly", "all", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func seedDB(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fittrack.db")
	s, err := storage.NewSQLiteStorage(ctx, path, internal.NopLogger())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.CreateUser(ctx, &internal.User{ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "h"}))
	require.NoError(t, s.CreateUser(ctx, &internal.User{ID: "u2", Username: "bob", Email: "bob@example.com", PasswordHash: "h"}))
	for _, e := range []internal.CalorieEntry{
		{Record: internal.Record{UserID: "u1", Date: internal.NewDate(2024, 1, 8)}, TotalCalories: 2000},
		{Record: internal.Record{UserID: "u1", Date: internal.NewDate(2024, 1, 9)}, TotalCalories: 2400},
	} {
		require.NoError(t, s.CreateCalorie(ctx, &e))
	}
	for _, e := range []internal.WeightEntry{
		{Record: internal.Record{UserID: "u1", Date: internal.NewDate(2024, 1, 8)}, Weight: decimal.RequireFromString("180.5")},
		{Record: internal.Record{UserID: "u1", Date: internal.NewDate(2024, 1, 9)}, Weight: decimal.RequireFromString("179.25")},
	} {
		require.NoError(t, s.CreateWeight(ctx, &e))
	}
	require.NoError(t, s.CreateWorkout(ctx, &internal.WorkoutEntry{
		Record: internal.Record{UserID: "u1", Date: internal.NewDate(2024, 1, 9)},
		Type:   internal.WorkoutCardio, Duration: 30, Intensity: internal.IntensityMedium,
	}))
	return path
}

func TestRequiresUser(t *testing.T) {
	_, err := run(t, "--backend", "sqlite", "--sqlite", seedDB(t), "export")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user is required")
}

func TestUnknownUser(t *testing.T) {
	_, err := run(t, "--backend", "sqlite", "--sqlite", seedDB(t), "export", "--user", "nobody@example.com", "--out=-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestExportImportRoundTrip(t *testing.T) {
	db := seedDB(t)
	file := filepath.Join(t.TempDir(), "export.json")

	out, err := run(t, "--backend", "sqlite", "--sqlite", db, "export", "--user", "u1", "--out", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 calorie, 2 weight and 1 workout entries")

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	var doc service.ExportDocument
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Len(t, doc.Weights, 2)

	out, err = run(t, "--backend", "sqlite", "--sqlite", db, "import", "--user", "bob@example.com", "--in", file, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would import 2 calorie, 2 weight and 1 workout entries")

	out, err = run(t, "--backend", "sqlite", "--sqlite", db, "import", "--user", "bob@example.com", "--in", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 calorie, 2 weight and 1 workout entries (0 merged, 0 skipped)")

	// weights on existing dates merge under the default policy
	out, err = run(t, "--backend", "sqlite", "--sqlite", db, "import", "--user", "u2", "--in", file)
	require.NoError(t, err)
	assert.Contains(t, out, "(2 merged, 0 skipped)")

	s, err := storage.NewSQLiteStorage(context.Background(), db, internal.NopLogger())
	require.NoError(t, err)
	defer s.Close()
	weights, err := s.ListWeights(context.Background(), "u2")
	require.NoError(t, err)
	require.Len(t, weights, 2)
	assert.Equal(t, "179.25", weights[0].Weight.String())
}

func TestExportToStdout(t *testing.T) {
	out, err := run(t, "--backend", "sqlite", "--sqlite", seedDB(t), "export", "--user", "u1", "--out=-")
	require.NoError(t, err)
	var doc service.ExportDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Calories, 2)
	assert.Len(t, doc.Workouts, 1)
}

func TestImportRejectsMissingFile(t *testing.T) {
	_, err := run(t, "--backend", "sqlite", "--sqlite", seedDB(t), "import", "--user", "u1", "--in", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read import file")
}

func TestStats(t *testing.T) {
	db := seedDB(t)

	out, err := run(t, "--backend", "sqlite", "--sqlite", db, "stats", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Calories: avg 2200, high 2400, low 2000")
	assert.Contains(t, out, "Weight: 180.5 kg -> 179.25 kg (-1.25 kg)")
	assert.Contains(t, out, "Workouts: 1,")
	assert.Contains(t, out, "Calorie/weight pairs: 2")

	out, err = run(t, "--backend", "sqlite", "--sqlite", db, "stats", "--user", "u2")
	require.NoError(t, err)
	assert.Contains(t, out, "Calories: -")

	_, err = run(t, "--backend", "sqlite", "--sqlite", db, "stats", "--user", "u1", "--window", "fortnight")
	require.Error(t, err)
}

func TestStatsJSON(t *testing.T) {
	out, err := run(t, "--backend", "sqlite", "--sqlite", seedDB(t), "stats", "--user", "u1", "--json", "--timeframe", "daily")
	require.NoError(t, err)
	var st service.Statistics
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	require.NotNil(t, st.Calories)
	assert.Equal(t, 2200, st.Calories.Average)
}
