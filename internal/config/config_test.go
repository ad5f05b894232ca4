package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParse_Defaults(t *testing.T) {
	c, err := Parse(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, "development", c.Env)
	assert.Equal(t, "memory", c.DBType)
	assert.Equal(t, "local", c.AuthMode)
	assert.Equal(t, "merge", c.WeightDuplicatePolicy)
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
	assert.Equal(t, 2500, c.DailyCalorieGoal)
	assert.Equal(t, "175", c.WeightGoal.String())
	assert.Equal(t, 5, c.WeeklyWorkoutGoal)
	assert.False(t, c.ArchiveEnabled())
}

func TestParse_Overrides(t *testing.T) {
	c, err := Parse(envMap(map[string]string{
		"STORAGE_BACKEND":         "sqlite",
		"SQLITE_PATH":             "/tmp/x.db",
		"WEIGHT_DUPLICATE_POLICY": "reject",
		"TOKEN_TTL":               "90m",
		"WEIGHT_GOAL":             "72.5",
		"EXPORT_S3_BUCKET":        "exports",
	}))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DBType)
	assert.Equal(t, "reject", c.WeightDuplicatePolicy)
	assert.Equal(t, 90*time.Minute, c.TokenTTL)
	assert.Equal(t, "72.5", c.WeightGoal.String())
	assert.True(t, c.ArchiveEnabled())
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without dsn":     {"STORAGE_BACKEND": "postgres"},
		"unknown backend":          {"STORAGE_BACKEND": "file"},
		"remote without url":       {"AUTH_MODE": "remote"},
		"default secret in prod":   {"APP_ENV": "production"},
		"bad policy":               {"WEIGHT_DUPLICATE_POLICY": "keep"},
		"bad ttl":                  {"TOKEN_TTL": "soon"},
		"bad env":                  {"APP_ENV": "test"},
		"non-numeric goal":         {"DAILY_CALORIE_GOAL": "lots"},
		"non-positive weight goal": {"WEIGHT_GOAL": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(envMap(env))
			assert.Error(t, err)
		})
	}
}
