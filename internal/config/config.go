package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const devJWTSecret = "dev-secret-change-me"

type Config struct {
	Env      string
	LogLevel string
	HTTPAddr string

	DBType     string
	DBDSN      string
	SQLitePath string
	DataFile   string

	AuthMode       string
	JWTSecret      string
	TokenTTL       time.Duration
	AuthServiceURL string
	AuthAPIKey     string

	WeightDuplicatePolicy string

	DailyCalorieGoal  int
	WeightGoal        decimal.Decimal
	WeeklyWorkoutGoal int

	ExportBucket string
	AWSRegion    string
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads the environment once, after merging a .env file if present.
// An invalid configuration panics.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		c, err := Parse(os.Getenv)
		if err != nil {
			panic("Invalid config: " + err.Error())
		}
		cfg = c
	})
	return cfg
}

// Parse builds and validates a Config from getenv.
func Parse(getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}
	c := &Config{
		Env:                   env("APP_ENV", "development"),
		LogLevel:              env("LOG_LEVEL", "info"),
		HTTPAddr:              env("HTTP_ADDR", ":8080"),
		DBType:                env("STORAGE_BACKEND", "memory"),
		DBDSN:                 env("POSTGRES_DSN", ""),
		SQLitePath:            env("SQLITE_PATH", "data/fittrack.db"),
		DataFile:              env("DATA_FILE", ""),
		AuthMode:              env("AUTH_MODE", "local"),
		JWTSecret:             env("JWT_SECRET", devJWTSecret),
		AuthServiceURL:        env("AUTH_SERVICE_URL", ""),
		AuthAPIKey:            env("AUTH_API_KEY", ""),
		WeightDuplicatePolicy: env("WEIGHT_DUPLICATE_POLICY", "merge"),
		ExportBucket:          env("EXPORT_S3_BUCKET", ""),
		AWSRegion:             env("AWS_REGION", "us-east-1"),
	}

	var err error
	if c.TokenTTL, err = time.ParseDuration(env("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if c.DailyCalorieGoal, err = strconv.Atoi(env("DAILY_CALORIE_GOAL", "2500")); err != nil {
		return nil, fmt.Errorf("DAILY_CALORIE_GOAL: %w", err)
	}
	if c.WeightGoal, err = decimal.NewFromString(env("WEIGHT_GOAL", "175")); err != nil {
		return nil, fmt.Errorf("WEIGHT_GOAL: %w", err)
	}
	if c.WeeklyWorkoutGoal, err = strconv.Atoi(env("WEEKLY_WORKOUT_GOAL", "5")); err != nil {
		return nil, fmt.Errorf("WEEKLY_WORKOUT_GOAL: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	switch c.DBType {
	case "memory":
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: memory, postgres, sqlite")
	}
	switch c.AuthMode {
	case "local":
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE=local")
		}
		if c.Env == "production" && c.JWTSecret == devJWTSecret {
			return errors.New("JWT_SECRET must be set in production")
		}
	case "remote":
		if c.AuthServiceURL == "" {
			return errors.New("AUTH_SERVICE_URL is required when AUTH_MODE=remote")
		}
	default:
		return errors.New("AUTH_MODE must be one of: local, remote")
	}
	if c.WeightDuplicatePolicy != "merge" && c.WeightDuplicatePolicy != "reject" {
		return errors.New("WEIGHT_DUPLICATE_POLICY must be one of: merge, reject")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.DailyCalorieGoal <= 0 || c.WeeklyWorkoutGoal <= 0 || !c.WeightGoal.IsPositive() {
		return errors.New("goals must be positive")
	}
	return nil
}

// ArchiveEnabled reports whether exports may be archived to S3.
func (c *Config) ArchiveEnabled() bool { return c.ExportBucket != "" }
