package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/config"
	"github.com/yourname/fittrack/internal/storage"
)

var (
	backendFlag string
	sqliteFlag  string
	userFlag    string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "fittrackctl",
	Short:         "fittrackctl exports, imports and summarizes FitTrack data",
	Long:          "fittrackctl works directly against the configured FitTrack store, without going through the HTTP API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Override STORAGE_BACKEND (memory, postgres, sqlite)")
	rootCmd.PersistentFlags().StringVar(&sqliteFlag, "sqlite", "", "Override SQLITE_PATH")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User id or email")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log storage activity to stderr")
}

func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	return config.Parse(func(key string) string {
		switch {
		case key == "STORAGE_BACKEND" && backendFlag != "":
			return backendFlag
		case key == "SQLITE_PATH" && sqliteFlag != "":
			return sqliteFlag
		}
		return os.Getenv(key)
	})
}

// withStore opens the configured store, resolves --user and runs fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, store storage.Store, user *internal.User) error) error {
	if strings.TrimSpace(userFlag) == "" {
		return errors.New("--user is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var logger internal.Logger = internal.NopLogger()
	if verbose {
		zl, err := internal.NewLogger("development", cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = zl
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := resolveUser(ctx, store, userFlag)
	if err != nil {
		return err
	}
	return fn(ctx, cfg, store, user)
}

func resolveUser(ctx context.Context, users storage.UserRepository, ref string) (*internal.User, error) {
	user, err := users.GetUser(ctx, ref)
	if errors.Is(err, storage.ErrNotFound) && strings.Contains(ref, "@") {
		user, err = users.GetUserByEmail(ctx, strings.ToLower(ref))
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("user %q not found", ref)
	}
	return user, err
}
