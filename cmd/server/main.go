package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/api"
	"github.com/yourname/fittrack/internal/auth"
	"github.com/yourname/fittrack/internal/config"
	"github.com/yourname/fittrack/internal/service"
	"github.com/yourname/fittrack/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to open %s storage: %v", cfg.DBType, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf("failed to close storage: %v", err)
		}
	}()

	var (
		provider auth.Provider
		opts     []api.Option
	)
	switch cfg.AuthMode {
	case "remote":
		provider = auth.NewRemoteAuthProvider(cfg.AuthServiceURL, cfg.AuthAPIKey, store, logger)
	default:
		local := auth.NewLocalAuthProvider(cfg.JWTSecret, cfg.TokenTTL, store, logger)
		provider = local
		opts = append(opts, api.WithIssuer(local))
	}

	if cfg.ArchiveEnabled() {
		uploader, err := service.NewS3Uploader(ctx, cfg.AWSRegion)
		if err != nil {
			logger.Fatalf("failed to configure export archive: %v", err)
		}
		opts = append(opts, api.WithUploader(uploader))
		logger.Infof("export archive enabled, bucket=%s", cfg.ExportBucket)
	}

	app := api.NewApp(cfg, logger, store, provider, opts...)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("server listening on %s (storage=%s, auth=%s)", cfg.HTTPAddr, cfg.DBType, cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
