package api

import (
	"time"

	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/auth"
	"github.com/yourname/fittrack/internal/config"
	"github.com/yourname/fittrack/internal/service"
	"github.com/yourname/fittrack/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Config() *config.Config
	Store() storage.Store
	Auth() auth.Provider
	// Issuer is nil when sessions are issued by a remote identity service.
	Issuer() auth.Issuer
	// Uploader is nil when export archiving is disabled.
	Uploader() service.Uploader
	Now() time.Time
}

type app struct {
	logger   internal.Logger
	cfg      *config.Config
	store    storage.Store
	provider auth.Provider
	issuer   auth.Issuer
	uploader service.Uploader
	now      func() time.Time
}

type Option func(*app)

func WithIssuer(i auth.Issuer) Option        { return func(a *app) { a.issuer = i } }
func WithUploader(u service.Uploader) Option { return func(a *app) { a.uploader = u } }
func WithClock(now func() time.Time) Option  { return func(a *app) { a.now = now } }

func NewApp(cfg *config.Config, logger internal.Logger, store storage.Store, provider auth.Provider, opts ...Option) App {
	a := &app{logger: logger, cfg: cfg, store: store, provider: provider, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *app) Logger() internal.Logger    { return a.logger }
func (a *app) Config() *config.Config     { return a.cfg }
func (a *app) Store() storage.Store       { return a.store }
func (a *app) Auth() auth.Provider        { return a.provider }
func (a *app) Issuer() auth.Issuer        { return a.issuer }
func (a *app) Uploader() service.Uploader { return a.uploader }
func (a *app) Now() time.Time             { return a.now() }

func goals(cfg *config.Config) service.Goals {
	return service.Goals{
		DailyCalories:  cfg.DailyCalorieGoal,
		Weight:         cfg.WeightGoal,
		WeeklyWorkouts: cfg.WeeklyWorkoutGoal,
	}
}
