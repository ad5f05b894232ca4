package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourname/fittrack/internal"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL DEFAULT '',
  full_name TEXT,
  avatar_url TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS calorie_entries (
  id BIGSERIAL PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  entry_date DATE NOT NULL,
  total_calories INTEGER NOT NULL CHECK (total_calories > 0),
  protein DOUBLE PRECISION,
  carbs DOUBLE PRECISION,
  fat DOUBLE PRECISION,
  notes TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS calorie_entries_user_date ON calorie_entries (user_id, entry_date);

CREATE TABLE IF NOT EXISTS weight_entries (
  id BIGSERIAL PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  entry_date DATE NOT NULL,
  weight NUMERIC(6,2) NOT NULL CHECK (weight > 0),
  notes TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (user_id, entry_date)
);

CREATE TABLE IF NOT EXISTS workout_entries (
  id BIGSERIAL PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  entry_date DATE NOT NULL,
  workout_type TEXT NOT NULL,
  duration INTEGER NOT NULL CHECK (duration > 0),
  intensity TEXT NOT NULL,
  notes TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS workout_entries_user_date ON workout_entries (user_id, entry_date);
`

const postgresWeightColumns = "id, user_id, entry_date, weight::text, notes, created_at"

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Errorf("failed to ping postgres: %v", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply postgres schema: %w", err)
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// pgErr translates driver errors into the storage sentinels.
func pgErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Code == "23505" {
		return ErrConflict
	}
	return err
}

func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return pgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- UserRepository ---
func (p *PostgresStorage) CreateUser(ctx context.Context, user *internal.User) error {
	row := p.pool.QueryRow(ctx, `INSERT INTO users (id, username, email, password_hash, full_name, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now())) RETURNING created_at`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.FullName, user.AvatarURL, nullTime(user.CreatedAt))
	if err := row.Scan(&user.CreatedAt); err != nil {
		p.logger.Errorf("failed to insert user: %v", err)
		return pgErr(err)
	}
	return nil
}

func (p *PostgresStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, pgErr(err)
}

func (p *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	return u, pgErr(err)
}

func (p *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*internal.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	return u, pgErr(err)
}

// --- CalorieRepository ---
func (p *PostgresStorage) CreateCalorie(ctx context.Context, e *internal.CalorieEntry) error {
	row := p.pool.QueryRow(ctx, `INSERT INTO calorie_entries (user_id, entry_date, total_calories, protein, carbs, fat, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now())) RETURNING id, created_at`,
		e.UserID, e.Date, e.TotalCalories, e.Protein, e.Carbs, e.Fat, e.Notes, nullTime(e.CreatedAt))
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		p.logger.Errorf("failed to insert calorie entry: %v", err)
		return pgErr(err)
	}
	return nil
}

func (p *PostgresStorage) GetCalorie(ctx context.Context, id int64) (*internal.CalorieEntry, error) {
	e, err := scanCalorie(p.pool.QueryRow(ctx, `SELECT `+calorieColumns+` FROM calorie_entries WHERE id = $1`, id))
	if err != nil {
		return nil, pgErr(err)
	}
	return &e, nil
}

func (p *PostgresStorage) ListCalories(ctx context.Context, userID string) ([]internal.CalorieEntry, error) {
	return p.queryCalories(ctx, `SELECT `+calorieColumns+` FROM calorie_entries WHERE user_id = $1 ORDER BY entry_date DESC, id DESC`, userID)
}

func (p *PostgresStorage) ListCaloriesInRange(ctx context.Context, userID string, from, to internal.Date) ([]internal.CalorieEntry, error) {
	return p.queryCalories(ctx, `SELECT `+calorieColumns+` FROM calorie_entries
		WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3 ORDER BY entry_date, id`, userID, from, to)
}

func (p *PostgresStorage) queryCalories(ctx context.Context, sql string, args ...any) ([]internal.CalorieEntry, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		p.logger.Errorf("failed to query calorie entries: %v", err)
		return nil, err
	}
	defer rows.Close()
	return collect(rows.Next, func() (internal.CalorieEntry, error) { return scanCalorie(rows) }, rows.Err)
}

func (p *PostgresStorage) UpdateCalorie(ctx context.Context, e *internal.CalorieEntry) error {
	return affected(p.pool.Exec(ctx, `UPDATE calorie_entries
		SET entry_date = $2, total_calories = $3, protein = $4, carbs = $5, fat = $6, notes = $7 WHERE id = $1`,
		e.ID, e.Date, e.TotalCalories, e.Protein, e.Carbs, e.Fat, e.Notes))
}

func (p *PostgresStorage) DeleteCalorie(ctx context.Context, id int64) error {
	return affected(p.pool.Exec(ctx, `DELETE FROM calorie_entries WHERE id = $1`, id))
}

// --- WeightRepository ---
func (p *PostgresStorage) CreateWeight(ctx context.Context, e *internal.WeightEntry) error {
	row := p.pool.QueryRow(ctx, `INSERT INTO weight_entries (user_id, entry_date, weight, notes, created_at)
		VALUES ($1, $2, $3::numeric, $4, COALESCE($5, now())) RETURNING id, created_at`,
		e.UserID, e.Date, e.Weight.String(), e.Notes, nullTime(e.CreatedAt))
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		p.logger.Errorf("failed to insert weight entry: %v", err)
		return pgErr(err)
	}
	return nil
}

func (p *PostgresStorage) GetWeight(ctx context.Context, id int64) (*internal.WeightEntry, error) {
	e, err := scanWeight(p.pool.QueryRow(ctx, `SELECT `+postgresWeightColumns+` FROM weight_entries WHERE id = $1`, id))
	if err != nil {
		return nil, pgErr(err)
	}
	return &e, nil
}

func (p *PostgresStorage) FindWeightByDate(ctx context.Context, userID string, date internal.Date) (*internal.WeightEntry, error) {
	e, err := scanWeight(p.pool.QueryRow(ctx, `SELECT `+postgresWeightColumns+` FROM weight_entries
		WHERE user_id = $1 AND entry_date = $2`, userID, date))
	if err != nil {
		return nil, pgErr(err)
	}
	return &e, nil
}

func (p *PostgresStorage) ListWeights(ctx context.Context, userID string) ([]internal.WeightEntry, error) {
	return p.queryWeights(ctx, `SELECT `+postgresWeightColumns+` FROM weight_entries WHERE user_id = $1 ORDER BY entry_date DESC, id DESC`, userID)
}

func (p *PostgresStorage) ListWeightsInRange(ctx context.Context, userID string, from, to internal.Date) ([]internal.WeightEntry, error) {
	return p.queryWeights(ctx, `SELECT `+postgresWeightColumns+` FROM weight_entries
		WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3 ORDER BY entry_date, id`, userID, from, to)
}

func (p *PostgresStorage) queryWeights(ctx context.Context, sql string, args ...any) ([]internal.WeightEntry, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		p.logger.Errorf("failed to query weight entries: %v", err)
		return nil, err
	}
	defer rows.Close()
	return collect(rows.Next, func() (internal.WeightEntry, error) { return scanWeight(rows) }, rows.Err)
}

func (p *PostgresStorage) UpdateWeight(ctx context.Context, e *internal.WeightEntry) error {
	return affected(p.pool.Exec(ctx, `UPDATE weight_entries SET entry_date = $2, weight = $3::numeric, notes = $4 WHERE id = $1`,
		e.ID, e.Date, e.Weight.String(), e.Notes))
}

func (p *PostgresStorage) DeleteWeight(ctx context.Context, id int64) error {
	return affected(p.pool.Exec(ctx, `DELETE FROM weight_entries WHERE id = $1`, id))
}

// --- WorkoutRepository ---
func (p *PostgresStorage) CreateWorkout(ctx context.Context, e *internal.WorkoutEntry) error {
	row := p.pool.QueryRow(ctx, `INSERT INTO workout_entries (user_id, entry_date, workout_type, duration, intensity, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now())) RETURNING id, created_at`,
		e.UserID, e.Date, string(e.Type), e.Duration, string(e.Intensity), e.Notes, nullTime(e.CreatedAt))
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		p.logger.Errorf("failed to insert workout entry: %v", err)
		return pgErr(err)
	}
	return nil
}

func (p *PostgresStorage) GetWorkout(ctx context.Context, id int64) (*internal.WorkoutEntry, error) {
	e, err := scanWorkout(p.pool.QueryRow(ctx, `SELECT `+workoutColumns+` FROM workout_entries WHERE id = $1`, id))
	if err != nil {
		return nil, pgErr(err)
	}
	return &e, nil
}

func (p *PostgresStorage) ListWorkouts(ctx context.Context, userID string) ([]internal.WorkoutEntry, error) {
	return p.queryWorkouts(ctx, `SELECT `+workoutColumns+` FROM workout_entries WHERE user_id = $1 ORDER BY entry_date DESC, id DESC`, userID)
}

func (p *PostgresStorage) ListWorkoutsInRange(ctx context.Context, userID string, from, to internal.Date) ([]internal.WorkoutEntry, error) {
	return p.queryWorkouts(ctx, `SELECT `+workoutColumns+` FROM workout_entries
		WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3 ORDER BY entry_date, id`, userID, from, to)
}

func (p *PostgresStorage) queryWorkouts(ctx context.Context, sql string, args ...any) ([]internal.WorkoutEntry, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		p.logger.Errorf("failed to query workout entries: %v", err)
		return nil, err
	}
	defer rows.Close()
	return collect(rows.Next, func() (internal.WorkoutEntry, error) { return scanWorkout(rows) }, rows.Err)
}

func (p *PostgresStorage) UpdateWorkout(ctx context.Context, e *internal.WorkoutEntry) error {
	return affected(p.pool.Exec(ctx, `UPDATE workout_entries
		SET entry_date = $2, workout_type = $3, duration = $4, intensity = $5, notes = $6 WHERE id = $1`,
		e.ID, e.Date, string(e.Type), e.Duration, string(e.Intensity), e.Notes))
}

func (p *PostgresStorage) DeleteWorkout(ctx context.Context, id int64) error {
	return affected(p.pool.Exec(ctx, `DELETE FROM workout_entries WHERE id = $1`, id))
}

var _ Store = (*PostgresStorage)(nil)
