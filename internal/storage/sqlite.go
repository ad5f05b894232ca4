package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourname/fittrack/internal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type migration struct {
	version int
	name    string
	sql     string
}

var sqliteMigrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL DEFAULT '',
  full_name TEXT,
  avatar_url TEXT,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS calorie_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  entry_date TEXT NOT NULL,
  total_calories INTEGER NOT NULL CHECK(total_calories > 0),
  protein REAL CHECK(protein >= 0),
  carbs REAL CHECK(carbs >= 0),
  fat REAL CHECK(fat >= 0),
  notes TEXT,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_calorie_entries_user_date ON calorie_entries(user_id, entry_date);

CREATE TABLE IF NOT EXISTS weight_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  entry_date TEXT NOT NULL,
  weight TEXT NOT NULL,
  notes TEXT,
  created_at TEXT NOT NULL,
  UNIQUE(user_id, entry_date)
);

CREATE TABLE IF NOT EXISTS workout_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  entry_date TEXT NOT NULL,
  workout_type TEXT NOT NULL,
  duration INTEGER NOT NULL CHECK(duration > 0),
  intensity TEXT NOT NULL,
  notes TEXT,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_workout_entries_user_date ON workout_entries(user_id, entry_date);
`,
	},
}

const sqliteWeightColumns = "id, user_id, entry_date, weight, notes, created_at"

// SQLiteStorage is a single-file store for local and CLI use.
type SQLiteStorage struct {
	db     *sql.DB
	now    func() time.Time
	logger internal.Logger
}

func NewSQLiteStorage(ctx context.Context, path string, logger internal.Logger) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStorage{db: db, now: time.Now, logger: logger}, nil
}

func applyMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range sqliteMigrations {
		var exists int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) Close() error { return s.db.Close() }

func sqliteErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrConflict
		}
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrConflict
	}
	return err
}

func sqliteAffected(res sql.Result, err error) error {
	if err != nil {
		return sqliteErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) stamp(t *time.Time) string {
	if t.IsZero() {
		*t = s.now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// --- UserRepository ---
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *internal.User) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.FullName, user.AvatarURL, s.stamp(&user.CreatedAt))
	if err != nil {
		s.logger.Errorf("failed to insert user: %v", err)
		return sqliteErr(err)
	}
	return nil
}

func (s *SQLiteStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	return u, sqliteErr(err)
}

func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	return u, sqliteErr(err)
}

func (s *SQLiteStorage) GetUserByUsername(ctx context.Context, username string) (*internal.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	return u, sqliteErr(err)
}

// insert runs an INSERT and stores the new row id in *id.
func (s *SQLiteStorage) insert(ctx context.Context, id *int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return sqliteErr(err)
	}
	*id, err = res.LastInsertId()
	return err
}

func (s *SQLiteStorage) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("sqlite query failed: %v", err)
		return nil, err
	}
	return rows, nil
}

// --- CalorieRepository ---
func (s *SQLiteStorage) CreateCalorie(ctx context.Context, e *internal.CalorieEntry) error {
	return s.insert(ctx, &e.ID, `INSERT INTO calorie_entries (user_id, entry_date, total_calories, protein, carbs, fat, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Date, e.TotalCalories, e.Protein, e.Carbs, e.Fat, e.Notes, s.stamp(&e.CreatedAt))
}

func (s *SQLiteStorage) GetCalorie(ctx context.Context, id int64) (*internal.CalorieEntry, error) {
	e, err := scanCalorie(s.db.QueryRowContext(ctx, `SELECT `+calorieColumns+` FROM calorie_entries WHERE id = ?`, id))
	if err != nil {
		return nil, sqliteErr(err)
	}
	return &e, nil
}

func (s *SQLiteStorage) ListCalories(ctx context.Context, userID string) ([]internal.CalorieEntry, error) {
	return s.queryCalories(ctx, `SELECT `+calorieColumns+` FROM calorie_entries WHERE user_id = ? ORDER BY entry_date DESC, id DESC`, userID)
}

func (s *SQLiteStorage) ListCaloriesInRange(ctx context.Context, userID string, from, to internal.Date) ([]internal.CalorieEntry, error) {
	return s.queryCalories(ctx, `SELECT `+calorieColumns+` FROM calorie_entries
		WHERE user_id = ? AND entry_date BETWEEN ? AND ? ORDER BY entry_date, id`, userID, from, to)
}

func (s *SQLiteStorage) queryCalories(ctx context.Context, query string, args ...any) ([]internal.CalorieEntry, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows.Next, func() (internal.CalorieEntry, error) { return scanCalorie(rows) }, rows.Err)
}

func (s *SQLiteStorage) UpdateCalorie(ctx context.Context, e *internal.CalorieEntry) error {
	return sqliteAffected(s.db.ExecContext(ctx, `UPDATE calorie_entries
		SET entry_date = ?, total_calories = ?, protein = ?, carbs = ?, fat = ?, notes = ? WHERE id = ?`,
		e.Date, e.TotalCalories, e.Protein, e.Carbs, e.Fat, e.Notes, e.ID))
}

func (s *SQLiteStorage) DeleteCalorie(ctx context.Context, id int64) error {
	return sqliteAffected(s.db.ExecContext(ctx, `DELETE FROM calorie_entries WHERE id = ?`, id))
}

// --- WeightRepository ---
func (s *SQLiteStorage) CreateWeight(ctx context.Context, e *internal.WeightEntry) error {
	return s.insert(ctx, &e.ID, `INSERT INTO weight_entries (user_id, entry_date, weight, notes, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Date, e.Weight.String(), e.Notes, s.stamp(&e.CreatedAt))
}

func (s *SQLiteStorage) GetWeight(ctx context.Context, id int64) (*internal.WeightEntry, error) {
	e, err := scanWeight(s.db.QueryRowContext(ctx, `SELECT `+sqliteWeightColumns+` FROM weight_entries WHERE id = ?`, id))
	if err != nil {
		return nil, sqliteErr(err)
	}
	return &e, nil
}

func (s *SQLiteStorage) FindWeightByDate(ctx context.Context, userID string, date internal.Date) (*internal.WeightEntry, error) {
	e, err := scanWeight(s.db.QueryRowContext(ctx, `SELECT `+sqliteWeightColumns+` FROM weight_entries
		WHERE user_id = ? AND entry_date = ?`, userID, date))
	if err != nil {
		return nil, sqliteErr(err)
	}
	return &e, nil
}

func (s *SQLiteStorage) ListWeights(ctx context.Context, userID string) ([]internal.WeightEntry, error) {
	return s.queryWeights(ctx, `SELECT `+sqliteWeightColumns+` FROM weight_entries WHERE user_id = ? ORDER BY entry_date DESC, id DESC`, userID)
}

func (s *SQLiteStorage) ListWeightsInRange(ctx context.Context, userID string, from, to internal.Date) ([]internal.WeightEntry, error) {
	return s.queryWeights(ctx, `SELECT `+sqliteWeightColumns+` FROM weight_entries
		WHERE user_id = ? AND entry_date BETWEEN ? AND ? ORDER BY entry_date, id`, userID, from, to)
}

func (s *SQLiteStorage) queryWeights(ctx context.Context, query string, args ...any) ([]internal.WeightEntry, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows.Next, func() (internal.WeightEntry, error) { return scanWeight(rows) }, rows.Err)
}

func (s *SQLiteStorage) UpdateWeight(ctx context.Context, e *internal.WeightEntry) error {
	return sqliteAffected(s.db.ExecContext(ctx, `UPDATE weight_entries SET entry_date = ?, weight = ?, notes = ? WHERE id = ?`,
		e.Date, e.Weight.String(), e.Notes, e.ID))
}

func (s *SQLiteStorage) DeleteWeight(ctx context.Context, id int64) error {
	return sqliteAffected(s.db.ExecContext(ctx, `DELETE FROM weight_entries WHERE id = ?`, id))
}

// --- WorkoutRepository ---
func (s *SQLiteStorage) CreateWorkout(ctx context.Context, e *internal.WorkoutEntry) error {
	return s.insert(ctx, &e.ID, `INSERT INTO workout_entries (user_id, entry_date, workout_type, duration, intensity, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Date, string(e.Type), e.Duration, string(e.Intensity), e.Notes, s.stamp(&e.CreatedAt))
}

func (s *SQLiteStorage) GetWorkout(ctx context.Context, id int64) (*internal.WorkoutEntry, error) {
	e, err := scanWorkout(s.db.QueryRowContext(ctx, `SELECT `+workoutColumns+` FROM workout_entries WHERE id = ?`, id))
	if err != nil {
		return nil, sqliteErr(err)
	}
	return &e, nil
}

func (s *SQLiteStorage) ListWorkouts(ctx context.Context, userID string) ([]internal.WorkoutEntry, error) {
	return s.queryWorkouts(ctx, `SELECT `+workoutColumns+` FROM workout_entries WHERE user_id = ? ORDER BY entry_date DESC, id DESC`, userID)
}

func (s *SQLiteStorage) ListWorkoutsInRange(ctx context.Context, userID string, from, to internal.Date) ([]internal.WorkoutEntry, error) {
	return s.queryWorkouts(ctx, `SELECT `+workoutColumns+` FROM workout_entries
		WHERE user_id = ? AND entry_date BETWEEN ? AND ? ORDER BY entry_date, id`, userID, from, to)
}

func (s *SQLiteStorage) queryWorkouts(ctx context.Context, query string, args ...any) ([]internal.WorkoutEntry, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows.Next, func() (internal.WorkoutEntry, error) { return scanWorkout(rows) }, rows.Err)
}

func (s *SQLiteStorage) UpdateWorkout(ctx context.Context, e *internal.WorkoutEntry) error {
	return sqliteAffected(s.db.ExecContext(ctx, `UPDATE workout_entries
		SET entry_date = ?, workout_type = ?, duration = ?, intensity = ?, notes = ? WHERE id = ?`,
		e.Date, string(e.Type), e.Duration, string(e.Intensity), e.Notes, e.ID))
}

func (s *SQLiteStorage) DeleteWorkout(ctx context.Context, id int64) error {
	return sqliteAffected(s.db.ExecContext(ctx, `DELETE FROM workout_entries WHERE id = ?`, id))
}

var _ Store = (*SQLiteStorage)(nil)
