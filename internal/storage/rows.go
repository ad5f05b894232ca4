package storage

import (
	"fmt"
	"time"

	"github.com/yourname/fittrack/internal"
)

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns    = "id, username, email, password_hash, full_name, avatar_url, created_at"
	calorieColumns = "id, user_id, entry_date, total_calories, protein, carbs, fat, notes, created_at"
	workoutColumns = "id, user_id, entry_date, workout_type, duration, intensity, notes, created_at"
)

// dbTime scans timestamps that drivers hand back either as time.Time or as
// text.
type dbTime struct{ t *time.Time }

func (d dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d.t = time.Time{}
	case time.Time:
		*d.t = v
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	return nil
}

func (d dbTime) parse(s string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			*d.t = t
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}

func scanUser(row rowScanner) (*internal.User, error) {
	var u internal.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.AvatarURL, dbTime{&u.CreatedAt})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanCalorie(row rowScanner) (internal.CalorieEntry, error) {
	var e internal.CalorieEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.TotalCalories, &e.Protein, &e.Carbs, &e.Fat, &e.Notes, dbTime{&e.CreatedAt})
	return e, err
}

// scanWeight expects the weight column as text so the decimal keeps its
// exact digits on every driver.
func scanWeight(row rowScanner) (internal.WeightEntry, error) {
	var e internal.WeightEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.Weight, &e.Notes, dbTime{&e.CreatedAt})
	return e, err
}

func scanWorkout(row rowScanner) (internal.WorkoutEntry, error) {
	var e internal.WorkoutEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.Type, &e.Duration, &e.Intensity, &e.Notes, dbTime{&e.CreatedAt})
	return e, err
}

// collect drains rows through scan; it always returns a non-nil slice.
func collect[T any](next func() bool, scan func() (T, error), rowsErr func() error) ([]T, error) {
	out := make([]T, 0)
	for next() {
		v, err := scan()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rowsErr(); err != nil {
		return nil, err
	}
	return out, nil
}

// nullTime turns a zero time into SQL NULL so the column default applies.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
