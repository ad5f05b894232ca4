package storage

import (
	"sort"
	"time"

	"github.com/yourname/fittrack/internal"
)

// table is the in-memory row set for one record kind. Callers hold the
// owning store's lock.
type table[T any] struct {
	rows   map[int64]*T
	nextID int64
	base   func(*T) *internal.Record
}

func newTable[T any](base func(*T) *internal.Record) *table[T] {
	return &table[T]{rows: make(map[int64]*T), nextID: 1, base: base}
}

func (t *table[T]) insert(e *T, now time.Time) {
	r := t.base(e)
	r.ID = t.nextID
	t.nextID++
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	row := *e
	t.rows[r.ID] = &row
}

// load puts a persisted row back without reassigning its id.
func (t *table[T]) load(e T) {
	r := t.base(&e)
	t.rows[r.ID] = &e
	if r.ID >= t.nextID {
		t.nextID = r.ID + 1
	}
}

func (t *table[T]) get(id int64) (*T, error) {
	row, ok := t.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *row
	return &out, nil
}

// update replaces the row but keeps its owner and creation time.
func (t *table[T]) update(e *T) error {
	r := t.base(e)
	existing, ok := t.rows[r.ID]
	if !ok {
		return ErrNotFound
	}
	old := t.base(existing)
	r.UserID = old.UserID
	r.CreatedAt = old.CreatedAt
	row := *e
	t.rows[r.ID] = &row
	return nil
}

func (t *table[T]) delete(id int64) error {
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T]) find(match func(*internal.Record) bool) *T {
	for _, row := range t.rows {
		if match(t.base(row)) {
			out := *row
			return &out
		}
	}
	return nil
}

// list returns the user's rows; a nil from or to leaves that side open.
func (t *table[T]) list(userID string, from, to *internal.Date, ascending bool) []T {
	out := make([]T, 0)
	for _, row := range t.rows {
		r := t.base(row)
		if r.UserID != userID {
			continue
		}
		if from != nil && r.Date.Before(*from) {
			continue
		}
		if to != nil && r.Date.After(*to) {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := t.base(&out[i]), t.base(&out[j])
		if !a.Date.Equal(b.Date) {
			if ascending {
				return a.Date.Before(b.Date)
			}
			return a.Date.After(b.Date)
		}
		if ascending {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
	return out
}

func (t *table[T]) all() []T {
	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return t.base(&out[i]).ID < t.base(&out[j]).ID })
	return out
}
