package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/yourname/fittrack/internal"
)

var validate = validator.New()

var (
	ErrForbidden      = errors.New("record belongs to another user")
	ErrInvalidInput   = errors.New("invalid input")
	ErrDuplicateDate  = errors.New("a weight entry already exists for this date")
	ErrBadCredentials = errors.New("invalid email or password")
)

// DuplicatePolicy decides what creating a second weight entry for an
// already-logged date does.
type DuplicatePolicy string

const (
	DuplicateMerge  DuplicatePolicy = "merge"  // update the existing entry
	DuplicateReject DuplicatePolicy = "reject" // fail with ErrDuplicateDate
)

// authorize reports ErrForbidden when rec is not owned by user.
func authorize(rec *internal.Record, user *internal.User) error {
	if rec.UserID != user.ID {
		return ErrForbidden
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func parseDate(field, s string) (internal.Date, error) {
	d, err := internal.ParseDate(s)
	if err != nil {
		return internal.Date{}, invalid("%s: %v", field, err)
	}
	return d, nil
}

// ParseRange parses an inclusive start/end pair of calendar dates.
func ParseRange(start, end string) (internal.Date, internal.Date, error) {
	from, err := parseDate("start", start)
	if err != nil {
		return internal.Date{}, internal.Date{}, err
	}
	to, err := parseDate("end", end)
	if err != nil {
		return internal.Date{}, internal.Date{}, err
	}
	if to.Before(from) {
		return internal.Date{}, internal.Date{}, invalid("end %s is before start %s", to, from)
	}
	return from, to, nil
}
