package auth

import (
	"context"
	"errors"

	"github.com/yourname/fittrack/internal"
)

var (
	ErrInvalidToken = errors.New("auth: invalid or expired token")
	ErrUnsupported  = errors.New("auth: not supported by this provider")
)

// Provider resolves a bearer token to a known local user.
type Provider interface {
	Authenticate(ctx context.Context, token string) (*internal.User, error)
	// Revoke ends the session behind token.
	Revoke(ctx context.Context, token string) error
}

// Issuer mints session tokens after a local login or registration.
type Issuer interface {
	IssueToken(user *internal.User) (string, error)
}
