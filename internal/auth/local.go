package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/storage"
)

const tokenIssuer = "fittrack"

// LocalAuthProvider signs and verifies HS256 session tokens itself.
// Logged-out token ids stay on a denylist until they would have expired.
type LocalAuthProvider struct {
	secret []byte
	ttl    time.Duration
	users  storage.UserRepository
	now    func() time.Time
	logger internal.Logger

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

func NewLocalAuthProvider(secret string, ttl time.Duration, users storage.UserRepository, logger internal.Logger) *LocalAuthProvider {
	return &LocalAuthProvider{
		secret:  []byte(secret),
		ttl:     ttl,
		users:   users,
		now:     time.Now,
		logger:  logger,
		revoked: make(map[string]time.Time),
	}
}

func (a *LocalAuthProvider) IssueToken(user *internal.User) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   user.ID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *LocalAuthProvider) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return claims, nil
}

func (a *LocalAuthProvider) Authenticate(ctx context.Context, token string) (*internal.User, error) {
	claims, err := a.parse(token)
	if err != nil {
		a.logger.Warnf("auth: rejected token: %v", err)
		return nil, err
	}
	a.mu.Lock()
	_, revoked := a.revoked[claims.ID]
	a.mu.Unlock()
	if revoked {
		return nil, ErrInvalidToken
	}
	user, err := a.users.GetUser(ctx, claims.Subject)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return user, err
}

func (a *LocalAuthProvider) Revoke(ctx context.Context, token string) error {
	claims, err := a.parse(token)
	if err != nil {
		return err
	}
	now := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()
	for jti, exp := range a.revoked {
		if exp.Before(now) {
			delete(a.revoked, jti)
		}
	}
	a.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}

var (
	_ Provider = (*LocalAuthProvider)(nil)
	_ Issuer   = (*LocalAuthProvider)(nil)
)
