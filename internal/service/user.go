package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/auth"
	"github.com/yourname/fittrack/internal/storage"
)

var ErrAccountExists = fmt.Errorf("%w: email or username already registered", ErrInvalidInput)

type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	FullName *string `json:"fullName,omitempty" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is what register and login hand back to the client.
type Session struct {
	User  *internal.User `json:"user"`
	Token string         `json:"token"`
}

func Register(ctx context.Context, users storage.UserRepository, issuer auth.Issuer, req *RegisterRequest) (*Session, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	for _, lookup := range []func() (*internal.User, error){
		func() (*internal.User, error) { return users.GetUserByEmail(ctx, email) },
		func() (*internal.User, error) { return users.GetUserByUsername(ctx, req.Username) },
	} {
		_, err := lookup()
		if err == nil {
			return nil, ErrAccountExists
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &internal.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        email,
		PasswordHash: hash,
		FullName:     req.FullName,
	}
	if err := users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	return newSession(issuer, user)
}

func Login(ctx context.Context, users storage.UserRepository, issuer auth.Issuer, req *LoginRequest) (*Session, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	user, err := users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrBadCredentials
	}
	return newSession(issuer, user)
}

func newSession(issuer auth.Issuer, user *internal.User) (*Session, error) {
	token, err := issuer.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}
