package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/storage"
)

// RemoteAuthProvider delegates token checks to a hosted identity service
// (GoTrue-style /auth/v1 API) and mirrors each identity into a local user
// the first time it is seen.
type RemoteAuthProvider struct {
	AuthServiceURL string
	APIKey         string
	HTTPClient     *http.Client
	users          storage.UserRepository
	logger         internal.Logger
}

type remoteIdentity struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Username  string `json:"username"`
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
}

func NewRemoteAuthProvider(url, apiKey string, users storage.UserRepository, logger internal.Logger) *RemoteAuthProvider {
	return &RemoteAuthProvider{
		AuthServiceURL: strings.TrimRight(url, "/"),
		APIKey:         apiKey,
		HTTPClient:     &http.Client{Timeout: 5 * time.Second},
		users:          users,
		logger:         logger,
	}
}

func (a *RemoteAuthProvider) call(ctx context.Context, method, path, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.AuthServiceURL+path, nil)
	if err != nil {
		a.logger.Errorf("failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if a.APIKey != "" {
		req.Header.Set("apikey", a.APIKey)
	}
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		a.logger.Errorf("failed to call auth service: %v", err)
		return nil, err
	}
	return resp, nil
}

func (a *RemoteAuthProvider) Authenticate(ctx context.Context, token string) (*internal.User, error) {
	resp, err := a.call(ctx, http.MethodGet, "/auth/v1/user", token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		a.logger.Errorf("auth service returned %d", resp.StatusCode)
		return nil, fmt.Errorf("auth service returned %d", resp.StatusCode)
	}
	var id remoteIdentity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		a.logger.Errorf("failed to decode auth response: %v", err)
		return nil, err
	}
	if id.ID == "" {
		return nil, ErrInvalidToken
	}
	return a.resolve(ctx, &id)
}

// resolve returns the local user for id, creating it on first sight.
func (a *RemoteAuthProvider) resolve(ctx context.Context, id *remoteIdentity) (*internal.User, error) {
	user, err := a.users.GetUser(ctx, id.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	username := id.UserMetadata.Username
	if username == "" {
		username, _, _ = strings.Cut(id.Email, "@")
	}
	if username == "" {
		username = id.ID
	}
	user = &internal.User{ID: id.ID, Username: username, Email: id.Email}
	if id.UserMetadata.FullName != "" {
		user.FullName = &id.UserMetadata.FullName
	}
	if id.UserMetadata.AvatarURL != "" {
		user.AvatarURL = &id.UserMetadata.AvatarURL
	}
	if user.Email == "" {
		user.Email = id.ID + "@users.invalid"
	}

	err = a.users.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrConflict) {
		// Another request provisioned the same identity, or the email
		// or username is taken by a different account.
		if existing, getErr := a.users.GetUser(ctx, id.ID); getErr == nil {
			return existing, nil
		}
		if taken, getErr := a.users.GetUserByEmail(ctx, user.Email); getErr == nil && taken.ID != id.ID {
			a.logger.Warnf("auth: email of identity %s already belongs to local user %s, using a placeholder", id.ID, taken.ID)
			user.Email = id.ID + "@users.invalid"
		}
		if taken, getErr := a.users.GetUserByUsername(ctx, user.Username); getErr == nil && taken.ID != id.ID {
			user.Username = username + "-" + shortID(id.ID)
		}
		err = a.users.CreateUser(ctx, user)
	}
	if err != nil {
		a.logger.Errorf("auth: failed to provision user %s: %v", id.ID, err)
		return nil, err
	}
	a.logger.Infof("auth: provisioned local user %s", id.ID)
	return user, nil
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (a *RemoteAuthProvider) Revoke(ctx context.Context, token string) error {
	resp, err := a.call(ctx, http.MethodPost, "/auth/v1/logout", token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("auth service logout returned %d", resp.StatusCode)
	}
	return nil
}

var _ Provider = (*RemoteAuthProvider)(nil)
