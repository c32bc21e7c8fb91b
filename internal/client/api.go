package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fitpro/backend/internal/model"
)

// SessionKey is the single secret-store entry holding the serialized session.
const SessionKey = "fitpro_session"

// ErrUnauthorized is returned when the server rejects the stored credentials
// and a refresh could not recover them.
var ErrUnauthorized = errors.New("unauthorized")

// Session is the opaque blob persisted after a successful login or
// registration and used to restore authentication across app sessions.
type Session struct {
	UserID       string `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult mirrors the server envelope with the token payload decoded.
type AuthResult struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Data    *model.TokenData `json:"data"`
}

func (r *AuthResult) OK() bool {
	return r.Status == model.StatusSuccess
}

// APIClient talks to the auth API. Authenticated calls attach the stored
// bearer token and retry once through a refresh when the server rejects it.
type APIClient struct {
	baseURL string
	http    *http.Client
	secrets SecretStore
}

func NewAPIClient(baseURL string, secrets SecretStore) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		http:    &http.Client{},
		secrets: secrets,
	}
}

func (c *APIClient) Register(ctx context.Context, email, password, firstName, lastName string) (*AuthResult, error) {
	return c.postAuth(ctx, "/api/v1/auth/register", model.RegisterRequest{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	})
}

func (c *APIClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.postAuth(ctx, "/api/v1/auth/login", model.LoginRequest{
		Email:    email,
		Password: password,
	})
}

// Refresh exchanges the stored refresh token for a new pair and persists it.
func (c *APIClient) Refresh(ctx context.Context) (*Session, error) {
	session, err := c.LoadSession(ctx)
	if err != nil {
		return nil, ErrUnauthorized
	}

	result, err := c.postAuth(ctx, "/api/v1/auth/refresh", model.RefreshRequest{
		RefreshToken: session.RefreshToken,
	})
	if err != nil {
		return nil, err
	}
	if !result.OK() || result.Data == nil {
		_ = c.ClearSession(ctx)
		return nil, ErrUnauthorized
	}

	updated := &Session{
		UserID:       result.Data.UserID,
		AccessToken:  result.Data.AccessToken,
		RefreshToken: result.Data.RefreshToken,
	}
	if err := c.SaveSession(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Logout revokes the session server-side. The local blob is cleared on every
// path, but a server-side rejection is still surfaced so the caller knows the
// stored refresh token was not revoked.
func (c *APIClient) Logout(ctx context.Context) error {
	defer func() { _ = c.ClearSession(ctx) }()

	resp, err := c.doAuthorized(ctx, http.MethodPost, "/api/v1/auth/logout", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return fmt.Errorf("logout failed: %s", envelope.Message)
	}
	return nil
}

func (c *APIClient) Profile(ctx context.Context) (*model.Profile, error) {
	resp, err := c.doAuthorized(ctx, http.MethodGet, "/api/v1/auth/profile", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope struct {
		Status  string         `json:"status"`
		Message string         `json:"message"`
		Data    *model.Profile `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	if envelope.Status != model.StatusSuccess || envelope.Data == nil {
		return nil, fmt.Errorf("profile request failed: %s", envelope.Message)
	}
	return envelope.Data, nil
}

func (c *APIClient) LoadSession(ctx context.Context) (*Session, error) {
	blob, err := c.secrets.Get(ctx, SessionKey)
	if err != nil {
		return nil, err
	}
	var session Session
	if err := json.Unmarshal(blob, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *APIClient) SaveSession(ctx context.Context, session *Session) error {
	blob, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.secrets.Set(ctx, SessionKey, blob)
}

func (c *APIClient) ClearSession(ctx context.Context) error {
	return c.secrets.Delete(ctx, SessionKey)
}

func (c *APIClient) postAuth(ctx context.Context, path string, payload any) (*AuthResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result AuthResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// doAuthorized attaches the stored bearer token. When the server rejects it
// (401 for a missing token, 403 for an invalid or expired one) it refreshes
// once and retries; a failed refresh clears the session.
func (c *APIClient) doAuthorized(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	session, err := c.LoadSession(ctx)
	if err != nil {
		return nil, ErrUnauthorized
	}

	resp, err := c.send(ctx, method, path, body, session.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}
	resp.Body.Close()

	refreshed, err := c.Refresh(ctx)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return c.send(ctx, method, path, body, refreshed.AccessToken)
}

func (c *APIClient) send(ctx context.Context, method, path string, body []byte, accessToken string) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return c.http.Do(req)
}
