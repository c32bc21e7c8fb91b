package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fitpro/backend/internal/config"
	"github.com/fitpro/backend/internal/db"
	"github.com/fitpro/backend/internal/logging"
	"github.com/fitpro/backend/internal/model"
	"github.com/fitpro/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = model.NormalizeEmail(email)
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeStore) Create(_ context.Context, email, passwordHash, firstName, lastName string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = model.NormalizeEmail(email)
	for _, u := range f.users {
		if u.Email == email {
			return nil, db.ErrDuplicateEmail
		}
	}
	now := time.Now()
	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users[user.ID] = user
	copied := *user
	return &copied, nil
}

func (f *fakeStore) UpdateRefreshToken(_ context.Context, id uuid.UUID, token *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (f *fakeStore) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return db.ErrNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	return nil
}

func (f *fakeStore) DeactivateUser(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.IsActive = false
	u.RefreshToken = nil
	return nil
}

func (f *fakeStore) remove(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		BcryptCost:    bcrypt.MinCost,
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeStore, *service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := service.NewTokenService(testAuthConfig())
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	store := newFakeStore()
	svc := service.NewAuthService(store, service.NewHasher(bcrypt.MinCost), tokens, logging.Nop())
	return NewRouter(svc), store, tokens
}

func doJSON(router *gin.Engine, method, path string, payload any, bearer string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeTokens(t *testing.T, w *httptest.ResponseRecorder) (string, model.TokenData) {
	t.Helper()
	var envelope struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    model.TokenData `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope.Status, envelope.Data
}

func register(t *testing.T, router *gin.Engine, email, password string) model.TokenData {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/v1/auth/register", model.RegisterRequest{
		Email:     email,
		Password:  password,
		FirstName: "A",
		LastName:  "B",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	_, data := decodeTokens(t, w)
	return data
}

func TestRegisterReturnsDecodableTokenPair(t *testing.T) {
	router, _, tokens := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/auth/register", model.RegisterRequest{
		Email:     "a@b.com",
		Password:  "secret123",
		FirstName: "A",
		LastName:  "B",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	status, data := decodeTokens(t, w)
	if status != model.StatusSuccess {
		t.Fatalf("expected success status, got %q", status)
	}
	if data.UserID == "" || data.AccessToken == "" || data.RefreshToken == "" {
		t.Fatalf("expected complete token data, got %+v", data)
	}
	if data.AccessToken == data.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	payload, err := tokens.VerifyAccessToken(data.AccessToken)
	if err != nil {
		t.Fatalf("access token should verify: %v", err)
	}
	if payload.UserID != data.UserID || payload.Email != "a@b.com" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/auth/register", model.RegisterRequest{Email: "a@b.com"}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _, _ := newTestRouter(t)
	register(t, router, "User@x.com", "secret123")

	w := doJSON(router, http.MethodPost, "/api/v1/auth/register", model.RegisterRequest{
		Email:    "user@x.com",
		Password: "secret123",
	}, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestLoginStatusCodes(t *testing.T) {
	router, store, _ := newTestRouter(t)
	data := register(t, router, "a@b.com", "secret123")

	w := doJSON(router, http.MethodPost, "/api/v1/auth/login", model.LoginRequest{Email: "a@b.com", Password: "secret123"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPost, "/api/v1/auth/login", model.LoginRequest{Email: "a@b.com", Password: "wrong"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	// The no-such-user message must match the wrong-password message.
	unknown := doJSON(router, http.MethodPost, "/api/v1/auth/login", model.LoginRequest{Email: "x@b.com", Password: "secret123"}, "")
	if unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", unknown.Code)
	}
	if w.Body.String() != unknown.Body.String() {
		t.Fatalf("enumeration leak: %s vs %s", w.Body.String(), unknown.Body.String())
	}

	id, _ := uuid.Parse(data.UserID)
	_ = store.DeactivateUser(context.Background(), id)
	w = doJSON(router, http.MethodPost, "/api/v1/auth/login", model.LoginRequest{Email: "a@b.com", Password: "secret123"}, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for deactivated account, got %d", w.Code)
	}
}

func TestRefreshRotationOverHTTP(t *testing.T) {
	router, _, _ := newTestRouter(t)
	data := register(t, router, "a@b.com", "secret123")

	w := doJSON(router, http.MethodPost, "/api/v1/auth/refresh", model.RefreshRequest{RefreshToken: data.RefreshToken}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	_, rotated := decodeTokens(t, w)
	if rotated.RefreshToken == "" {
		t.Fatal("expected a new refresh token")
	}

	// The pre-rotation token is no longer accepted.
	w = doJSON(router, http.MethodPost, "/api/v1/auth/refresh", model.RefreshRequest{RefreshToken: data.RefreshToken}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for superseded token, got %d", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/api/v1/auth/refresh", model.RefreshRequest{RefreshToken: "garbage"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed token, got %d", w.Code)
	}
}

func TestLogoutEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)
	data := register(t, router, "a@b.com", "secret123")

	w := doJSON(router, http.MethodPost, "/api/v1/auth/logout", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/api/v1/auth/logout", nil, "not-a-token")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for invalid token, got %d", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/api/v1/auth/logout", nil, data.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Logout revoked the stored refresh token.
	w = doJSON(router, http.MethodPost, "/api/v1/auth/refresh", model.RefreshRequest{RefreshToken: data.RefreshToken}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	router, _, _ := newTestRouter(t)
	register(t, router, "a@b.com", "secret123")

	cfg := testAuthConfig()
	cfg.AccessTTL = time.Nanosecond
	shortLived, err := service.NewTokenService(cfg)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	expired, err := shortLived.IssueAccessToken(&model.User{ID: uuid.New(), Email: "a@b.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := doJSON(router, http.MethodGet, "/api/v1/auth/profile", nil, expired)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for expired token, got %d", w.Code)
	}
}

func TestProfileEndpoint(t *testing.T) {
	router, store, _ := newTestRouter(t)
	data := register(t, router, "a@b.com", "secret123")

	w := doJSON(router, http.MethodGet, "/api/v1/auth/profile", nil, data.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(envelope.Data, &fields); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if fields["email"] != "a@b.com" {
		t.Fatalf("unexpected profile: %v", fields)
	}
	for _, hidden := range []string{"password", "passwordHash", "refreshToken"} {
		if _, ok := fields[hidden]; ok {
			t.Fatalf("profile must not expose %s", hidden)
		}
	}

	// A valid token for a user that no longer exists is a 404.
	id, _ := uuid.Parse(data.UserID)
	store.remove(id)
	w = doJSON(router, http.MethodGet, "/api/v1/auth/profile", nil, data.AccessToken)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, path := range []string{"/", "/healthz"} {
		w := doJSON(router, http.MethodGet, path, nil, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}
}
