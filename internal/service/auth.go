package service

import (
	"context"
	"errors"
	"time"

	"github.com/fitpro/backend/internal/db"
	"github.com/fitpro/backend/internal/logging"
	"github.com/fitpro/backend/internal/model"
	"github.com/google/uuid"
)

var (
	ErrValidation         = errors.New("email and password are required")
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("user account is deactivated")
	ErrNotFound           = errors.New("user not found")
)

// UserStore is the durable user record store. The Postgres implementation
// lives in internal/db; tests inject an in-memory fake.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email, passwordHash, firstName, lastName string) (*model.User, error)
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	DeactivateUser(ctx context.Context, id uuid.UUID) error
}

// AuthService composes the hasher, token service and user store into the
// register/login/refresh/logout operations. It holds no cross-request state;
// everything durable lives in the store.
type AuthService struct {
	store  UserStore
	hasher *Hasher
	tokens *TokenService
	log    logging.Logger
}

func NewAuthService(store UserStore, hasher *Hasher, tokens *TokenService, log logging.Logger) *AuthService {
	return &AuthService{store: store, hasher: hasher, tokens: tokens, log: log}
}

func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*model.TokenData, error) {
	if email == "" || password == "" || !model.ValidEmail(email) {
		return nil, ErrValidation
	}

	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.Create(ctx, email, hash, firstName, lastName)
	if err != nil {
		// The pre-check races with concurrent registration; the unique
		// constraint is the authority.
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	s.log.Info(ctx, "user registered", "userId", user.ID.String())
	return s.issueSession(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.TokenData, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// Same outcome as a wrong password, so callers cannot probe
			// which addresses are registered.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	// Checked after the password so account status is only revealed to a
	// caller who already holds the correct credential.
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	data, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "userId", user.ID.String())
	return data, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenData, error) {
	payload, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	// Revocation-by-mismatch: only the single stored token is acceptable.
	// Rotation below immediately supersedes it.
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, ErrInvalidToken
	}

	return s.issueSession(ctx, user)
}

// Logout clears the stored refresh token. Access tokens already issued stay
// valid until natural expiry; logout only prevents further refresh.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.UpdateRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.log.Info(ctx, "user logged out", "userId", userID.String())
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	profile := &model.Profile{
		ID:        user.ID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName(),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
	if user.LastLogin != nil {
		ts := user.LastLogin.Format(time.RFC3339)
		profile.LastLogin = &ts
	}
	return profile, nil
}

// Deactivate soft-deletes the account. The store clears the refresh token in
// the same write, so the session cannot be refreshed afterwards.
func (s *AuthService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.DeactivateUser(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.log.Info(ctx, "user deactivated", "userId", userID.String())
	return nil
}

// VerifyAccessToken exposes access-token verification for the HTTP
// middleware.
func (s *AuthService) VerifyAccessToken(token string) (*model.TokenPayload, error) {
	return s.tokens.VerifyAccessToken(token)
}

// issueSession mints a fresh access/refresh pair and stores the refresh
// token, superseding any prior session for the user.
func (s *AuthService) issueSession(ctx context.Context, user *model.User) (*model.TokenData, error) {
	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, err
	}

	return &model.TokenData{
		UserID:       user.ID.String(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
