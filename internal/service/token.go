package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/fitpro/backend/internal/config"
	"github.com/fitpro/backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers malformed, badly signed, expired and revoked tokens
// uniformly. No more detail is leaked to the caller.
var ErrInvalidToken = errors.New("invalid token")

var ErrMisconfigured = errors.New("auth config invalid")

type tokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies the two token classes. Access and refresh
// tokens are signed with distinct secrets so either key space can be rotated
// without invalidating the other token class.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("%w: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required", ErrMisconfigured)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", ErrMisconfigured)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%w: token TTLs must be positive", ErrMisconfigured)
	}

	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}, nil
}

func (s *TokenService) IssueAccessToken(user *model.User) (string, error) {
	return s.sign(user, s.accessSecret, s.accessTTL)
}

func (s *TokenService) IssueRefreshToken(user *model.User) (string, error) {
	return s.sign(user, s.refreshSecret, s.refreshTTL)
}

func (s *TokenService) VerifyAccessToken(token string) (*model.TokenPayload, error) {
	return s.verify(token, s.accessSecret)
}

func (s *TokenService) VerifyRefreshToken(token string) (*model.TokenPayload, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenService) sign(user *model.User, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique jti so two tokens minted in the same second never
			// collide; rotation must always supersede the prior token.
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *TokenService) verify(tokenStr string, secret []byte) (*model.TokenPayload, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &model.TokenPayload{
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}
