package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_ADDR", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "BCRYPT_COST"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Server.Addr != ":3000" {
		t.Errorf("expected default addr :3000, got %q", cfg.Server.Addr)
	}
	if cfg.Auth.AccessTTL != 15*time.Minute {
		t.Errorf("expected 15m access TTL, got %v", cfg.Auth.AccessTTL)
	}
	if cfg.Auth.RefreshTTL != 7*24*time.Hour {
		t.Errorf("expected 168h refresh TTL, got %v", cfg.Auth.RefreshTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":8080")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("BCRYPT_COST", "12")

	cfg := Load()
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.Server.Addr)
	}
	if cfg.Auth.AccessTTL != 30*time.Minute {
		t.Errorf("expected 30m, got %v", cfg.Auth.AccessTTL)
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Errorf("expected 12, got %d", cfg.Auth.BcryptCost)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "not-a-duration")
	t.Setenv("BCRYPT_COST", "not-a-number")

	cfg := Load()
	if cfg.Auth.AccessTTL != 15*time.Minute {
		t.Errorf("expected fallback 15m, got %v", cfg.Auth.AccessTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("expected fallback 10, got %d", cfg.Auth.BcryptCost)
	}
}
