package main

import (
	"context"
	"log"
	"time"

	"github.com/fitpro/backend/internal/config"
	"github.com/fitpro/backend/internal/db"
	"github.com/fitpro/backend/internal/handler"
	"github.com/fitpro/backend/internal/logging"
	"github.com/fitpro/backend/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.NewDefault()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	users := db.NewUsers(pool)
	if err := users.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	tokens, err := service.NewTokenService(cfg.Auth)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	hasher := service.NewHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(users, hasher, tokens, logger)

	router := handler.NewRouter(authService)

	logger.Info(ctx, "starting server", "addr", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
