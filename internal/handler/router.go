package handler

import (
	"github.com/fitpro/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the auth endpoints. Logout and profile sit behind the
// bearer middleware; the rest are public.
func NewRouter(authService *service.AuthService) *gin.Engine {
	router := gin.Default()

	router.GET("/", Root)
	router.GET("/healthz", Healthz)

	auth := router.Group("/api/v1/auth")
	authHandler := NewAuthHandler(authService)

	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := auth.Group("")
	protected.Use(AuthMiddleware(authService))
	protected.POST("/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.Profile)

	return router
}
