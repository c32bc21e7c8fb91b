package handler

import (
	"net/http"
	"strings"

	"github.com/fitpro/backend/internal/model"
	"github.com/fitpro/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const authUserKey = "auth_user"

// AuthUser is the identity the middleware attaches to the request context.
type AuthUser struct {
	ID    uuid.UUID
	Email string
}

// AuthMiddleware enforces the bearer token convention: a missing or blank
// token is 401, a token that fails verification is 403.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, model.Error("No token provided"))
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			c.JSON(http.StatusUnauthorized, model.Error("No token provided"))
			c.Abort()
			return
		}

		payload, err := authService.VerifyAccessToken(token)
		if err != nil {
			c.JSON(http.StatusForbidden, model.Error("Invalid or expired token"))
			c.Abort()
			return
		}

		userID, err := uuid.Parse(payload.UserID)
		if err != nil {
			c.JSON(http.StatusForbidden, model.Error("Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(authUserKey, &AuthUser{ID: userID, Email: payload.Email})
		c.Next()
	}
}

func GetAuthUser(c *gin.Context) *AuthUser {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*AuthUser); ok {
			return user
		}
	}
	return nil
}
