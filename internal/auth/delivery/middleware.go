package delivery

import (
	"net/http"
	"strings"

	"taskpilot-backend/internal/auth/usecase"
	"taskpilot-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

const CodeUnauthorized = "UNAUTHORIZED"

// AuthMiddleware requires a valid bearer token when auth is enabled
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authUsecase.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, CodeUnauthorized, "authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Abort(c, http.StatusUnauthorized, CodeUnauthorized, "invalid authorization header format")
			return
		}

		principal, err := authUsecase.ValidateToken(parts[1])
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, CodeUnauthorized, "invalid or expired token")
			return
		}

		c.Set("principal", principal)
		c.Next()
	}
}
