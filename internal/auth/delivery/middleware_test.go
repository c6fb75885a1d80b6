package delivery

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskpilot-backend/internal/auth/usecase"
	"taskpilot-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(uc usecase.AuthUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", AuthMiddleware(uc), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func get(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_DisabledPassesThrough(t *testing.T) {
	r := newRouter(usecase.NewAuthUsecase(&config.Config{}))

	assert.Equal(t, http.StatusOK, get(r, "").Code)
}

func TestAuthMiddleware_Enabled(t *testing.T) {
	uc := usecase.NewAuthUsecase(&config.Config{AuthSecret: "s3cret", AuthTokenExpiry: time.Hour})
	r := newRouter(uc)

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), CodeUnauthorized)

	assert.Equal(t, http.StatusUnauthorized, get(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer abc").Code)

	token, _, err := uc.IssueToken("owner")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+token).Code)
}
