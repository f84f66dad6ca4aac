package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learnpath_backend/internal/config"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-0123456789abcdef0123456789"
	cfg.JWT.ExpireTime = time.Hour
	return cfg
}

func tokenFor(t *testing.T, cfg *config.Config, role model.UserRole) string {
	t.Helper()
	user := &model.User{Username: "tester", Role: role}
	user.ID = 1
	token, err := util.GenerateJWT(user, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	require.NoError(t, err)
	return token
}

func newRouter(cfg *config.Config, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			c.JSON(http.StatusOK, gin.H{"user": claims.Username})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": nil})
	})
	router.GET("/probe", handlers...)
	return router
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	cfg := testConfig()
	router := newRouter(cfg, AuthMiddleware(cfg))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/probe", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareAcceptsBearerHeader(t *testing.T) {
	cfg := testConfig()
	router := newRouter(cfg, AuthMiddleware(cfg))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, cfg, model.Learner))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tester")
}

func TestAuthMiddlewareRejectsTamperedToken(t *testing.T) {
	cfg := testConfig()
	router := newRouter(cfg, AuthMiddleware(cfg))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, cfg, model.Learner)+"x")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTryAuthMiddlewareAllowsGuests(t *testing.T) {
	cfg := testConfig()
	router := newRouter(cfg, TryAuthMiddleware(cfg))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/probe", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleMiddleware(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		role     model.UserRole
		required model.UserRole
		want     int
	}{
		{"讲师访问讲师接口", model.Instructor, model.Instructor, http.StatusOK},
		{"学员访问讲师接口", model.Learner, model.Instructor, http.StatusForbidden},
		{"管理员访问讲师接口", model.Admin, model.Instructor, http.StatusOK},
		{"讲师访问管理员接口", model.Instructor, model.Admin, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(cfg, AuthMiddleware(cfg), RoleMiddleware(tt.required))

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/probe", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, cfg, tt.role))
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
