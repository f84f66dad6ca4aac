package controller

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"
	"learnpath_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newUserRouter(t *testing.T, db *gorm.DB, claims *util.Claims) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userService := service.NewUserService(repository.NewUserRepository(db))
	c := NewUserController(userService, nil)

	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		if claims != nil {
			ctx.Set("user", claims)
		}
	})
	router.GET("/api/users/profile", c.GetProfile)
	router.PUT("/api/users/profile", c.UpdateProfile)
	router.PUT("/api/users/:id", c.UpdateRole)
	return router
}

func TestUpdateRoleUnknownUserReturns404(t *testing.T) {
	db := setupTestDB(t)
	admin := &util.Claims{UserID: 1, Username: "admin1", Role: model.Admin}
	router := newUserRouter(t, db, admin)

	req := httptest.NewRequest(http.MethodPut, "/api/users/9999", strings.NewReader(`{"role":"instructor"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestProfileUnknownUserReturns404(t *testing.T) {
	db := setupTestDB(t)
	// claims 指向一个已不存在的用户（比如被删号后 token 仍有效）
	ghost := &util.Claims{UserID: 42, Username: "ghost", Role: model.Learner}
	router := newUserRouter(t, db, ghost)

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodPut, "/api/users/profile", strings.NewReader(`{"firstName":"Ada"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
