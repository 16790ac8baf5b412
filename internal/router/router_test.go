package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskify/internal/config"
	"taskify/internal/database"
	"taskify/internal/router"
	"taskify/internal/services"
)

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTL = 15 * time.Minute
	cfg.Auth.RefreshTokenTTL = 7 * 24 * time.Hour
	cfg.RateLimit.Enabled = false

	return router.New(cfg, db, zap.NewNop(),
		services.NewTaskService(),
		services.NewAuthService([]byte(cfg.Auth.JWTSecret), cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL))
}

func TestHealthEndpoint(t *testing.T) {
	r := setupRouter(t)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestTasksRequireAuth(t *testing.T) {
	r := setupRouter(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/tasks"},
		{"POST", "/api/v1/tasks"},
		{"GET", "/api/v1/tasks/abc"},
		{"PATCH", "/api/v1/tasks/abc"},
		{"DELETE", "/api/v1/tasks/abc"},
	} {
		req, _ := http.NewRequest(route.method, route.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected status %d, got %d",
				route.method, route.path, http.StatusUnauthorized, w.Code)
		}
	}
}

func TestAuthEndpointsArePublic(t *testing.T) {
	r := setupRouter(t)

	// No token attached; a 401 would mean the auth group is behind the
	// identity middleware. Empty bodies get a 400 instead.
	for _, path := range []string{
		"/api/v1/auth/register",
		"/api/v1/auth/login",
		"/api/v1/auth/refresh",
		"/api/v1/auth/logout",
	} {
		req, _ := http.NewRequest("POST", path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code == http.StatusUnauthorized {
			t.Errorf("POST %s: expected public endpoint, got 401", path)
		}
	}
}
