package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskify/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

var testSignKey = []byte("test-signing-key")

func createTestToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(testSignKey)
}

func setupProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Authz(middleware.AuthzConfig{SignKey: testSignKey}))
	router.GET("/protected", func(c *gin.Context) {
		id, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no identity"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id.String()})
	})
	return router
}

func TestAuthz_NoToken(t *testing.T) {
	router := setupProtectedRouter()

	req, _ := http.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthz_MalformedHeader(t *testing.T) {
	router := setupProtectedRouter()

	for _, header := range []string{"Bearer", "Bearer ", "Basic abc", "garbage"} {
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Header %q: expected status %d, got %d", header, http.StatusUnauthorized, w.Code)
		}
	}
}

func TestAuthz_InvalidSignature(t *testing.T) {
	router := setupProtectedRouter()

	claims := jwt.RegisteredClaims{
		Subject:   uuid.Must(uuid.NewV4()).String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-key"))
	if err != nil {
		t.Fatal("Failed to sign token:", err)
	}

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthz_ExpiredToken(t *testing.T) {
	router := setupProtectedRouter()

	token, err := createTestToken(uuid.Must(uuid.NewV4()).String(), -time.Minute)
	if err != nil {
		t.Fatal("Failed to create test token:", err)
	}

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthz_MissingSubject(t *testing.T) {
	router := setupProtectedRouter()

	token, err := createTestToken("", time.Hour)
	if err != nil {
		t.Fatal("Failed to create test token:", err)
	}

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthz_ValidToken(t *testing.T) {
	router := setupProtectedRouter()

	userID := uuid.Must(uuid.NewV4())
	token, err := createTestToken(userID.String(), time.Hour)
	if err != nil {
		t.Fatal("Failed to create test token:", err)
	}

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, userID.String()) {
		t.Errorf("Expected response to contain user id %s, got %s", userID, body)
	}
}
