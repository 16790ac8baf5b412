// Package middleware contains the gin middleware chain: identity
// resolution, rate limiting, panic recovery and request logging.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// UserIDKey is the gin context key under which the resolved caller
// identity is stored. Handlers must take the identity from here, never
// from the request payload.
const UserIDKey = "user_id"

type AuthzConfig struct {
	SignKey []byte
	Logger  *zap.Logger
}

// Authz verifies the bearer token and stores the subject user id in the
// gin context. Every failure mode produces the same 401 response; the
// specific cause is only logged.
func Authz(config AuthzConfig) gin.HandlerFunc {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		userID, err := resolveIdentity(c.GetHeader("Authorization"), config.SignKey)
		if err != nil {
			logger.Debug("identity resolution failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid or missing credentials",
			})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the caller identity resolved by Authz.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// resolveIdentity parses "Bearer <JWT>", verifies HS256 signature and
// expiry, and returns the subject claim as a UUID.
func resolveIdentity(authHeader string, signKey []byte) (uuid.UUID, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return uuid.Nil, errors.New("missing authorization header")
	}
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "bearer ") {
		return uuid.Nil, errors.New("malformed authorization header")
	}
	raw := strings.TrimSpace(authHeader[7:])
	if raw == "" {
		return uuid.Nil, errors.New("empty bearer token")
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return signKey, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, errors.New("invalid or expired token")
	}
	if claims.Subject == "" {
		return uuid.Nil, errors.New("token missing subject claim")
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.New("bad subject claim")
	}
	return id, nil
}
