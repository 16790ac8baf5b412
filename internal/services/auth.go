package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskify/internal/errs"
	"taskify/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Tokens is the credential pair issued on login and refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AuthService interface {
	RegisterUser(db *gorm.DB, email, password string) (*models.User, error)
	LoginUser(db *gorm.DB, email, password string) (*models.User, Tokens, error)
	RefreshTokens(db *gorm.DB, refreshToken string) (Tokens, error)
	RevokeToken(db *gorm.DB, refreshToken string) error
	PurgeExpiredTokens(db *gorm.DB) (int64, error)
}

type AuthServiceImpl struct {
	signKey    []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(signKey []byte, accessTTL, refreshTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{signKey: signKey, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *AuthServiceImpl) RegisterUser(db *gorm.DB, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(email) < 5 || len(email) > 255 || !emailRegex.MatchString(email) {
		return nil, errs.Validation("email", "invalid email format")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, errs.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.Must(uuid.NewV4()),
		Email:        email,
		PasswordHash: string(hash),
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthServiceImpl) LoginUser(db *gorm.DB, email, password string) (*models.User, Tokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same rejection as a wrong password; account existence is
			// not revealed.
			return nil, Tokens{}, errs.ErrUnauthorized
		}
		return nil, Tokens{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, Tokens{}, errs.ErrUnauthorized
	}

	tokens, err := s.issueTokens(db, user.ID)
	if err != nil {
		return nil, Tokens{}, err
	}
	return &user, tokens, nil
}

func (s *AuthServiceImpl) RefreshTokens(db *gorm.DB, refreshToken string) (Tokens, error) {
	var tokens Tokens
	err := db.Transaction(func(tx *gorm.DB) error {
		var record models.RefreshToken
		err := tx.Where("token_hash = ? AND expires_at > ?", hashToken(refreshToken), time.Now().UTC()).
			First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrUnauthorized
			}
			return err
		}

		// Rotate: the presented token is single-use.
		if err := tx.Delete(&record).Error; err != nil {
			return err
		}
		tokens, err = s.issueTokens(tx, record.UserID)
		return err
	})
	if err != nil {
		return Tokens{}, err
	}
	return tokens, nil
}

// RevokeToken deletes the refresh token row if it exists. Revoking an
// unknown token is not an error.
func (s *AuthServiceImpl) RevokeToken(db *gorm.DB, refreshToken string) error {
	return db.Where("token_hash = ?", hashToken(refreshToken)).
		Delete(&models.RefreshToken{}).Error
}

// PurgeExpiredTokens removes refresh tokens past their expiry and returns
// how many were deleted. Called by the background worker.
func (s *AuthServiceImpl) PurgeExpiredTokens(db *gorm.DB) (int64, error) {
	res := db.Where("expires_at <= ?", time.Now().UTC()).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

func (s *AuthServiceImpl) issueTokens(db *gorm.DB, userID uuid.UUID) (Tokens, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	if err != nil {
		return Tokens{}, err
	}

	refresh := uuid.Must(uuid.NewV4()).String() + uuid.Must(uuid.NewV4()).String()
	record := models.RefreshToken{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    userID,
		TokenHash: hashToken(refresh),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := db.Create(&record).Error; err != nil {
		return Tokens{}, err
	}

	return Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// hashToken produces the deterministic digest stored in place of the raw
// refresh token, so a database leak does not leak usable credentials.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// validatePassword enforces the registration password policy: at least 8
// characters with an uppercase letter, a lowercase letter and a digit.
func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 128 {
		return errs.Validation("password", "must be 8-128 characters")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errs.Validation("password", "must contain uppercase, lowercase and a number")
	}
	return nil
}
