package service

import (
	"database/sql"
	"errors"
	"fmt"
	"go-tube-api/config"
	"go-tube-api/logger"
	"go-tube-api/model"
	"go-tube-api/repository"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrIdentifierRequired   = errors.New("username or email is required")
	ErrUserNotFound         = errors.New("user does not exist")
	ErrInvalidCredentials   = errors.New("invalid user credentials")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrRefreshTokenMismatch = errors.New("refresh token is expired or used")
	ErrPasswordMismatch     = errors.New("old password is incorrect")
)

// bcryptCost is fixed; changing it only affects newly hashed passwords.
const bcryptCost = 10

// TokenPair bundles a freshly issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService owns password hashing, token issuance/verification, and the
// login/logout/refresh lifecycle.
type AuthService struct {
	userRepo repository.IUserRepository
}

func NewAuthService(userRepo repository.IUserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateAccessToken issues a short-lived stateless token carrying the
// account's identity claims.
func (s *AuthService) GenerateAccessToken(user *model.User) (string, error) {
	cfg := config.AppConfig.JWT

	claims := &model.AccessClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.AccessSecret))
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to sign access token")
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// GenerateRefreshToken issues a longer-lived token carrying only the account
// id. Persisting it onto the account is the caller's responsibility.
func (s *AuthService) GenerateRefreshToken(user *model.User) (string, error) {
	cfg := config.AppConfig.JWT

	claims := &model.RefreshClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.RefreshTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.RefreshSecret))
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to sign refresh token")
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return tokenString, nil
}

// VerifyAccessToken validates signature and expiry and returns the decoded
// claims. Any failure surfaces as ErrInvalidToken.
func (s *AuthService) VerifyAccessToken(tokenString string) (*model.AccessClaims, error) {
	claims := &model.AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWT.AccessSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken validates a token against the refresh secret. Access
// tokens do not verify here; the two kinds are signed with separate keys.
func (s *AuthService) VerifyRefreshToken(tokenString string) (*model.RefreshClaims, error) {
	claims := &model.RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWT.RefreshSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) generateTokenPair(user *model.User) (*TokenPair, error) {
	accessToken, err := s.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Login resolves the account by username or email, verifies the password,
// and issues a token pair. The refresh token is persisted onto the account,
// replacing any previous value.
func (s *AuthService) Login(username, email, password string) (*model.User, *TokenPair, error) {
	identifier := strings.ToLower(strings.TrimSpace(username))
	if identifier == "" {
		identifier = strings.ToLower(strings.TrimSpace(email))
	}
	if identifier == "" {
		return nil, nil, ErrIdentifierRequired
	}

	user, err := s.userRepo.GetByUsernameOrEmail(identifier)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	if !s.CheckPasswordHash(password, user.Password) {
		logger.Log.WithField("user_id", user.ID).Warn("Login attempt with invalid credentials")
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.SetRefreshToken(user.ID, pair.RefreshToken); err != nil {
		return nil, nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User logged in")
	user.Password = ""
	user.RefreshToken = ""
	return user, pair, nil
}

// Logout clears the stored refresh token so the previously issued one can no
// longer be exchanged.
func (s *AuthService) Logout(userID int) error {
	return s.userRepo.ClearRefreshToken(userID)
}

// RefreshTokens implements the rotation protocol: the presented token must
// decode, its account must exist, and it must exactly equal the stored
// value. The stored token is swapped atomically; a superseded token loses
// the race and is rejected.
func (s *AuthService) RefreshTokens(presented string) (*TokenPair, error) {
	claims, err := s.VerifyRefreshToken(presented)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if user.RefreshToken != presented {
		logger.Log.WithField("user_id", user.ID).Warn("Refresh attempted with a superseded token")
		return nil, ErrRefreshTokenMismatch
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, err
	}

	rotated, err := s.userRepo.RotateRefreshToken(user.ID, presented, pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !rotated {
		return nil, ErrRefreshTokenMismatch
	}

	logger.Log.WithField("user_id", user.ID).Info("Refresh token rotated")
	return pair, nil
}

// ChangePassword verifies the old password before hashing and storing the
// new one.
func (s *AuthService) ChangePassword(userID int, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrUserNotFound
		}
		return err
	}

	if !s.CheckPasswordHash(oldPassword, user.Password) {
		return ErrPasswordMismatch
	}

	hashed, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	logger.Log.WithField("user_id", userID).Info("Password changed")
	return s.userRepo.UpdatePassword(userID, hashed)
}
