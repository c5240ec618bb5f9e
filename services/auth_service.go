package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/taskizy-api/dto"
	"github.com/taskizy-api/lib/cache"
	"github.com/taskizy-api/metrics"
	"github.com/taskizy-api/models"
	"github.com/taskizy-api/repositories"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: no active account found with the given credentials", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: token is invalid or expired", ErrUnauthorized)
	ErrTokenRevoked       = fmt.Errorf("%w: token is blacklisted", ErrUnauthorized)
)

// AuthService handles signup, login and the JWT lifecycle
type AuthService struct {
	db            *gorm.DB
	blacklist     cache.TokenBlacklist
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	log           zerolog.Logger
	now           func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	db *gorm.DB,
	blacklist cache.TokenBlacklist,
	secret string,
	accessExpiry, refreshExpiry time.Duration,
	log zerolog.Logger) (*AuthService, error) {

	if secret == "" {
		return nil, errors.New("JWT_SECRET not set in environment")
	}
	return &AuthService{
		db:            db,
		blacklist:     blacklist,
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		log:           log,
		now:           time.Now,
	}, nil
}

func errDuplicateEmail() error {
	return NewValidationError("email", "user with this Email Address already exists.")
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	if req.Password != req.RePassword {
		return nil, NewValidationError("non_field_errors", "The two password fields didn't match.")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	users := repositories.NewUserRepository(s.db)

	exists, err := users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errDuplicateEmail()
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      models.DefaultRole,
		IsActive:  true,
	}
	if err := users.Create(ctx, &user); err != nil {
		// a concurrent signup won the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errDuplicateEmail()
		}
		return nil, err
	}

	metrics.UsersRegistered.Inc()
	s.log.Info().Uint("user_id", user.ID).Msg("user registered")
	return &user, nil
}

// Login authenticates a user and returns an access/refresh pair
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenPairResponse, error) {
	user, err := repositories.NewUserRepository(s.db).FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	access, refresh, err := s.GenerateTokens(user)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPairResponse{Access: access, Refresh: refresh}, nil
}

// Refresh issues a new access token for a valid, non-revoked refresh token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AccessTokenResponse, error) {
	claims, err := s.ValidateToken(refreshToken, dto.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	user, err := s.Authenticate(ctx, claims)
	if err != nil {
		return nil, err
	}

	access, err := s.signToken(user, dto.TokenTypeAccess, s.accessExpiry)
	if err != nil {
		return nil, err
	}
	return &dto.AccessTokenResponse{Access: access}, nil
}

// Logout blacklists the refresh token until it expires
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.ValidateToken(refreshToken, dto.TokenTypeRefresh)
	if err != nil {
		return NewValidationError("refresh", "Token is invalid or expired")
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if err := s.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	metrics.TokensRevoked.Inc()
	s.log.Info().Uint("user_id", claims.UserID).Msg("refresh token revoked")
	return nil
}

// Authenticate resolves the active user the claims belong to
func (s *AuthService) Authenticate(ctx context.Context, claims *dto.TokenClaims) (*models.User, error) {
	user, err := repositories.NewUserRepository(s.db).FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// GenerateTokens creates an access and a refresh token for user
func (s *AuthService) GenerateTokens(user *models.User) (string, string, error) {
	access, err := s.signToken(user, dto.TokenTypeAccess, s.accessExpiry)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.signToken(user, dto.TokenTypeRefresh, s.refreshExpiry)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *AuthService) signToken(user *models.User, tokenType string, expiry time.Duration) (string, error) {
	now := s.now()
	claims := dto.TokenClaims{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		UserImage: user.UserImage,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses a token and checks signature, expiry and token type
func (s *AuthService) ValidateToken(tokenString, expectedType string) (*dto.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*dto.TokenClaims)
	if !ok || claims.TokenType != expectedType || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
