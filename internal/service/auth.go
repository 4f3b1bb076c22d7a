// Package service provides the business logic layer for accounts, books, and reviews.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

// validate is a shared validator instance for request validation.
var validate = validation.New()

// AuthService handles user signup, login, and token verification.
type AuthService struct {
	store        *sqlite.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store *sqlite.Store, tokenService *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		logger:       logger,
	}
}

// SignupRequest contains new account data.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains the authenticated user and their access token.
type AuthResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Signup creates a new user account and returns an access token for it.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// Duplicate usernames surface as an already-exists domain error.
	user, err := s.store.CreateUser(ctx, req.Username, passwordHash)
	if err != nil {
		return nil, err
	}

	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User signed up", "user_id", user.ID, "username", user.Username)
	}

	return &AuthResponse{
		User:      user,
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokenService.AccessTokenDuration()),
	}, nil
}

// Login verifies credentials and returns an access token.
// A missing user and a wrong password produce the same error so the
// response does not reveal which usernames exist.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials("invalid username or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	match, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}

	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User logged in", "user_id", user.ID, "username", user.Username)
	}

	return &AuthResponse{
		User:      user,
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokenService.AccessTokenDuration()),
	}, nil
}

// VerifyAccessToken validates a token and returns the identity it carries.
func (s *AuthService) VerifyAccessToken(tokenString string) (*domain.Identity, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &domain.Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
	}, nil
}
