package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/maestranza/inventory-backend/internal/auth/jwt"
	"github.com/maestranza/inventory-backend/internal/auth/repository"
	"github.com/maestranza/inventory-backend/pkg/errors"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

// AuthService handles authentication logic
type AuthService struct {
	users      *repository.UserRepository
	jwtManager *jwt.Manager
	logger     *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users *repository.UserRepository, jwtManager *jwt.Manager, log *logger.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtManager: jwtManager,
		logger:     log,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
	User         *UserInfo `json:"user"`
}

// UserInfo represents user information
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		// Same error regardless of whether the user exists
		return nil, errors.InvalidCredentials()
	}

	if !user.IsActive {
		return nil, errors.Unauthorized("account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.InvalidCredentials()
	}

	tokens, err := s.jwtManager.GenerateTokenPair(&jwt.UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.FullName,
		Role:     user.Role,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate tokens")
		return nil, errors.Internal("failed to generate tokens")
	}

	return &LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
		TokenType:    tokens.TokenType,
		User: &UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}, nil
}

// Refresh refreshes the access token using a refresh token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.Unauthorized("user no longer exists")
	}

	if !user.IsActive {
		return nil, errors.Unauthorized("account is disabled")
	}

	return s.jwtManager.GenerateTokenPair(&jwt.UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.FullName,
		Role:     user.Role,
	})
}

// CreateUserRequest represents a user creation request
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=admin supervisor operator viewer"`
}

// CreateUser registers a new user account
func (s *AuthService) CreateUser(ctx context.Context, req *CreateUserRequest) (*UserInfo, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("failed to hash password")
	}

	user := &repository.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user created")

	return &UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}, nil
}

// ListUsers returns all user accounts
func (s *AuthService) ListUsers(ctx context.Context) ([]*UserInfo, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]*UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, &UserInfo{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			FullName: u.FullName,
			Role:     u.Role,
		})
	}
	return infos, nil
}

// ChangePassword updates a user's password after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return errors.InvalidCredentials()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Internal("failed to hash password")
	}

	return s.users.UpdatePassword(ctx, userID, string(hash))
}
