package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates an account and returns a signed token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, *domain.Token, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, nil, "", err
	}
	if exists {
		return nil, nil, "", apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, nil, "", apperrors.NewValidationError("password too long", map[string]any{"max_bytes": auth.MaxPasswordBytes})
	}
	if err != nil {
		return nil, nil, "", err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, "", apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, nil, "", err
	}

	token, signed, err := s.issue(user)
	if err != nil {
		return nil, nil, "", err
	}
	return user, token, signed, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.Token, string, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, "", apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, "", err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, "", apperrors.NewUnauthorized("invalid credentials")
	}
	token, signed, err := s.issue(user)
	if err != nil {
		return nil, nil, "", err
	}
	return user, token, signed, nil
}

func (s *AuthService) issue(user *domain.User) (*domain.Token, string, error) {
	signed, expiresAt, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	return &domain.Token{
		SubjectID: user.ID,
		Email:     user.Email,
		ExpiresAt: expiresAt,
		IssuedAt:  time.Now(),
	}, signed, nil
}
