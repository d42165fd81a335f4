package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"

	"github.com/cris-imc/invitaciones-sub002/pkg/auth"
	"github.com/cris-imc/invitaciones-sub002/pkg/config"
	"github.com/cris-imc/invitaciones-sub002/pkg/logger"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/repository"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
}

type authService struct {
	users  repository.UserRepository
	limits repository.RateLimitRepository
	config *config.Config
}

// NewAuthService builds the host account service. limits may be nil, which
// leaves login unthrottled.
func NewAuthService(users repository.UserRepository, limits repository.RateLimitRepository, cfg *config.Config) AuthService {
	return &authService{users: users, limits: limits, config: cfg}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, domain.Invalid("email", "is already registered")
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req, hash)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, domain.Invalid("email", "is already registered")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkLoginLimit(ctx, req.Email); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	ttl := s.config.Auth.HostSessionTTL
	token, err := auth.NewAccessToken(user.ID, user.Email, auth.RoleHost, s.config.Auth.JWTSecret, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(ttl.Seconds()),
		User:        user.ToUserInfo(),
	}, nil
}

// checkLoginLimit counts every attempt for the email, successful or not. A
// failing limiter lets the attempt through.
func (s *authService) checkLoginLimit(ctx context.Context, email string) error {
	attempts := s.config.Auth.LoginAttempts
	if s.limits == nil || attempts <= 0 {
		return nil
	}
	allowed, err := s.limits.CheckRateLimit(ctx, "login:"+email, attempts, s.config.Auth.LoginWindow)
	if err != nil {
		logger.WarnContext(ctx, "Login rate limit unavailable", "error", err)
		return nil
	}
	if !allowed {
		logger.WarnContext(ctx, "Login rate limit exceeded")
		return domain.ErrTooManyAttempts
	}
	return nil
}
