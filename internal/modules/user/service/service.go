package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/catalog/internal/entity"
	"anoa.com/catalog/internal/modules/user/dto"
	"anoa.com/catalog/internal/modules/user/repository"
	"anoa.com/catalog/pkg/apperror"
	"anoa.com/catalog/pkg/ratelimit"
	"anoa.com/catalog/pkg/token"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	loginAction        = "login"
	loginFailureAction = "login_failures"

	// bcrypt only hashes the first 72 bytes and refuses anything longer.
	maxPasswordBytes = 72
)

// LoginPolicy locks a username for Window once MaxAttempts logins failed within Window.
type LoginPolicy struct {
	MaxAttempts int
	Window      time.Duration
}

type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
}

type authService struct {
	repo    repository.UserRepository
	tokens  *token.Manager
	limiter *ratelimit.Limiter
	policy  LoginPolicy
	logger  *zap.Logger
}

func NewAuthService(repo repository.UserRepository, tokens *token.Manager, limiter *ratelimit.Limiter, policy LoginPolicy, logger *zap.Logger) AuthService {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	return &authService{
		repo:    repo,
		tokens:  tokens,
		limiter: limiter,
		policy:  policy,
		logger:  logger.Named("auth_service"),
	}
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(input.Username)
	s.logger.Info("login attempt", zap.String("username", username))

	locked, err := s.limiter.Locked(ctx, username, loginAction)
	if err != nil {
		s.logger.Warn("login rate limit check failed", zap.Error(err))
	}
	if locked {
		ttl, _ := s.limiter.TTL(ctx, username, loginAction)
		return nil, apperror.New(429, fmt.Sprintf("too many login attempts, try again in %s", ttl.Round(time.Second)), apperror.ErrRateLimitExceeded)
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		s.logger.Warn("user not found", zap.String("username", username))
		s.recordFailure(ctx, username)
		return nil, apperror.Unauthorized("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.Warn("invalid password", zap.String("username", username))
		s.recordFailure(ctx, username)
		return nil, apperror.Unauthorized("invalid username or password")
	}

	if err := s.limiter.Clear(ctx, username, loginFailureAction); err != nil {
		s.logger.Warn("failed to clear login failures", zap.Error(err))
	}

	s.logger.Info("user logged in", zap.String("username", username))
	return s.buildAuthResponse(user)
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(input.Username)
	s.logger.Info("registration attempt", zap.String("username", username))

	if len(input.Password) > maxPasswordBytes {
		return nil, apperror.BadRequest("password must be at most %d bytes", maxPasswordBytes)
	}

	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, apperror.BadRequest("username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperror.BadRequest("password must be at most %d bytes", maxPasswordBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hashed),
		Role:         entity.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("username", username), zap.Int64("id", user.ID))
	return s.buildAuthResponse(user)
}

func (s *authService) recordFailure(ctx context.Context, username string) {
	failures, err := s.limiter.Hit(ctx, username, loginFailureAction, s.policy.Window)
	if err != nil {
		s.logger.Warn("failed to count login failure", zap.Error(err))
		return
	}
	if failures < int64(s.policy.MaxAttempts) {
		return
	}

	s.logger.Warn("locking login", zap.String("username", username), zap.Int64("failures", failures))
	if _, err := s.limiter.CheckAndSet(ctx, username, loginAction, s.policy.Window); err != nil {
		s.logger.Warn("failed to set login lock", zap.Error(err))
		return
	}
	if err := s.limiter.Clear(ctx, username, loginFailureAction); err != nil {
		s.logger.Warn("failed to clear login failures", zap.Error(err))
	}
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Generate(token.Subject{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token:     signed,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		ExpiresAt: expiresAt,
	}, nil
}
