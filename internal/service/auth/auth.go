// internal/service/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"strings"

	"settings-service/internal/domain/account"
	xerrors "settings-service/internal/pkg/errors"
	"settings-service/internal/pkg/jwt"
	"settings-service/internal/pkg/ratelimit"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AccountStore persists admin-panel accounts.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*account.Account, error)
	FindByID(ctx context.Context, id int64) (*account.Account, error)
	Create(ctx context.Context, acc *account.Account) error
}

type Service struct {
	accounts   AccountStore
	jwtManager *jwt.Manager
	limiter    *ratelimit.Limiter
	logger     *zap.Logger
}

func NewService(accounts AccountStore, jwtManager *jwt.Manager, limiter *ratelimit.Limiter, logger *zap.Logger) *Service {
	return &Service{
		accounts:   accounts,
		jwtManager: jwtManager,
		limiter:    limiter,
		logger:     logger,
	}
}

// Login verifies credentials and issues a signed token. Wrong email and
// wrong password produce the same error.
func (s *Service) Login(ctx context.Context, req *account.LoginRequest) (*account.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	acc, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if !acc.Active {
		return nil, xerrors.ErrForbidden
	}

	if s.limiter != nil {
		allowed, lerr := s.limiter.Allow(ctx, acc.ID)
		if lerr != nil {
			s.logger.Warn("login rate limiter unavailable", zap.Error(lerr))
		} else if !allowed {
			return nil, xerrors.ErrRateLimited
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login rejected", zap.String("email", email))
		return nil, xerrors.ErrUnauthorized
	}

	token, err := s.jwtManager.Generate(acc.ID, string(acc.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, acc.ID); err != nil {
			s.logger.Debug("failed to reset login attempts", zap.Error(err))
		}
	}

	s.logger.Info("account logged in",
		zap.Int64("account_id", acc.ID),
		zap.String("role", string(acc.Role)),
	)
	return &account.LoginResponse{Token: token, Account: acc}, nil
}

// GetAccount loads an account by id for authenticated requests.
func (s *Service) GetAccount(ctx context.Context, id int64) (*account.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

// EnsureAdmin seeds the bootstrap admin account on startup when none
// exists for the given email. Returns the existing account untouched
// otherwise.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, fullName string) (*account.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: admin email and password are required", xerrors.ErrInvalidInput)
	}

	acc, err := s.accounts.FindByEmail(ctx, email)
	if err == nil {
		return acc, nil
	}
	if !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	acc = &account.Account{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         account.RoleAdmin,
		Active:       true,
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, fmt.Errorf("failed to create admin account: %w", err)
	}

	s.logger.Info("admin account seeded", zap.String("email", email))
	return acc, nil
}
