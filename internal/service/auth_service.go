package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/joey603/sidour-avoda/internal/auth"
	"github.com/joey603/sidour-avoda/internal/config"
	"github.com/joey603/sidour-avoda/internal/domain"
	"github.com/joey603/sidour-avoda/internal/repository"
	apperrors "github.com/joey603/sidour-avoda/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
	Role     domain.Role
}

// Register creates a new account. Directors receive a generated
// enrollment code that workers use to find their sites.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, time.Time, error) {
	if !in.Role.Valid() {
		return nil, "", time.Time{}, apperrors.NewValidationError("unknown role", nil)
	}
	if in.FullName == "" || in.Password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("full name and password required", nil)
	}
	login := firstNonEmpty(in.Email, in.Phone)
	if login == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email or phone required", nil)
	}

	if _, err := s.users.GetByLogin(ctx, login); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("account already registered", nil)
	} else if err != nil && err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if in.Role == domain.RoleDirector {
		code := newDirectorCode()
		user.DirectorCode = &code
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates by email or phone plus password.
func (s *AuthService) Login(ctx context.Context, login, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// newDirectorCode derives a short human-shareable code.
func newDirectorCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
