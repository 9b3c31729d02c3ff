package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-service/internal/auth"
	"github.com/spec-kit/repair-service/internal/config"
	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/repository"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

// UserService manages workflow accounts. Route-level guards restrict every
// mutating operation to the market department.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, bcryptCost int, logger *zap.Logger) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, logger: logger}
}

// UserCreateInput describes a new account.
type UserCreateInput struct {
	Username   string
	Name       string
	Role       domain.Role
	Department string
	Region     string
	Password   string
}

// Create validates and persists a new account.
func (s *UserService) Create(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || strings.TrimSpace(input.Name) == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("username, name and password required", nil)
	}
	if !domain.KnownRole(input.Role) {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}
	if input.Role == domain.RoleBusinessManager && !domain.OneOf(input.Department, domain.Departments) {
		return nil, apperrors.NewValidationError("business managers require a known department", map[string]any{"allowed": domain.Departments})
	}
	if input.Role == domain.RoleTechSupport && !domain.OneOf(input.Region, domain.Regions) {
		return nil, apperrors.NewValidationError("tech support requires a known region", map[string]any{"allowed": domain.Regions})
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already taken", map[string]any{"username": username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Name:         strings.TrimSpace(input.Name),
		Role:         input.Role,
		Department:   input.Department,
		Region:       input.Region,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return user, nil
}

// List returns every account.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, username string) error {
	if err := s.users.Delete(ctx, username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return err
	}
	s.logger.Info("user deleted", zap.String("username", username))
	return nil
}

// ResetPassword sets a new password for an account without requiring the
// old one (administrative reset).
func (s *UserService) ResetPassword(ctx context.Context, username, newPassword string) error {
	if newPassword == "" {
		return apperrors.NewValidationError("password required", nil)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, username, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return err
	}
	return nil
}

// EnsureAdmin seeds the bootstrap market-department administrator when the
// user table is empty, so a fresh deployment is operable.
func (s *UserService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err = s.Create(ctx, UserCreateInput{
		Username: cfg.Username,
		Name:     cfg.Name,
		Role:     domain.RoleMarketDept,
		Password: cfg.Password,
	})
	if err != nil {
		return err
	}
	s.logger.Info("seeded bootstrap admin", zap.String("username", cfg.Username))
	return nil
}
