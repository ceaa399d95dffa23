package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/internal/app/repository"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"github.com/back-pedagogico/stories-backend/pkg/util"
	"gorm.io/gorm"
)

const maxAdminNameLength = 45

// TokenRevoker blocks a token id until ttl elapses.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type LoginResult struct {
	Admin       *model.AdminUser
	AccessToken string
	ExpiresAt   time.Time
}

type AuthService interface {
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	// Logout revokes the token when a revoker is configured. It reports whether it did.
	Logout(ctx context.Context, claims *util.Claims) (bool, error)
	CreateAdmin(ctx context.Context, name, password string) (*model.AdminUser, error)
	EnsureAdmin(ctx context.Context, name, password string) (bool, error)
	GetAdmin(ctx context.Context, id uint) (*model.AdminUser, error)
}

type authService struct {
	adminRepo    repository.AdminUserRepository
	jwtSecret    string
	accessExpiry time.Duration
	revoker      TokenRevoker
}

// NewAuthService wires the credential store. revoker may be nil for stateless logout.
func NewAuthService(
	adminRepo repository.AdminUserRepository,
	jwtSecret string,
	accessExpiry time.Duration,
	revoker TokenRevoker,
) AuthService {
	return &authService{
		adminRepo:    adminRepo,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
		revoker:      revoker,
	}
}

func (s *authService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"identifier": identifier,
	})

	admin, err := s.adminRepo.FindByName(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: admin not found", map[string]interface{}{
				"identifier": identifier,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !util.VerifyPassword(admin.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"admin_id": admin.ID,
		})
		return nil, ErrInvalidCredentials
	}

	token, claims, err := util.GenerateAccessToken(admin.ID, admin.Name, s.jwtSecret, s.accessExpiry)
	if err != nil {
		logger.Error("Failed to generate access token", err, map[string]interface{}{
			"admin_id": admin.ID,
		})
		return nil, err
	}

	logger.Info("Admin logged in successfully", map[string]interface{}{
		"admin_id": admin.ID,
	})
	return &LoginResult{
		Admin:       admin,
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *util.Claims) (bool, error) {
	if s.revoker == nil || claims == nil {
		return false, nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.TTL()); err != nil {
		return false, err
	}

	logger.Info("Admin logged out", map[string]interface{}{
		"admin_subject": claims.Subject,
	})
	return true, nil
}

func (s *authService) CreateAdmin(ctx context.Context, name, password string) (*model.AdminUser, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxAdminNameLength {
		return nil, validationError("name", "must be at most %d characters", maxAdminNameLength)
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		if errors.Is(err, util.ErrEmptyPassword) {
			return nil, validationError("password", "must not be empty")
		}
		return nil, validationError("password", "%s", err.Error())
	}

	admin := &model.AdminUser{Name: name, PasswordHash: hash}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Warn("Admin creation failed: name already exists", map[string]interface{}{
				"name": name,
			})
			return nil, ErrAdminAlreadyExists
		}
		return nil, err
	}

	logger.Info("Admin created", map[string]interface{}{
		"admin_id": admin.ID,
		"name":     name,
	})
	return admin, nil
}

// EnsureAdmin creates the admin unless one with that name already exists.
// It reports whether a row was created.
func (s *authService) EnsureAdmin(ctx context.Context, name, password string) (bool, error) {
	_, err := s.adminRepo.FindByName(ctx, strings.TrimSpace(name))
	if err == nil {
		logger.Debug("Bootstrap admin already exists", map[string]interface{}{
			"name": name,
		})
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if _, err := s.CreateAdmin(ctx, name, password); err != nil {
		if errors.Is(err, ErrAdminAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *authService) GetAdmin(ctx context.Context, id uint) (*model.AdminUser, error) {
	admin, err := s.adminRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}
