package repository

import (
	"context"
	"errors"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"gorm.io/gorm"
)

type AdminUserRepository interface {
	Create(ctx context.Context, admin *model.AdminUser) error
	FindByID(ctx context.Context, id uint) (*model.AdminUser, error)
	FindByName(ctx context.Context, name string) (*model.AdminUser, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}

type adminUserRepository struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

func (r *adminUserRepository) Create(ctx context.Context, admin *model.AdminUser) error {
	logger.Debug("Creating admin user in database", map[string]interface{}{
		"name": admin.Name,
	})

	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		logger.Error("Failed to create admin user in database", err, map[string]interface{}{
			"name": admin.Name,
		})
		return err
	}

	logger.Debug("Admin user created in database", map[string]interface{}{
		"admin_id": admin.ID,
	})
	return nil
}

func (r *adminUserRepository) FindByID(ctx context.Context, id uint) (*model.AdminUser, error) {
	var admin model.AdminUser
	if err := r.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find admin user by ID", err, map[string]interface{}{
				"admin_id": id,
			})
		}
		return nil, err
	}
	return &admin, nil
}

func (r *adminUserRepository) FindByName(ctx context.Context, name string) (*model.AdminUser, error) {
	logger.Debug("Finding admin user by name", map[string]interface{}{
		"name": name,
	})

	var admin model.AdminUser
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&admin).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find admin user by name", err, map[string]interface{}{
				"name": name,
			})
		}
		return nil, err
	}
	return &admin, nil
}

func (r *adminUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&model.AdminUser{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		logger.Error("Failed to update admin password", result.Error, map[string]interface{}{
			"admin_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
