package repository

import (
	"context"
	"errors"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"gorm.io/gorm"
)

type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	FindByID(ctx context.Context, id uint) (*model.Image, error)
	FindByPersonID(ctx context.Context, personID uint) ([]model.Image, error)
	Delete(ctx context.Context, id uint) error
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *model.Image) error {
	if err := r.db.WithContext(ctx).Omit("Person").Create(image).Error; err != nil {
		logger.Error("Failed to create image in database", err, map[string]interface{}{
			"person_id": image.PersonID,
			"filename":  image.Filename,
		})
		return err
	}

	logger.Debug("Image created in database", map[string]interface{}{
		"image_id":  image.ID,
		"person_id": image.PersonID,
	})
	return nil
}

func (r *imageRepository) FindByID(ctx context.Context, id uint) (*model.Image, error) {
	var image model.Image
	if err := r.db.WithContext(ctx).First(&image, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find image by ID", err, map[string]interface{}{
				"image_id": id,
			})
		}
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) FindByPersonID(ctx context.Context, personID uint) ([]model.Image, error) {
	images := []model.Image{}
	if err := r.db.WithContext(ctx).
		Where("person_id = ?", personID).
		Order("created_at DESC, id DESC").
		Find(&images).Error; err != nil {
		logger.Error("Failed to list images for person", err, map[string]interface{}{
			"person_id": personID,
		})
		return nil, err
	}
	return images, nil
}

func (r *imageRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Image{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete image from database", result.Error, map[string]interface{}{
			"image_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
