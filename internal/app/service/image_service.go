package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/internal/app/repository"
	"github.com/back-pedagogico/stories-backend/internal/media"
	"github.com/back-pedagogico/stories-backend/internal/storage"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"github.com/back-pedagogico/stories-backend/pkg/util"
	"gorm.io/gorm"
)

type UploadImageInput struct {
	PersonID    uint
	Filename    string
	Content     io.Reader
	Description *string
}

type ImageService interface {
	Upload(ctx context.Context, input UploadImageInput) (*model.Image, error)
	ListByPerson(ctx context.Context, personID uint) ([]model.Image, error)
	DeleteImage(ctx context.Context, id uint) error
	OpenFile(ctx context.Context, name string) (io.ReadCloser, int64, error)
}

type imageService struct {
	imageRepo         repository.ImageRepository
	personRepo        repository.PersonRepository
	store             storage.FileStore
	thumbnails        *media.Processor
	allowedExtensions []string
}

// NewImageService wires the upload handler. thumbnails may be nil.
func NewImageService(
	imageRepo repository.ImageRepository,
	personRepo repository.PersonRepository,
	store storage.FileStore,
	thumbnails *media.Processor,
	allowedExtensions []string,
) ImageService {
	return &imageService{
		imageRepo:         imageRepo,
		personRepo:        personRepo,
		store:             store,
		thumbnails:        thumbnails,
		allowedExtensions: allowedExtensions,
	}
}

// Upload stores the file under a random name and records it. If the record
// cannot be inserted the stored files are removed again.
func (s *imageService) Upload(ctx context.Context, input UploadImageInput) (*model.Image, error) {
	logger.Info("Uploading image", map[string]interface{}{
		"person_id": input.PersonID,
		"filename":  input.Filename,
	})

	if err := requirePerson(ctx, s.personRepo, input.PersonID); err != nil {
		return nil, err
	}
	if !util.ExtensionAllowed(input.Filename, s.allowedExtensions) {
		logger.Warn("Upload rejected: file type not allowed", map[string]interface{}{
			"person_id": input.PersonID,
			"filename":  input.Filename,
		})
		return nil, ErrUnsupportedFile
	}

	data, err := io.ReadAll(input.Content)
	if err != nil {
		return nil, err
	}

	name := util.RandomFilename(input.Filename)
	if err := s.store.Save(ctx, name, bytes.NewReader(data)); err != nil {
		logger.Error("Failed to store uploaded file", err, map[string]interface{}{
			"filename": name,
		})
		return nil, err
	}

	image := &model.Image{
		PersonID:    input.PersonID,
		Filename:    name,
		Description: trimmedOrNil(input.Description),
	}

	if s.thumbnails != nil {
		thumb, err := s.thumbnails.GenerateThumbnail(ctx, data, name)
		if err != nil {
			logger.Warn("Thumbnail generation skipped", map[string]interface{}{
				"filename": name,
				"error":    err.Error(),
			})
		} else {
			image.Thumbnail = &thumb
		}
	}

	if err := s.imageRepo.Create(ctx, image); err != nil {
		removeStoredFiles(ctx, s.store, image.StoredFiles())
		return nil, err
	}

	logger.Info("Image uploaded successfully", map[string]interface{}{
		"image_id":  image.ID,
		"person_id": image.PersonID,
		"filename":  image.Filename,
		"size":      len(data),
	})
	return image, nil
}

func (s *imageService) ListByPerson(ctx context.Context, personID uint) ([]model.Image, error) {
	if err := requirePerson(ctx, s.personRepo, personID); err != nil {
		return nil, err
	}
	return s.imageRepo.FindByPersonID(ctx, personID)
}

// DeleteImage removes the record, then its files best-effort.
func (s *imageService) DeleteImage(ctx context.Context, id uint) error {
	image, err := s.imageRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}
	if err := s.imageRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}
	removeStoredFiles(ctx, s.store, image.StoredFiles())

	logger.Info("Image deleted", map[string]interface{}{
		"image_id": id,
	})
	return nil
}

func (s *imageService) OpenFile(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	return s.store.Open(ctx, name)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
