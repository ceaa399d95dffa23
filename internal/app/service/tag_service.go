package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/internal/app/repository"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"gorm.io/gorm"
)

const maxTagNameLength = 100

type TagService interface {
	CreateTag(ctx context.Context, name string) (*model.Tag, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTag(ctx context.Context, id uint) (*model.Tag, error)
	UpdateTag(ctx context.Context, id uint, name string) (*model.Tag, error)
	DeleteTag(ctx context.Context, id uint) error
}

type tagService struct {
	db      *gorm.DB
	tagRepo repository.TagRepository
}

func NewTagService(db *gorm.DB, tagRepo repository.TagRepository) TagService {
	return &tagService{db: db, tagRepo: tagRepo}
}

func (s *tagService) CreateTag(ctx context.Context, name string) (*model.Tag, error) {
	name, err := validTagName(name)
	if err != nil {
		return nil, err
	}

	tag := &model.Tag{Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagAlreadyExists
		}
		return nil, err
	}

	logger.Info("Tag created", map[string]interface{}{
		"tag_id": tag.ID,
		"name":   tag.Name,
	})
	return tag, nil
}

func (s *tagService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.tagRepo.FindAll(ctx)
}

func (s *tagService) GetTag(ctx context.Context, id uint) (*model.Tag, error) {
	tag, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return tag, nil
}

func (s *tagService) UpdateTag(ctx context.Context, id uint, name string) (*model.Tag, error) {
	name, err := validTagName(name)
	if err != nil {
		return nil, err
	}

	tag, err := s.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	tag.Name = name
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagAlreadyExists
		}
		return nil, err
	}
	return tag, nil
}

// DeleteTag clears the tag from every story, then removes it.
func (s *tagService) DeleteTag(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.tagRepo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return err
	}

	logger.Info("Tag deleted", map[string]interface{}{
		"tag_id": id,
	})
	return nil
}

func validTagName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationError("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxTagNameLength {
		return "", validationError("name", "must be at most %d characters", maxTagNameLength)
	}
	return name, nil
}
