package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/internal/app/repository"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"gorm.io/gorm"
)

type TranslationInput struct {
	LanguageCode string `json:"language_code"`
	Content      string `json:"content"`
}

// OptionalID tells an absent JSON field apart from an explicit null.
type OptionalID struct {
	Set   bool
	Value *uint
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v uint
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type CreateStoryInput struct {
	PersonID       uint
	AdminID        uint
	PrincipalTagID *uint
	Translations   []TranslationInput
	TagIDs         []uint
}

// UpdateStoryInput holds a partial update. Nil fields and an unset
// PrincipalTagID leave the stored values untouched.
type UpdateStoryInput struct {
	PersonID       *uint
	PrincipalTagID OptionalID
	Translations   *[]TranslationInput
	TagIDs         *[]uint
}

// StoryResult is a fully loaded story plus the tag ids that did not resolve.
type StoryResult struct {
	Story         *model.Story
	SkippedTagIDs []uint
}

type StoryService interface {
	CreateStory(ctx context.Context, input CreateStoryInput) (*StoryResult, error)
	UpdateStory(ctx context.Context, id uint, input UpdateStoryInput) (*StoryResult, error)
	DeleteStory(ctx context.Context, id uint) error
	GetStory(ctx context.Context, id uint) (*model.Story, error)
	ListStories(ctx context.Context) ([]model.Story, error)
}

type storyService struct {
	db         *gorm.DB
	storyRepo  repository.StoryRepository
	personRepo repository.PersonRepository
	tagRepo    repository.TagRepository
}

func NewStoryService(
	db *gorm.DB,
	storyRepo repository.StoryRepository,
	personRepo repository.PersonRepository,
	tagRepo repository.TagRepository,
) StoryService {
	return &storyService{
		db:         db,
		storyRepo:  storyRepo,
		personRepo: personRepo,
		tagRepo:    tagRepo,
	}
}

func (s *storyService) CreateStory(ctx context.Context, input CreateStoryInput) (*StoryResult, error) {
	logger.Info("Creating story", map[string]interface{}{
		"person_id":    input.PersonID,
		"admin_id":     input.AdminID,
		"translations": len(input.Translations),
		"tag_ids":      input.TagIDs,
	})

	translations, err := buildTranslations(input.Translations)
	if err != nil {
		return nil, err
	}

	var (
		storyID uint
		skipped []uint
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stories := s.storyRepo.WithTx(tx)
		tags := s.tagRepo.WithTx(tx)

		if err := requirePerson(ctx, s.personRepo.WithTx(tx), input.PersonID); err != nil {
			return err
		}
		if input.PrincipalTagID != nil {
			if err := requireTag(ctx, tags, *input.PrincipalTagID); err != nil {
				return err
			}
		}

		story := &model.Story{
			PersonID:       input.PersonID,
			AdminID:        input.AdminID,
			PrincipalTagID: input.PrincipalTagID,
		}
		if err := stories.Create(ctx, story); err != nil {
			return err
		}
		if err := stories.CreateTranslations(ctx, story.ID, translations); err != nil {
			return err
		}

		resolved, unresolved, err := resolveTags(ctx, tags, input.TagIDs)
		if err != nil {
			return err
		}
		if err := stories.ReplaceTags(ctx, story.ID, resolved); err != nil {
			return err
		}

		storyID = story.ID
		skipped = unresolved
		return nil
	})
	if err != nil {
		logger.Warn("Story creation rolled back", map[string]interface{}{
			"person_id": input.PersonID,
			"error":     err.Error(),
		})
		return nil, err
	}

	story, err := s.storyRepo.FindByID(ctx, storyID)
	if err != nil {
		return nil, err
	}

	logger.Info("Story created successfully", map[string]interface{}{
		"story_id":        story.ID,
		"skipped_tag_ids": skipped,
	})
	return &StoryResult{Story: story, SkippedTagIDs: skipped}, nil
}

func (s *storyService) UpdateStory(ctx context.Context, id uint, input UpdateStoryInput) (*StoryResult, error) {
	logger.Info("Updating story", map[string]interface{}{
		"story_id": id,
	})

	var translations []model.StoryTranslation
	if input.Translations != nil {
		built, err := buildTranslations(*input.Translations)
		if err != nil {
			return nil, err
		}
		translations = built
	}

	skipped := []uint{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stories := s.storyRepo.WithTx(tx)
		tags := s.tagRepo.WithTx(tx)

		story, err := stories.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStoryNotFound
			}
			return err
		}

		if input.PersonID != nil {
			if err := requirePerson(ctx, s.personRepo.WithTx(tx), *input.PersonID); err != nil {
				return err
			}
			story.PersonID = *input.PersonID
		}
		if input.PrincipalTagID.Set {
			if input.PrincipalTagID.Value != nil {
				if err := requireTag(ctx, tags, *input.PrincipalTagID.Value); err != nil {
					return err
				}
			}
			story.PrincipalTagID = input.PrincipalTagID.Value
		}

		story.Person = nil
		story.PrincipalTag = nil
		if err := stories.Update(ctx, story); err != nil {
			return err
		}

		if input.Translations != nil {
			if err := stories.ReplaceTranslations(ctx, id, translations); err != nil {
				return err
			}
		}
		if input.TagIDs != nil {
			resolved, unresolved, err := resolveTags(ctx, tags, *input.TagIDs)
			if err != nil {
				return err
			}
			if err := stories.ReplaceTags(ctx, id, resolved); err != nil {
				return err
			}
			skipped = unresolved
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	story, err := s.storyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.Info("Story updated successfully", map[string]interface{}{
		"story_id":        id,
		"skipped_tag_ids": skipped,
	})
	return &StoryResult{Story: story, SkippedTagIDs: skipped}, nil
}

func (s *storyService) DeleteStory(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.storyRepo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoryNotFound
		}
		return err
	}

	logger.Info("Story deleted", map[string]interface{}{
		"story_id": id,
	})
	return nil
}

func (s *storyService) GetStory(ctx context.Context, id uint) (*model.Story, error) {
	story, err := s.storyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return story, nil
}

func (s *storyService) ListStories(ctx context.Context) ([]model.Story, error) {
	return s.storyRepo.FindAll(ctx)
}

// buildTranslations validates the whole list before anything is written.
// Language codes are normalized, so "ES" and "es" count as the same language.
// Content is stored as given.
func buildTranslations(inputs []TranslationInput) ([]model.StoryTranslation, error) {
	if len(inputs) == 0 {
		return nil, validationError("translations", "at least one translation is required")
	}

	seen := make(map[string]struct{}, len(inputs))
	translations := make([]model.StoryTranslation, 0, len(inputs))
	for i, in := range inputs {
		code := model.NormalizeLanguageCode(in.LanguageCode)
		field := "translations[" + strconv.Itoa(i) + "]"
		switch {
		case code == "":
			return nil, validationError(field+".language_code", "must not be empty")
		case utf8.RuneCountInString(code) > model.MaxLanguageCodeLength:
			return nil, validationError(field+".language_code", "must be at most %d characters", model.MaxLanguageCodeLength)
		case strings.TrimSpace(in.Content) == "":
			return nil, validationError(field+".content", "must not be empty")
		}
		if _, dup := seen[code]; dup {
			return nil, validationError(field+".language_code", "duplicate language code %q", code)
		}
		seen[code] = struct{}{}

		translations = append(translations, model.StoryTranslation{
			LanguageCode: code,
			Content:      in.Content,
		})
	}
	return translations, nil
}

// resolveTags splits ids into existing tags and unknown ids, keeping input order
// and dropping repeats. Unknown ids are logged and skipped.
func resolveTags(ctx context.Context, tags repository.TagRepository, ids []uint) ([]uint, []uint, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := tags.FindByIDs(ctx, unique)
	if err != nil {
		return nil, nil, err
	}
	exists := make(map[uint]struct{}, len(found))
	for _, t := range found {
		exists[t.ID] = struct{}{}
	}

	resolved := make([]uint, 0, len(unique))
	skipped := []uint{}
	for _, id := range unique {
		if _, ok := exists[id]; ok {
			resolved = append(resolved, id)
		} else {
			skipped = append(skipped, id)
		}
	}
	if len(skipped) > 0 {
		logger.Warn("Skipping unknown tag ids", map[string]interface{}{
			"tag_ids": skipped,
		})
	}
	return resolved, skipped, nil
}

func requirePerson(ctx context.Context, persons repository.PersonRepository, id uint) error {
	exists, err := persons.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		logger.Warn("Referenced person does not exist", map[string]interface{}{
			"person_id": id,
		})
		return ErrPersonNotFound
	}
	return nil
}

func requireTag(ctx context.Context, tags repository.TagRepository, id uint) error {
	if _, err := tags.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Referenced tag does not exist", map[string]interface{}{
				"tag_id": id,
			})
			return ErrTagNotFound
		}
		return err
	}
	return nil
}
