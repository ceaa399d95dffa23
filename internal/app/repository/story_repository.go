package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PublicStoryFilter narrows the public listing. Empty strings disable a filter;
// active filters are case-insensitive substring matches combined with AND.
type PublicStoryFilter struct {
	Origin     string
	Profession string
	TagName    string
	Limit      int
	Offset     int
}

type StoryRepository interface {
	WithTx(tx *gorm.DB) StoryRepository
	Create(ctx context.Context, story *model.Story) error
	FindByID(ctx context.Context, id uint) (*model.Story, error)
	FindAll(ctx context.Context) ([]model.Story, error)
	FindPublic(ctx context.Context, filter PublicStoryFilter) ([]model.Story, int64, error)
	Update(ctx context.Context, story *model.Story) error
	CreateTranslations(ctx context.Context, storyID uint, translations []model.StoryTranslation) error
	ReplaceTranslations(ctx context.Context, storyID uint, translations []model.StoryTranslation) error
	ReplaceTags(ctx context.Context, storyID uint, tagIDs []uint) error
	Delete(ctx context.Context, id uint) error
}

type storyRepository struct {
	db *gorm.DB
}

func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) WithTx(tx *gorm.DB) StoryRepository {
	return &storyRepository{db: tx}
}

func withStoryRelations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Person").
		Preload("PrincipalTag").
		Preload("Translations", func(db *gorm.DB) *gorm.DB {
			return db.Order("story_translations.id ASC")
		}).
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.id ASC")
		})
}

// Create inserts the story row only; translations and tags are written separately.
func (r *storyRepository) Create(ctx context.Context, story *model.Story) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(story).Error; err != nil {
		logger.Error("Failed to create story in database", err, map[string]interface{}{
			"person_id": story.PersonID,
		})
		return err
	}

	logger.Debug("Story created in database", map[string]interface{}{
		"story_id":  story.ID,
		"person_id": story.PersonID,
	})
	return nil
}

func (r *storyRepository) FindByID(ctx context.Context, id uint) (*model.Story, error) {
	var story model.Story
	if err := withStoryRelations(r.db.WithContext(ctx)).First(&story, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find story by ID", err, map[string]interface{}{
				"story_id": id,
			})
		}
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) FindAll(ctx context.Context) ([]model.Story, error) {
	stories := []model.Story{}
	if err := withStoryRelations(r.db.WithContext(ctx)).
		Order("stories.created_at DESC, stories.id DESC").
		Find(&stories).Error; err != nil {
		logger.Error("Failed to list stories", err)
		return nil, err
	}
	return stories, nil
}

func (r *storyRepository) publicQuery(ctx context.Context, filter PublicStoryFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Story{})

	if filter.Origin != "" || filter.Profession != "" {
		q = q.Joins("JOIN persons ON persons.id = stories.person_id")
		if filter.Origin != "" {
			q = q.Where(`LOWER(persons.origin) LIKE LOWER(?) ESCAPE '\'`, containsPattern(filter.Origin))
		}
		if filter.Profession != "" {
			q = q.Where(`LOWER(persons.profession) LIKE LOWER(?) ESCAPE '\'`, containsPattern(filter.Profession))
		}
	}

	if filter.TagName != "" {
		tagged := r.db.WithContext(ctx).
			Table("story_tags").
			Select("story_tags.story_id").
			Joins("JOIN tags ON tags.id = story_tags.tag_id").
			Where(`LOWER(tags.name) LIKE LOWER(?) ESCAPE '\'`, containsPattern(filter.TagName))
		q = q.Where("stories.id IN (?)", tagged)
	}
	return q
}

// FindPublic returns one page of stories matching filter, newest first, and the
// total number of matches.
func (r *storyRepository) FindPublic(ctx context.Context, filter PublicStoryFilter) ([]model.Story, int64, error) {
	logger.Debug("Finding public stories", map[string]interface{}{
		"origin":     filter.Origin,
		"profession": filter.Profession,
		"tag":        filter.TagName,
		"limit":      filter.Limit,
		"offset":     filter.Offset,
	})

	var total int64
	if err := r.publicQuery(ctx, filter).Count(&total).Error; err != nil {
		logger.Error("Failed to count public stories", err)
		return nil, 0, err
	}

	stories := []model.Story{}
	if total == 0 || int64(filter.Offset) >= total {
		return stories, total, nil
	}

	q := withStoryRelations(r.publicQuery(ctx, filter)).
		Select("stories.*").
		Order("stories.created_at DESC, stories.id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Find(&stories).Error; err != nil {
		logger.Error("Failed to find public stories", err)
		return nil, 0, err
	}
	return stories, total, nil
}

// Update saves the story's own columns and bumps updated_at.
func (r *storyRepository) Update(ctx context.Context, story *model.Story) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(story).Error; err != nil {
		logger.Error("Failed to update story in database", err, map[string]interface{}{
			"story_id": story.ID,
		})
		return err
	}
	return nil
}

// CreateTranslations inserts translations in the given order.
func (r *storyRepository) CreateTranslations(ctx context.Context, storyID uint, translations []model.StoryTranslation) error {
	if len(translations) == 0 {
		return nil
	}
	for i := range translations {
		translations[i].StoryID = storyID
	}
	if err := r.db.WithContext(ctx).Create(&translations).Error; err != nil {
		logger.Error("Failed to create story translations", err, map[string]interface{}{
			"story_id": storyID,
			"count":    len(translations),
		})
		return err
	}
	return nil
}

func (r *storyRepository) ReplaceTranslations(ctx context.Context, storyID uint, translations []model.StoryTranslation) error {
	if err := r.db.WithContext(ctx).
		Where("story_id = ?", storyID).
		Delete(&model.StoryTranslation{}).Error; err != nil {
		logger.Error("Failed to delete story translations", err, map[string]interface{}{
			"story_id": storyID,
		})
		return err
	}
	return r.CreateTranslations(ctx, storyID, translations)
}

// ReplaceTags rewrites the story's tag links. tagIDs must already be resolved.
func (r *storyRepository) ReplaceTags(ctx context.Context, storyID uint, tagIDs []uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec("DELETE FROM story_tags WHERE story_id = ?", storyID).Error; err != nil {
		logger.Error("Failed to clear story tags", err, map[string]interface{}{
			"story_id": storyID,
		})
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}

	rows := make([]map[string]interface{}, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		rows = append(rows, map[string]interface{}{
			"story_id": storyID,
			"tag_id":   tagID,
		})
	}
	if err := db.Table("story_tags").Create(&rows).Error; err != nil {
		logger.Error("Failed to attach story tags", err, map[string]interface{}{
			"story_id": storyID,
			"tag_ids":  tagIDs,
		})
		return err
	}
	return nil
}

// Delete removes the story, its translations and its tag links. Tags and the
// person are left alone.
func (r *storyRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)

	if err := db.Exec("DELETE FROM story_tags WHERE story_id = ?", id).Error; err != nil {
		logger.Error("Failed to clear story tags", err, map[string]interface{}{
			"story_id": id,
		})
		return err
	}
	if err := db.Where("story_id = ?", id).Delete(&model.StoryTranslation{}).Error; err != nil {
		logger.Error("Failed to delete story translations", err, map[string]interface{}{
			"story_id": id,
		})
		return err
	}

	result := db.Delete(&model.Story{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete story from database", result.Error, map[string]interface{}{
			"story_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Story deleted from database", map[string]interface{}{
		"story_id": id,
	})
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern wraps term for a substring LIKE and escapes its wildcards for ESCAPE '\'.
// Callers apply LOWER to both sides in SQL.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
