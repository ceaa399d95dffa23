package repository

import (
	"context"
	"errors"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"gorm.io/gorm"
)

type PersonRepository interface {
	WithTx(tx *gorm.DB) PersonRepository
	Create(ctx context.Context, person *model.Person) error
	FindAll(ctx context.Context) ([]model.Person, error)
	FindByID(ctx context.Context, id uint) (*model.Person, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Update(ctx context.Context, person *model.Person) error
	Delete(ctx context.Context, id uint) error
}

type personRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &personRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *personRepository) WithTx(tx *gorm.DB) PersonRepository {
	return &personRepository{db: tx}
}

func (r *personRepository) Create(ctx context.Context, person *model.Person) error {
	logger.Debug("Creating person in database", map[string]interface{}{
		"origin": person.Origin,
	})

	if err := r.db.WithContext(ctx).Create(person).Error; err != nil {
		logger.Error("Failed to create person in database", err, map[string]interface{}{
			"origin": person.Origin,
		})
		return err
	}

	logger.Debug("Person created in database", map[string]interface{}{
		"person_id": person.ID,
	})
	return nil
}

func (r *personRepository) FindAll(ctx context.Context) ([]model.Person, error) {
	var persons []model.Person
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&persons).Error; err != nil {
		logger.Error("Failed to list persons", err)
		return nil, err
	}

	logger.Debug("Persons listed", map[string]interface{}{
		"count": len(persons),
	})
	return persons, nil
}

func (r *personRepository) FindByID(ctx context.Context, id uint) (*model.Person, error) {
	var person model.Person
	if err := r.db.WithContext(ctx).First(&person, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find person by ID", err, map[string]interface{}{
				"person_id": id,
			})
		}
		return nil, err
	}
	return &person, nil
}

func (r *personRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Person{}).Where("id = ?", id).Count(&count).Error; err != nil {
		logger.Error("Failed to check person existence", err, map[string]interface{}{
			"person_id": id,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *personRepository) Update(ctx context.Context, person *model.Person) error {
	if err := r.db.WithContext(ctx).Save(person).Error; err != nil {
		logger.Error("Failed to update person in database", err, map[string]interface{}{
			"person_id": person.ID,
		})
		return err
	}

	logger.Debug("Person updated in database", map[string]interface{}{
		"person_id": person.ID,
	})
	return nil
}

// Delete removes the person together with its stories, their translations and
// tag links, and its image rows. Call it inside a transaction.
func (r *personRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	storyIDs := func() *gorm.DB {
		return db.Model(&model.Story{}).Select("id").Where("person_id = ?", id)
	}

	if err := db.Exec("DELETE FROM story_tags WHERE story_id IN (?)", storyIDs()).Error; err != nil {
		logger.Error("Failed to remove tag links of person stories", err, map[string]interface{}{
			"person_id": id,
		})
		return err
	}
	if err := db.Where("story_id IN (?)", storyIDs()).Delete(&model.StoryTranslation{}).Error; err != nil {
		logger.Error("Failed to remove translations of person stories", err, map[string]interface{}{
			"person_id": id,
		})
		return err
	}
	if err := db.Where("person_id = ?", id).Delete(&model.Story{}).Error; err != nil {
		logger.Error("Failed to remove person stories", err, map[string]interface{}{
			"person_id": id,
		})
		return err
	}
	if err := db.Where("person_id = ?", id).Delete(&model.Image{}).Error; err != nil {
		logger.Error("Failed to remove person images", err, map[string]interface{}{
			"person_id": id,
		})
		return err
	}

	result := db.Delete(&model.Person{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete person from database", result.Error, map[string]interface{}{
			"person_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Person deleted from database", map[string]interface{}{
		"person_id": id,
	})
	return nil
}
