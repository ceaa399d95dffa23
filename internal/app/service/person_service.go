package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/internal/app/repository"
	"github.com/back-pedagogico/stories-backend/internal/storage"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"gorm.io/gorm"
)

const birthDateLayout = "2006-01-02"

// PersonInput carries person fields. On update a nil field is left untouched
// and an empty optional field is cleared.
type PersonInput struct {
	Origin     *string `json:"origin"`
	Name       *string `json:"name"`
	Profession *string `json:"profession"`
	BirthDate  *string `json:"birth_date"`
}

type PersonService interface {
	CreatePerson(ctx context.Context, input PersonInput) (*model.Person, error)
	ListPersons(ctx context.Context) ([]model.Person, error)
	GetPerson(ctx context.Context, id uint) (*model.Person, error)
	UpdatePerson(ctx context.Context, id uint, input PersonInput) (*model.Person, error)
	DeletePerson(ctx context.Context, id uint) error
}

type personService struct {
	db         *gorm.DB
	personRepo repository.PersonRepository
	imageRepo  repository.ImageRepository
	store      storage.FileStore
}

func NewPersonService(
	db *gorm.DB,
	personRepo repository.PersonRepository,
	imageRepo repository.ImageRepository,
	store storage.FileStore,
) PersonService {
	return &personService{
		db:         db,
		personRepo: personRepo,
		imageRepo:  imageRepo,
		store:      store,
	}
}

func (s *personService) CreatePerson(ctx context.Context, input PersonInput) (*model.Person, error) {
	if input.Origin == nil {
		return nil, validationError("origin", "is required")
	}
	person := &model.Person{}
	if err := applyPersonInput(person, input); err != nil {
		return nil, err
	}

	if err := s.personRepo.Create(ctx, person); err != nil {
		return nil, err
	}

	logger.Info("Person created", map[string]interface{}{
		"person_id": person.ID,
	})
	return person, nil
}

func (s *personService) ListPersons(ctx context.Context) ([]model.Person, error) {
	return s.personRepo.FindAll(ctx)
}

func (s *personService) GetPerson(ctx context.Context, id uint) (*model.Person, error) {
	person, err := s.personRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return person, nil
}

func (s *personService) UpdatePerson(ctx context.Context, id uint, input PersonInput) (*model.Person, error) {
	person, err := s.GetPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyPersonInput(person, input); err != nil {
		return nil, err
	}
	if err := s.personRepo.Update(ctx, person); err != nil {
		return nil, err
	}

	logger.Info("Person updated", map[string]interface{}{
		"person_id": id,
	})
	return person, nil
}

// DeletePerson removes the person with its stories and images. Stored image
// files are removed after the commit; failures there are only logged.
func (s *personService) DeletePerson(ctx context.Context, id uint) error {
	images, err := s.imageRepo.FindByPersonID(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.personRepo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPersonNotFound
		}
		return err
	}

	for i := range images {
		removeStoredFiles(ctx, s.store, images[i].StoredFiles())
	}

	logger.Info("Person deleted", map[string]interface{}{
		"person_id":      id,
		"removed_images": len(images),
	})
	return nil
}

func applyPersonInput(person *model.Person, input PersonInput) error {
	if input.Origin != nil {
		origin := strings.TrimSpace(*input.Origin)
		if origin == "" {
			return validationError("origin", "must not be empty")
		}
		if utf8.RuneCountInString(origin) > 30 {
			return validationError("origin", "must be at most 30 characters")
		}
		person.Origin = origin
	}
	if input.Name != nil {
		name, err := optionalText("name", *input.Name, 50)
		if err != nil {
			return err
		}
		person.Name = name
	}
	if input.Profession != nil {
		profession, err := optionalText("profession", *input.Profession, 45)
		if err != nil {
			return err
		}
		person.Profession = profession
	}
	if input.BirthDate != nil {
		raw := strings.TrimSpace(*input.BirthDate)
		if raw == "" {
			person.BirthDate = nil
		} else {
			d, err := time.Parse(birthDateLayout, raw)
			if err != nil {
				return validationError("birth_date", "must use the YYYY-MM-DD format")
			}
			person.BirthDate = &d
		}
	}
	return nil
}

func optionalText(field, value string, maxLen int) (*string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(value) > maxLen {
		return nil, validationError(field, "must be at most %d characters", maxLen)
	}
	return &value, nil
}

// removeStoredFiles deletes files best-effort.
func removeStoredFiles(ctx context.Context, store storage.FileStore, names []string) {
	for _, name := range names {
		if err := store.Delete(ctx, name); err != nil && !errors.Is(err, storage.ErrFileNotFound) {
			logger.Error("Failed to remove stored file", err, map[string]interface{}{
				"filename": name,
			})
		}
	}
}
