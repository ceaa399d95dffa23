package repository

import (
	"context"
	"testing"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func strPtr(s string) *string { return &s }

func seedAdmin(t *testing.T, conn *gorm.DB, name string) *model.AdminUser {
	admin := &model.AdminUser{Name: name, PasswordHash: "hash"}
	require.NoError(t, conn.Create(admin).Error)
	return admin
}

func seedPerson(t *testing.T, conn *gorm.DB, origin, name, profession string) *model.Person {
	person := &model.Person{Origin: origin}
	if name != "" {
		person.Name = strPtr(name)
	}
	if profession != "" {
		person.Profession = strPtr(profession)
	}
	require.NoError(t, conn.Create(person).Error)
	return person
}

func seedTag(t *testing.T, conn *gorm.DB, name string) *model.Tag {
	tag := &model.Tag{Name: name}
	require.NoError(t, conn.Create(tag).Error)
	return tag
}

// seedStory creates a story with one translation per language code and the given tags.
func seedStory(t *testing.T, conn *gorm.DB, personID, adminID uint, langs []string, tagIDs ...uint) *model.Story {
	ctx := context.Background()
	repo := NewStoryRepository(conn)

	story := &model.Story{PersonID: personID, AdminID: adminID}
	require.NoError(t, repo.Create(ctx, story))

	translations := make([]model.StoryTranslation, 0, len(langs))
	for _, lang := range langs {
		translations = append(translations, model.StoryTranslation{LanguageCode: lang, Content: "content " + lang})
	}
	require.NoError(t, repo.CreateTranslations(ctx, story.ID, translations))
	require.NoError(t, repo.ReplaceTags(ctx, story.ID, tagIDs))
	return story
}
