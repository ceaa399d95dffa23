package service

import (
	"testing"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/internal/app/repository"
	"github.com/back-pedagogico/stories-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testRepos struct {
	db      *gorm.DB
	admins  repository.AdminUserRepository
	persons repository.PersonRepository
	tags    repository.TagRepository
	stories repository.StoryRepository
	images  repository.ImageRepository
}

func setupRepos(t *testing.T) *testRepos {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return &testRepos{
		db:      testDB,
		admins:  repository.NewAdminUserRepository(testDB),
		persons: repository.NewPersonRepository(testDB),
		tags:    repository.NewTagRepository(testDB),
		stories: repository.NewStoryRepository(testDB),
		images:  repository.NewImageRepository(testDB),
	}
}

func strPtr(s string) *string { return &s }
func uintPtr(v uint) *uint    { return &v }

func (r *testRepos) admin(t *testing.T, name string) *model.AdminUser {
	admin := &model.AdminUser{Name: name, PasswordHash: "hash"}
	require.NoError(t, r.db.Create(admin).Error)
	return admin
}

func (r *testRepos) person(t *testing.T, origin string) *model.Person {
	person := &model.Person{Origin: origin}
	require.NoError(t, r.db.Create(person).Error)
	return person
}

func (r *testRepos) tag(t *testing.T, name string) *model.Tag {
	tag := &model.Tag{Name: name}
	require.NoError(t, r.db.Create(tag).Error)
	return tag
}

func (r *testRepos) count(t *testing.T, table string) int64 {
	var n int64
	require.NoError(t, r.db.Table(table).Count(&n).Error)
	return n
}
