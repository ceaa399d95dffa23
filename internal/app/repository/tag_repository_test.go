package repository

import (
	"context"
	"testing"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTagRepository_CreateDuplicate(t *testing.T) {
	repo := NewTagRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Tag{Name: "music"}))
	err := repo.Create(ctx, &model.Tag{Name: "music"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestTagRepository_FindByIDs(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewTagRepository(conn)
	ctx := context.Background()

	a := seedTag(t, conn, "a")
	b := seedTag(t, conn, "b")

	tags, err := repo.FindByIDs(ctx, []uint{b.ID, 999, a.ID})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, a.ID, tags[0].ID)
	assert.Equal(t, b.ID, tags[1].ID)

	tags, err = repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestTagRepository_Delete_DetachesStories(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewTagRepository(conn)
	ctx := context.Background()

	admin := seedAdmin(t, conn, "admin1")
	person := seedPerson(t, conn, "Lima", "", "")
	tag := seedTag(t, conn, "music")
	other := seedTag(t, conn, "dance")
	story := seedStory(t, conn, person.ID, admin.ID, []string{"es"}, tag.ID, other.ID)
	require.NoError(t, conn.Model(story).UpdateColumn("principal_tag_id", tag.ID).Error)

	require.NoError(t, repo.Delete(ctx, tag.ID))

	loaded, err := NewStoryRepository(conn).FindByID(ctx, story.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.PrincipalTagID)
	assert.Equal(t, []uint{other.ID}, loaded.TagIDs())

	assert.ErrorIs(t, repo.Delete(ctx, tag.ID), gorm.ErrRecordNotFound)
}
