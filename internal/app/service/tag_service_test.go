package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService(t *testing.T) {
	repos := setupRepos(t)
	svc := NewTagService(repos.db, repos.tags)
	ctx := context.Background()

	music, err := svc.CreateTag(ctx, " music ")
	require.NoError(t, err)
	assert.Equal(t, "music", music.Name)

	_, err = svc.CreateTag(ctx, "music")
	assert.ErrorIs(t, err, ErrTagAlreadyExists)

	_, err = svc.CreateTag(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)

	dance, err := svc.CreateTag(ctx, "dance")
	require.NoError(t, err)

	_, err = svc.UpdateTag(ctx, dance.ID, "music")
	assert.ErrorIs(t, err, ErrTagAlreadyExists)

	renamed, err := svc.UpdateTag(ctx, dance.ID, "folk dance")
	require.NoError(t, err)
	assert.Equal(t, "folk dance", renamed.Name)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	require.NoError(t, svc.DeleteTag(ctx, music.ID))
	_, err = svc.GetTag(ctx, music.ID)
	assert.ErrorIs(t, err, ErrTagNotFound)
	assert.ErrorIs(t, svc.DeleteTag(ctx, music.ID), ErrTagNotFound)
}

func TestTagService_DeleteKeepsStories(t *testing.T) {
	f := setupStoryServiceTest(t)
	ctx := context.Background()
	svc := NewTagService(f.repos.db, f.repos.tags)
	tag := f.repos.tag(t, "music")

	created, err := f.service.CreateStory(ctx, CreateStoryInput{
		PersonID:       f.person.ID,
		AdminID:        f.admin.ID,
		PrincipalTagID: &tag.ID,
		Translations:   []TranslationInput{{"es", "hola"}},
		TagIDs:         []uint{tag.ID},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTag(ctx, tag.ID))

	story, err := f.service.GetStory(ctx, created.Story.ID)
	require.NoError(t, err)
	assert.Nil(t, story.PrincipalTagID)
	assert.Empty(t, story.Tags)
}
