package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storyFixture struct {
	repos   *testRepos
	service StoryService
	admin   *model.AdminUser
	person  *model.Person
}

func setupStoryServiceTest(t *testing.T) *storyFixture {
	repos := setupRepos(t)
	return &storyFixture{
		repos:   repos,
		service: NewStoryService(repos.db, repos.stories, repos.persons, repos.tags),
		admin:   repos.admin(t, "admin1"),
		person:  repos.person(t, "Lima"),
	}
}

func (f *storyFixture) create(t *testing.T, translations []TranslationInput, tagIDs ...uint) *StoryResult {
	result, err := f.service.CreateStory(context.Background(), CreateStoryInput{
		PersonID:     f.person.ID,
		AdminID:      f.admin.ID,
		Translations: translations,
		TagIDs:       tagIDs,
	})
	require.NoError(t, err)
	return result
}

func TestStoryService_CreateStory(t *testing.T) {
	f := setupStoryServiceTest(t)
	music := f.repos.tag(t, "music")

	input := []TranslationInput{
		{LanguageCode: "es", Content: "Había una vez"},
		{LanguageCode: " en ", Content: "Once upon a time"},
		{LanguageCode: "qu", Content: "Huk kutipi"},
	}
	result := f.create(t, input, music.ID)

	story := result.Story
	require.Len(t, story.Translations, 3)
	for i, tr := range story.Translations {
		assert.Equal(t, input[i].Content, tr.Content)
	}
	assert.Equal(t, "en", story.Translations[1].LanguageCode)
	assert.Equal(t, []uint{music.ID}, story.TagIDs())
	assert.Empty(t, result.SkippedTagIDs)
	require.NotNil(t, story.Person)
	assert.Equal(t, "Lima", story.Person.Origin)
}

func TestStoryService_CreateStory_ValidationRollsBack(t *testing.T) {
	f := setupStoryServiceTest(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		translations []TranslationInput
	}{
		{"no translations", nil},
		{"duplicate language", []TranslationInput{{"es", "a"}, {"es", "b"}}},
		{"blank language", []TranslationInput{{"  ", "a"}}},
		{"language too long", []TranslationInput{{"es-PE-x", "a"}}},
		{"blank content", []TranslationInput{{"es", "   "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateStory(ctx, CreateStoryInput{
				PersonID:     f.person.ID,
				AdminID:      f.admin.ID,
				Translations: tt.translations,
			})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, f.repos.count(t, "stories"))
			assert.Zero(t, f.repos.count(t, "story_translations"))
		})
	}
}

func TestStoryService_CreateStory_NotFound(t *testing.T) {
	f := setupStoryServiceTest(t)
	ctx := context.Background()
	translations := []TranslationInput{{"es", "hola"}}

	_, err := f.service.CreateStory(ctx, CreateStoryInput{PersonID: 999, AdminID: f.admin.ID, Translations: translations})
	assert.ErrorIs(t, err, ErrPersonNotFound)

	_, err = f.service.CreateStory(ctx, CreateStoryInput{
		PersonID:       f.person.ID,
		AdminID:        f.admin.ID,
		PrincipalTagID: uintPtr(999),
		Translations:   translations,
	})
	assert.ErrorIs(t, err, ErrTagNotFound)
	assert.Zero(t, f.repos.count(t, "stories"))
}

func TestStoryService_CreateStory_SkipsUnknownTags(t *testing.T) {
	f := setupStoryServiceTest(t)
	a := f.repos.tag(t, "a")
	b := f.repos.tag(t, "b")

	result := f.create(t, []TranslationInput{{"es", "hola"}}, b.ID, 404, a.ID, b.ID, 405)

	assert.ElementsMatch(t, []uint{a.ID, b.ID}, result.Story.TagIDs())
	assert.Equal(t, []uint{404, 405}, result.SkippedTagIDs)
}

func TestStoryService_UpdateStory_ReplacesTranslations(t *testing.T) {
	f := setupStoryServiceTest(t)
	ctx := context.Background()
	created := f.create(t, []TranslationInput{{"es", "hola"}, {"en", "hello"}})

	replacement := []TranslationInput{{"es", "buenas"}, {"fr", "bonjour"}}
	result, err := f.service.UpdateStory(ctx, created.Story.ID, UpdateStoryInput{Translations: &replacement})
	require.NoError(t, err)

	_, ok := result.Story.TranslatedContent("en")
	assert.False(t, ok)
	content, ok := result.Story.TranslatedContent("es")
	assert.True(t, ok)
	assert.Equal(t, "buenas", content)
	assert.Len(t, result.Story.Translations, 2)
}

func TestStoryService_UpdateStory_RejectsEmptyTranslations(t *testing.T) {
	f := setupStoryServiceTest(t)
	created := f.create(t, []TranslationInput{{"es", "hola"}})

	empty := []TranslationInput{}
	_, err := f.service.UpdateStory(context.Background(), created.Story.ID, UpdateStoryInput{Translations: &empty})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, int64(1), f.repos.count(t, "story_translations"))
}

func TestStoryService_CreateStory_LanguageCodesCaseFolded(t *testing.T) {
	f := setupStoryServiceTest(t)
	ctx := context.Background()

	// "es" and "ES" name the same language
	_, err := f.service.CreateStory(ctx, CreateStoryInput{
		PersonID:     f.person.ID,
		AdminID:      f.admin.ID,
		Translations: []TranslationInput{{"es", "hola"}, {"ES", "otra"}},
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, f.repos.count(t, "story_translations"))

	result := f.create(t, []TranslationInput{{" QU ", "Huk kutipi"}})
	require.Len(t, result.Story.Translations, 1)
	assert.Equal(t, "qu", result.Story.Translations[0].LanguageCode)
}

func TestStoryService_UpdateStory_DuplicateLanguageKeepsOldState(t *testing.T) {
	f := setupStoryServiceTest(t)
	ctx := context.Background()
	created := f.create(t, []TranslationInput{{"es", "hola"}})

	dup := []TranslationInput{{"en", "a"}, {"en", "b"}}
	_, err := f.service.UpdateStory(ctx, created.Story.ID, UpdateStoryInput{Translations: &dup})
	assert.ErrorIs(t, err, ErrValidation)

	story, err := f.service.GetStory(ctx, created.Story.ID)
	require.NoError(t, err)
	content, ok := story.TranslatedContent("es")
	assert.True(t, ok)
	assert.Equal(t, "hola", content)
}

func TestStoryService_UpdateStory_PartialFields(t *testing.T) {
	f := setupStoryServiceTest(t)
	ctx := context.Background()
	tag := f.repos.tag(t, "music")
	other := f.repos.person(t, "Cusco")

	created, err := f.service.CreateStory(ctx, CreateStoryInput{
		PersonID:       f.person.ID,
		AdminID:        f.admin.ID,
		PrincipalTagID: &tag.ID,
		Translations:   []TranslationInput{{"es", "hola"}},
		TagIDs:         []uint{tag.ID},
	})
	require.NoError(t, err)

	t.Run("absent fields untouched", func(t *testing.T) {
		result, err := f.service.UpdateStory(ctx, created.Story.ID, UpdateStoryInput{PersonID: &other.ID})
		require.NoError(t, err)
		assert.Equal(t, other.ID, result.Story.PersonID)
		require.NotNil(t, result.Story.PrincipalTagID)
		assert.Equal(t, tag.ID, *result.Story.PrincipalTagID)
		assert.Equal(t, []uint{tag.ID}, result.Story.TagIDs())
		assert.Len(t, result.Story.Translations, 1)
		assert.False(t, result.Story.UpdatedAt.Before(created.Story.UpdatedAt))
	})

	t.Run("null principal tag clears it", func(t *testing.T) {
		var input UpdateStoryInput
		require.NoError(t, json.Unmarshal([]byte(`null`), &input.PrincipalTagID))
		result, err := f.service.UpdateStory(ctx, created.Story.ID, input)
		require.NoError(t, err)
		assert.Nil(t, result.Story.PrincipalTagID)
	})

	t.Run("empty tag list clears tags", func(t *testing.T) {
		empty := []uint{}
		result, err := f.service.UpdateStory(ctx, created.Story.ID, UpdateStoryInput{TagIDs: &empty})
		require.NoError(t, err)
		assert.Empty(t, result.Story.Tags)
	})

	t.Run("unknown person", func(t *testing.T) {
		_, err := f.service.UpdateStory(ctx, created.Story.ID, UpdateStoryInput{PersonID: uintPtr(999)})
		assert.ErrorIs(t, err, ErrPersonNotFound)
	})

	t.Run("unknown principal tag", func(t *testing.T) {
		input := UpdateStoryInput{PrincipalTagID: OptionalID{Set: true, Value: uintPtr(999)}}
		_, err := f.service.UpdateStory(ctx, created.Story.ID, input)
		assert.ErrorIs(t, err, ErrTagNotFound)
	})

	t.Run("unknown story", func(t *testing.T) {
		_, err := f.service.UpdateStory(ctx, 999, UpdateStoryInput{})
		assert.ErrorIs(t, err, ErrStoryNotFound)
	})
}

func TestStoryService_DeleteStory(t *testing.T) {
	f := setupStoryServiceTest(t)
	ctx := context.Background()
	tag := f.repos.tag(t, "music")
	created := f.create(t, []TranslationInput{{"es", "hola"}, {"en", "hi"}}, tag.ID)

	require.NoError(t, f.service.DeleteStory(ctx, created.Story.ID))

	assert.Zero(t, f.repos.count(t, "story_translations"))
	assert.Zero(t, f.repos.count(t, "story_tags"))
	assert.Equal(t, int64(1), f.repos.count(t, "tags"))
	assert.Equal(t, int64(1), f.repos.count(t, "persons"))

	assert.ErrorIs(t, f.service.DeleteStory(ctx, created.Story.ID), ErrStoryNotFound)
	_, err := f.service.GetStory(ctx, created.Story.ID)
	assert.ErrorIs(t, err, ErrStoryNotFound)
}

func TestOptionalID_UnmarshalJSON(t *testing.T) {
	var body struct {
		PrincipalTagID OptionalID `json:"principal_tag_id"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))
	assert.False(t, body.PrincipalTagID.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"principal_tag_id":null}`), &body))
	assert.True(t, body.PrincipalTagID.Set)
	assert.Nil(t, body.PrincipalTagID.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"principal_tag_id":7}`), &body))
	require.NotNil(t, body.PrincipalTagID.Value)
	assert.Equal(t, uint(7), *body.PrincipalTagID.Value)

	assert.Error(t, json.Unmarshal([]byte(`{"principal_tag_id":"x"}`), &body))
}
