package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryController_Create(t *testing.T) {
	env := setupControllerTest(t)
	person := env.person(t, "Lima")
	music := env.tag(t, "music")

	w := env.doJSON(t, http.MethodPost, "/api/stories?lang=en", map[string]interface{}{
		"person_id":        person.ID,
		"principal_tag_id": music.ID,
		"translations": []map[string]string{
			{"language_code": "es", "content": "Hola"},
			{"language_code": "en", "content": "Hello"},
		},
		"tag_ids": []uint{music.ID, 999},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	story := body["story"].(map[string]interface{})
	assert.Equal(t, "Hello", story["content"])
	assert.Equal(t, "music", story["principal_tag_name"])
	assert.Len(t, story["translations"], 2)
	assert.Len(t, story["tags"], 1)
	assert.Equal(t, []interface{}{float64(999)}, body["skipped_tag_ids"])
	assert.Equal(t, float64(env.admin.ID), story["admin_id"])
}

func TestStoryController_Create_Rejected(t *testing.T) {
	env := setupControllerTest(t)
	person := env.person(t, "Lima")

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "unknown field",
			body:       fmt.Sprintf(`{"person_id":%d,"translations":[{"language_code":"es","content":"x"}],"titulo":"x"}`, person.ID),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing person",
			body:       `{"translations":[{"language_code":"es","content":"x"}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no translations",
			body:       fmt.Sprintf(`{"person_id":%d,"translations":[]}`, person.ID),
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate language",
			body: fmt.Sprintf(`{"person_id":%d,"translations":[`+
				`{"language_code":"es","content":"a"},{"language_code":"es","content":"b"}]}`, person.ID),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "person not found",
			body:       `{"person_id":999,"translations":[{"language_code":"es","content":"x"}]}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "principal tag not found",
			body:       fmt.Sprintf(`{"person_id":%d,"principal_tag_id":999,"translations":[{"language_code":"es","content":"x"}]}`, person.ID),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.doJSON(t, http.MethodPost, "/api/stories", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Contains(t, decodeBody(t, w), "error")
		})
	}

	assert.Zero(t, env.count(t, "stories"))
	assert.Zero(t, env.count(t, "story_translations"))
}

func TestStoryController_Create_RequiresToken(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(http.MethodPost, "/api/stories", nil, "application/json", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStoryController_UpdateAndDelete(t *testing.T) {
	env := setupControllerTest(t)
	person := env.person(t, "Lima")
	music := env.tag(t, "music")

	w := env.doJSON(t, http.MethodPost, "/api/stories", map[string]interface{}{
		"person_id":        person.ID,
		"principal_tag_id": music.ID,
		"translations":     []map[string]string{{"language_code": "es", "content": "Hola"}},
		"tag_ids":          []uint{music.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(decodeBody(t, w)["story"].(map[string]interface{})["id"].(float64))
	path := fmt.Sprintf("/api/stories/%d", id)

	w = env.doJSON(t, http.MethodPut, path, `{"principal_tag_id":null,"translations":[{"language_code":"qu","content":"Napaykullayki"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	story := decodeBody(t, w)["story"].(map[string]interface{})
	assert.Nil(t, story["principal_tag_id"])
	assert.Nil(t, story["content"], "the es translation was replaced")
	assert.Len(t, story["tags"], 1, "tags untouched when absent")

	w = env.doJSON(t, http.MethodPut, path, `{"translations":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doJSON(t, http.MethodGet, path+"?lang=qu", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Napaykullayki", decodeBody(t, w)["story"].(map[string]interface{})["content"])

	w = env.doJSON(t, http.MethodGet, "/api/stories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])

	w = env.doJSON(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, env.count(t, "story_translations"))
	assert.Zero(t, env.count(t, "story_tags"))
	assert.Equal(t, int64(1), env.count(t, "tags"))
	assert.Equal(t, int64(1), env.count(t, "persons"))

	w = env.doJSON(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.doJSON(t, http.MethodGet, "/api/stories/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
