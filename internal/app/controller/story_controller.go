package controller

import (
	"net/http"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/internal/app/service"
	apperrors "github.com/back-pedagogico/stories-backend/internal/errors"
	"github.com/back-pedagogico/stories-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type StoryController struct {
	storyService    service.StoryService
	defaultLanguage string
}

func NewStoryController(storyService service.StoryService, defaultLanguage string) *StoryController {
	return &StoryController{
		storyService:    storyService,
		defaultLanguage: defaultLanguage,
	}
}

type CreateStoryRequest struct {
	PersonID       *uint                      `json:"person_id"`
	PrincipalTagID *uint                      `json:"principal_tag_id"`
	Translations   []service.TranslationInput `json:"translations"`
	TagIDs         []uint                     `json:"tag_ids"`
}

// UpdateStoryRequest is a partial update. principal_tag_id: null clears the principal tag.
type UpdateStoryRequest struct {
	PersonID       *uint                       `json:"person_id"`
	PrincipalTagID service.OptionalID          `json:"principal_tag_id"`
	Translations   *[]service.TranslationInput `json:"translations"`
	TagIDs         *[]uint                     `json:"tag_ids"`
}

func (ctrl *StoryController) language(c *gin.Context) string {
	if lang := model.NormalizeLanguageCode(c.Query("lang")); lang != "" {
		return lang
	}
	return model.NormalizeLanguageCode(ctrl.defaultLanguage)
}

func (ctrl *StoryController) respondStory(c *gin.Context, status int, result *service.StoryResult) {
	skipped := result.SkippedTagIDs
	if skipped == nil {
		skipped = []uint{}
	}
	c.JSON(status, gin.H{
		"story":           result.Story.ToResponse(ctrl.language(c), true),
		"skipped_tag_ids": skipped,
	})
}

// CreateStory creates a story with its translations and tags
// POST /api/stories
func (ctrl *StoryController) CreateStory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	// Get admin ID from context (set by auth middleware)
	adminID, exists := middleware.GetAdminID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	// Unknown fields are rejected
	var req CreateStoryRequest
	if err := decodeStrictJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}
	// person_id is the only required reference
	if req.PersonID == nil {
		apperrors.RespondWithValidationError(c, "person_id: is required", map[string]string{
			"person_id": "is required",
		})
		return
	}

	// Person and principal tag must exist; unknown tag IDs come back as skipped
	result, err := ctrl.storyService.CreateStory(c.Request.Context(), service.CreateStoryInput{
		PersonID:       *req.PersonID,
		AdminID:        adminID,
		PrincipalTagID: req.PrincipalTagID,
		Translations:   req.Translations,
		TagIDs:         req.TagIDs,
	})
	if err != nil {
		respondServiceError(c, err, "story")
		return
	}

	log.Info("Story created", map[string]interface{}{
		"story_id": result.Story.ID,
		"admin_id": adminID,
	})
	ctrl.respondStory(c, http.StatusCreated, result)
}

// ListStories returns every story, newest first
// GET /api/stories
func (ctrl *StoryController) ListStories(c *gin.Context) {
	stories, err := ctrl.storyService.ListStories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "story")
		return
	}

	lang := ctrl.language(c)
	items := make([]model.StoryResponse, 0, len(stories))
	for i := range stories {
		items = append(items, stories[i].ToResponse(lang, true))
	}

	c.JSON(http.StatusOK, gin.H{
		"stories": items,
		"count":   len(items),
	})
}

// GetStory
// GET /api/stories/:id
func (ctrl *StoryController) GetStory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	story, err := ctrl.storyService.GetStory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "story")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"story": story.ToResponse(ctrl.language(c), true),
	})
}

// UpdateStory applies a partial update
// PUT /api/stories/:id
func (ctrl *StoryController) UpdateStory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Absent fields keep their stored values
	var req UpdateStoryRequest
	if err := decodeStrictJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := ctrl.storyService.UpdateStory(c.Request.Context(), id, service.UpdateStoryInput{
		PersonID:       req.PersonID,
		PrincipalTagID: req.PrincipalTagID,
		Translations:   req.Translations,
		TagIDs:         req.TagIDs,
	})
	if err != nil {
		respondServiceError(c, err, "story")
		return
	}

	log.Info("Story updated", map[string]interface{}{
		"story_id": id,
	})
	ctrl.respondStory(c, http.StatusOK, result)
}

// DeleteStory
// DELETE /api/stories/:id
func (ctrl *StoryController) DeleteStory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.storyService.DeleteStory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "story")
		return
	}

	log.Info("Story deleted", map[string]interface{}{
		"story_id": id,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Story deleted successfully",
	})
}
