package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/back-pedagogico/stories-backend/internal/app/service"
	apperrors "github.com/back-pedagogico/stories-backend/internal/errors"
	"github.com/back-pedagogico/stories-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type PublicStoryController struct {
	publicService service.PublicStoryService
}

func NewPublicStoryController(publicService service.PublicStoryService) *PublicStoryController {
	return &PublicStoryController{publicService: publicService}
}

// optionalInt parses an integer query parameter. Absent or blank yields 0.
func optionalInt(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		apperrors.BadRequest(c, "Invalid "+name, name+" must be an integer")
		return 0, false
	}
	return v, true
}

// ListStories returns published stories for one language
// GET /api/public/stories
// Query params:
//   - lang: language code (default from config)
//   - page, per_page: pagination (per_page is clamped to 1..100)
//   - procedencia, profesion, etiqueta: case-insensitive substring filters
func (ctrl *PublicStoryController) ListStories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, ok := optionalInt(c, service.ParamPage)
	if !ok {
		return
	}
	perPage, ok := optionalInt(c, service.ParamPerPage)
	if !ok {
		return
	}

	params := service.PublicListParams{
		Language:   c.Query(service.ParamLanguage),
		Page:       page,
		PerPage:    perPage,
		Origin:     c.Query(service.ParamOrigin),
		Profession: c.Query(service.ParamProfession),
		TagName:    c.Query(service.ParamTag),
		BasePath:   c.Request.URL.Path,
	}

	result, err := ctrl.publicService.ListPublicStories(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err, "story")
		return
	}

	log.Debug("Public stories listed", map[string]interface{}{
		"page":        result.Meta.Page,
		"total_items": result.Meta.TotalItems,
	})
	c.JSON(http.StatusOK, result)
}

// GetStory
// GET /api/public/stories/:id
func (ctrl *PublicStoryController) GetStory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	story, err := ctrl.publicService.GetPublicStory(c.Request.Context(), id, c.Query(service.ParamLanguage))
	if err != nil {
		respondServiceError(c, err, "story")
		return
	}

	c.JSON(http.StatusOK, story)
}
