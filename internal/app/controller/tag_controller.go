package controller

import (
	"net/http"

	"github.com/back-pedagogico/stories-backend/internal/app/service"
	apperrors "github.com/back-pedagogico/stories-backend/internal/errors"
	"github.com/back-pedagogico/stories-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type TagController struct {
	tagService service.TagService
}

func NewTagController(tagService service.TagService) *TagController {
	return &TagController{tagService: tagService}
}

type TagRequest struct {
	Name string `json:"name" binding:"required"`
}

func bindTagRequest(c *gin.Context) (*TagRequest, bool) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid tag request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.MsgInvalidRequest, "name is required")
		return nil, false
	}
	return &req, true
}

// ListTags
// GET /api/tags
func (ctrl *TagController) ListTags(c *gin.Context) {
	tags, err := ctrl.tagService.ListTags(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "tag")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tags":  tags,
		"count": len(tags),
	})
}

// CreateTag
// POST /api/tags
func (ctrl *TagController) CreateTag(c *gin.Context) {
	req, ok := bindTagRequest(c)
	if !ok {
		return
	}
	tag, err := ctrl.tagService.CreateTag(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, err, "tag")
		return
	}
	middleware.GetLoggerFromContext(c).Info("Tag created", map[string]interface{}{
		"tag_id": tag.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// GetTag
// GET /api/tags/:id
func (ctrl *TagController) GetTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	tag, err := ctrl.tagService.GetTag(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "tag")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// UpdateTag renames a tag
// PUT /api/tags/:id
func (ctrl *TagController) UpdateTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	req, ok := bindTagRequest(c)
	if !ok {
		return
	}
	tag, err := ctrl.tagService.UpdateTag(c.Request.Context(), id, req.Name)
	if err != nil {
		respondServiceError(c, err, "tag")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// DeleteTag detaches the tag from every story and removes it
// DELETE /api/tags/:id
func (ctrl *TagController) DeleteTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.tagService.DeleteTag(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "tag")
		return
	}
	middleware.GetLoggerFromContext(c).Info("Tag deleted", map[string]interface{}{
		"tag_id": id,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted successfully"})
}
