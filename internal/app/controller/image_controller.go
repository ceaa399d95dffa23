package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/back-pedagogico/stories-backend/internal/app/service"
	apperrors "github.com/back-pedagogico/stories-backend/internal/errors"
	"github.com/back-pedagogico/stories-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	formFieldFile        = "file"
	formFieldDescription = "description"
	// legacy clients send the Spanish field name
	formFieldDescripcion = "descripcion"
)

type ImageController struct {
	imageService service.ImageService
}

func NewImageController(imageService service.ImageService) *ImageController {
	return &ImageController{imageService: imageService}
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large")
}

// UploadImage stores an image for a person
// POST /api/persons/:id/images
// Multipart fields:
//   - file: the image (required)
//   - description: optional caption
func (ctrl *ImageController) UploadImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	personID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Parse multipart form; the body limit surfaces here
	fileHeader, err := c.FormFile(formFieldFile)
	if err != nil {
		if isBodyTooLarge(err) {
			log.Warn("Upload rejected: body too large", map[string]interface{}{
				"person_id": personID,
			})
			apperrors.PayloadTooLarge(c, "")
			return
		}
		log.Warn("Upload without file", map[string]interface{}{
			"person_id": personID,
			"error":     err.Error(),
		})
		apperrors.BadRequest(c, "No file provided", "multipart field \"file\" is required")
		return
	}
	if fileHeader.Filename == "" {
		apperrors.BadRequest(c, "No file selected")
		return
	}

	// Accept either spelling of the description field
	var description *string
	if v, ok := c.GetPostForm(formFieldDescription); ok {
		description = &v
	} else if v, ok := c.GetPostForm(formFieldDescripcion); ok {
		description = &v
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", err, nil)
		apperrors.InternalError(c, "")
		return
	}
	defer file.Close()

	image, err := ctrl.imageService.Upload(c.Request.Context(), service.UploadImageInput{
		PersonID:    personID,
		Filename:    fileHeader.Filename,
		Content:     file,
		Description: description,
	})
	if err != nil {
		respondServiceError(c, err, "image")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Image uploaded successfully",
		"image":   image,
		"url":     "/api/uploads/" + image.Filename,
	})
}

// ListImages
// GET /api/persons/:id/images
func (ctrl *ImageController) ListImages(c *gin.Context) {
	personID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	images, err := ctrl.imageService.ListByPerson(c.Request.Context(), personID)
	if err != nil {
		respondServiceError(c, err, "image")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"images": images,
		"count":  len(images),
	})
}

// DeleteImage removes the record and its stored files
// DELETE /api/images/:id
func (ctrl *ImageController) DeleteImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.imageService.DeleteImage(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}
