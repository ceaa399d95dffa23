package controller

import (
	"errors"
	"net/http"

	"github.com/back-pedagogico/stories-backend/internal/app/service"
	apperrors "github.com/back-pedagogico/stories-backend/internal/errors"
	"github.com/back-pedagogico/stories-backend/internal/middleware"
	"github.com/back-pedagogico/stories-backend/internal/storage"
	"github.com/back-pedagogico/stories-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

type UploadController struct {
	imageService service.ImageService
}

func NewUploadController(imageService service.ImageService) *UploadController {
	return &UploadController{imageService: imageService}
}

// ServeFile streams a stored upload. The requested name must survive
// sanitizing unchanged, so path tricks never reach the store.
// GET /api/uploads/:filename
func (ctrl *UploadController) ServeFile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	name := c.Param("filename")
	if name == "" || util.SecureFilename(name) != name {
		log.Warn("Rejected upload filename", map[string]interface{}{
			"filename": name,
		})
		apperrors.BadRequest(c, "Invalid filename")
		return
	}

	// Open from whichever store is configured
	rc, size, err := ctrl.imageService.OpenFile(c.Request.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileNotFound):
			apperrors.NotFound(c, "File not found")
		case errors.Is(err, storage.ErrInvalidName):
			apperrors.BadRequest(c, "Invalid filename")
		default:
			log.Error("Failed to open stored file", err, map[string]interface{}{
				"filename": name,
			})
			apperrors.InternalError(c, "")
		}
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, size, storage.ContentType(name), rc, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}
