package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/back-pedagogico/stories-backend/internal/app/service"
	apperrors "github.com/back-pedagogico/stories-backend/internal/errors"
	"github.com/back-pedagogico/stories-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

var notFoundMessages = map[error]string{
	service.ErrStoryNotFound:  "Story not found",
	service.ErrPersonNotFound: "Person not found",
	service.ErrTagNotFound:    "Tag not found",
	service.ErrImageNotFound:  "Image not found",
	service.ErrAdminNotFound:  "Admin not found",
}

var conflictMessages = map[error]string{
	service.ErrTagAlreadyExists:   "A tag with this name already exists",
	service.ErrAdminAlreadyExists: "An admin with this name already exists",
}

// respondServiceError maps a service error onto the HTTP error taxonomy.
// subject is used for storage errors the service did not translate.
func respondServiceError(c *gin.Context, err error, subject string) {
	log := middleware.GetLoggerFromContext(c)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		log.Warn("Request rejected by validation", map[string]interface{}{
			"field": validationErr.Field,
			"error": validationErr.Message,
		})
		var fields map[string]string
		if validationErr.Field != "" {
			fields = map[string]string{validationErr.Field: validationErr.Message}
		}
		apperrors.RespondWithValidationError(c, validationErr.Error(), fields)
		return
	}

	for target, message := range notFoundMessages {
		if errors.Is(err, target) {
			log.Warn(message, map[string]interface{}{"path": c.FullPath()})
			apperrors.NotFound(c, message)
			return
		}
	}
	for target, message := range conflictMessages {
		if errors.Is(err, target) {
			log.Warn(message)
			apperrors.Conflict(c, message)
			return
		}
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		apperrors.Unauthorized(c, apperrors.MsgInvalidCredentials)
	case errors.Is(err, service.ErrUnsupportedFile):
		log.Warn("Unsupported file type")
		apperrors.BadRequest(c, apperrors.MsgUnsupportedType)
	case errors.As(err, &maxBytesErr):
		log.Warn("Request body too large", map[string]interface{}{"limit": maxBytesErr.Limit})
		apperrors.PayloadTooLarge(c, "")
	default:
		info := apperrors.ParseError(err, subject)
		if info.Status >= http.StatusInternalServerError {
			log.Error("Request failed", err, map[string]interface{}{"subject": subject})
		} else {
			log.Warn("Request failed", map[string]interface{}{
				"subject": subject,
				"error":   err.Error(),
			})
		}
		apperrors.ParseAndRespond(c, err, subject)
	}
}

// parseIDParam reads a positive integer path parameter. On failure it writes a 400.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, "Invalid "+name, fmt.Sprintf("%q is not a valid id", raw))
		return 0, false
	}
	return uint(id), true
}

// decodeStrictJSON decodes the body into v and rejects unknown fields and trailing data.
func decodeStrictJSON(c *gin.Context, v interface{}) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// respondBindError writes the 400 for an undecodable body, or 413 when the cap was hit.
func respondBindError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		apperrors.PayloadTooLarge(c, "")
		return
	}
	middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
		"error": err.Error(),
	})
	apperrors.BadRequest(c, apperrors.MsgInvalidRequest, err.Error())
}
