package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every domain error.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// TokenErrorResponse is the body of authentication failures raised before any handler runs.
type TokenErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func RespondWithError(c *gin.Context, statusCode int, message, details string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   message,
		Details: details,
	})
}

func RespondWithTokenError(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, TokenErrorResponse{
		Message: message,
		Error:   code,
	})
}

func RespondWithValidationError(c *gin.Context, message string, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:  message,
		Fields: fields,
	})
}

func BadRequest(c *gin.Context, message string, details ...string) {
	RespondWithError(c, http.StatusBadRequest, message, first(details))
}

func Unauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, message, "")
}

func NotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, message, "")
}

func Conflict(c *gin.Context, message string) {
	RespondWithError(c, http.StatusConflict, message, "")
}

func PayloadTooLarge(c *gin.Context, message string) {
	if message == "" {
		message = MsgFileTooLarge
	}
	RespondWithError(c, http.StatusRequestEntityTooLarge, message, "")
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = MsgInternal
	}
	RespondWithError(c, http.StatusInternalServerError, message, "")
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
