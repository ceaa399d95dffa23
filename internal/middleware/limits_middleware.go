package middleware

import (
	"context"
	"net/http"
	"time"

	apperrors "github.com/back-pedagogico/stories-backend/internal/errors"
	"github.com/gin-gonic/gin"
)

// Timeout bounds the request context. Handlers pass it to gorm, so a request that
// runs out of time fails its query and its transaction rolls back.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// BodyLimit rejects declared oversize bodies with 413 and caps the rest while they are read.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		// Reject early when the declared length is already over the limit
		if c.Request.ContentLength > maxBytes {
			GetLoggerFromContext(c).Warn("Request body too large", map[string]interface{}{
				"content_length": c.Request.ContentLength,
				"max_bytes":      maxBytes,
			})
			apperrors.PayloadTooLarge(c, "")
			c.Abort()
			return
		}
		// Chunked or undeclared bodies fail on read instead
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
