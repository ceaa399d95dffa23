package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupLoggingTest() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	router.GET("/test", func(c *gin.Context) {
		log := GetLoggerFromContext(c)
		c.JSON(http.StatusOK, gin.H{
			"request_id":  c.GetString("request_id"),
			"has_logger":  log != nil,
			"not_default": log != logger.Get(),
		})
	})
	return router
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	router := setupLoggingTest()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "generated when missing", incoming: "", keep: false},
		{name: "caller id reused", incoming: "req-123", keep: true},
		{name: "oversized id replaced", incoming: strings.Repeat("x", 65), keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			got := w.Header().Get(RequestIDHeader)
			assert.NotEmpty(t, got)
			if tt.keep {
				assert.Equal(t, tt.incoming, got)
			} else {
				assert.NotEqual(t, tt.incoming, got)
			}
			assert.Contains(t, w.Body.String(), `"request_id":"`+got+`"`)
		})
	}
}

func TestGetLoggerFromContext(t *testing.T) {
	router := setupLoggingTest()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	// the handler sees the request-scoped logger, not the global one
	assert.Contains(t, w.Body.String(), `"has_logger":true`)
	assert.Contains(t, w.Body.String(), `"not_default":true`)

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Same(t, logger.Get(), GetLoggerFromContext(c))
}
