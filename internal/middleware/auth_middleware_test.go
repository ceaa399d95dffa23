package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/back-pedagogico/stories-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[jti], nil
}

func setupMiddlewareTest(revocations TokenRevocationChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := NewAuthMiddleware(testJWTSecret, revocations)

	router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
		adminID, _ := GetAdminID(c)
		name, _ := GetAdminName(c)
		c.JSON(http.StatusOK, gin.H{"admin_id": adminID, "name": name})
	})
	return router
}

func generateTestToken(t *testing.T, adminID uint, expiry time.Duration) (string, *util.Claims) {
	token, claims, err := util.GenerateAccessToken(adminID, "admin1", testJWTSecret, expiry)
	require.NoError(t, err)
	return token, claims
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeTokenError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router := setupMiddlewareTest(nil)
	token, _ := generateTestToken(t, 7, 15*time.Minute)

	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"admin_id":7,"name":"admin1"}`, w.Body.String())
}

func TestAuthMiddleware_Authenticate_Failures(t *testing.T) {
	expired, _ := generateTestToken(t, 1, -time.Minute)
	foreign, _, err := util.GenerateAccessToken(1, "admin1", "another-secret", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing header", "", http.StatusUnauthorized, "authorization_required"},
		{"wrong scheme", "Basic abc", http.StatusUnprocessableEntity, "invalid_token"},
		{"too many parts", "Bearer a b", http.StatusUnprocessableEntity, "invalid_token"},
		{"malformed token", "Bearer not-a-jwt", http.StatusUnprocessableEntity, "invalid_token"},
		{"wrong signature", "Bearer " + foreign, http.StatusUnprocessableEntity, "invalid_token"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "token_expired"},
	}

	router := setupMiddlewareTest(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.header)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeTokenError(t, w)
			assert.Equal(t, tt.wantCode, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestAuthMiddleware_Authenticate_Revoked(t *testing.T) {
	token, claims := generateTestToken(t, 1, time.Hour)
	router := setupMiddlewareTest(&fakeRevocations{revoked: map[string]bool{claims.ID: true}})

	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_revoked", decodeTokenError(t, w)["error"])
}

func TestAuthMiddleware_Authenticate_BlocklistFailure(t *testing.T) {
	token, _ := generateTestToken(t, 1, time.Hour)
	router := setupMiddlewareTest(&fakeRevocations{err: errors.New("redis down")})

	w := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetAdminID_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetAdminID(c)
	assert.False(t, ok)
	_, ok = GetClaims(c)
	assert.False(t, ok)
}
