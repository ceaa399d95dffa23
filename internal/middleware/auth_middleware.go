package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/back-pedagogico/stories-backend/internal/errors"
	"github.com/back-pedagogico/stories-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

// Context keys for admin information
const (
	AdminIDKey     = "admin_id"
	AdminNameKey   = "admin_name"
	TokenClaimsKey = "token_claims"
)

// TokenRevocationChecker reports whether a token id has been revoked by logout.
type TokenRevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret   string
	revocations TokenRevocationChecker
}

// NewAuthMiddleware builds the token gate. revocations may be nil when no blocklist is configured.
func NewAuthMiddleware(jwtSecret string, revocations TokenRevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:   jwtSecret,
		revocations: revocations,
	}
}

// Authenticate validates the bearer token and short-circuits before any handler runs.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.RespondWithTokenError(c, http.StatusUnauthorized, apperrors.AuthorizationRequired,
				"Request does not contain an access token")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.RespondWithTokenError(c, http.StatusUnprocessableEntity, apperrors.TokenInvalid,
				"Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := util.ValidateToken(parts[1], m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if errors.Is(err, util.ErrExpiredToken) {
				apperrors.RespondWithTokenError(c, http.StatusUnauthorized, apperrors.TokenExpired,
					"The token has expired")
			} else {
				apperrors.RespondWithTokenError(c, http.StatusUnprocessableEntity, apperrors.TokenInvalid,
					"Signature verification failed")
			}
			return
		}

		if m.revocations != nil {
			revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				log.Error("Token blocklist lookup failed", err, map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				apperrors.InternalError(c, "")
				c.Abort()
				return
			}
			if revoked {
				log.Warn("Revoked token presented", map[string]interface{}{
					"path": c.Request.URL.Path,
					"jti":  claims.ID,
				})
				apperrors.RespondWithTokenError(c, http.StatusUnauthorized, apperrors.TokenRevoked,
					"The token has been revoked")
				return
			}
		}

		adminID, _ := claims.AdminID()
		c.Set(AdminIDKey, adminID)
		c.Set(AdminNameKey, claims.Name)
		c.Set(TokenClaimsKey, claims)

		log.Debug("Admin authenticated successfully", map[string]interface{}{
			"admin_id": adminID,
		})

		c.Next()
	}
}

// GetAdminID extracts the authenticated admin id from context
func GetAdminID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(AdminIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// GetAdminName extracts the authenticated admin name from context
func GetAdminName(c *gin.Context) (string, bool) {
	v, exists := c.Get(AdminNameKey)
	if !exists {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

// GetClaims returns the parsed token claims set by Authenticate.
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	v, exists := c.Get(TokenClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*util.Claims)
	return claims, ok
}
