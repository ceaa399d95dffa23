package controller

import (
	"net/http"

	"github.com/back-pedagogico/stories-backend/internal/app/service"
	apperrors "github.com/back-pedagogico/stories-backend/internal/errors"
	"github.com/back-pedagogico/stories-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Login handles admin login
// POST /api/admin/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.MsgInvalidRequest)
		return
	}

	result, err := ctrl.authService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondServiceError(c, err, "admin")
		return
	}

	log.Info("Login successful", map[string]interface{}{
		"admin_id": result.Admin.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"access_token": result.AccessToken,
		"token_type":   "Bearer",
		"expires_at":   result.ExpiresAt,
		"admin":        result.Admin,
	})
}

// Logout revokes the current token when a blocklist is configured.
// Without one the client is expected to discard the token.
// POST /api/admin/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	claims, _ := middleware.GetClaims(c)
	revoked, err := ctrl.authService.Logout(c.Request.Context(), claims)
	if err != nil {
		log.Error("Failed to revoke token", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Admin logged out", map[string]interface{}{
		"revoked": revoked,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Logout successful",
		"revoked": revoked,
	})
}

// GetMe returns the authenticated admin
// GET /api/admin/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	adminID, exists := middleware.GetAdminID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	admin, err := ctrl.authService.GetAdmin(c.Request.Context(), adminID)
	if err != nil {
		respondServiceError(c, err, "admin")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"admin": admin,
	})
}
