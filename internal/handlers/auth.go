package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/points-api/internal/constants"
	"github.com/yukikurage/points-api/internal/dto"
	apierrors "github.com/yukikurage/points-api/internal/errors"
	"github.com/yukikurage/points-api/internal/logger"
	"github.com/yukikurage/points-api/internal/middleware"
	"github.com/yukikurage/points-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	log         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// Register creates a user account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Username:   req.Username,
		TelegramID: req.TelegramID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !h.startSession(c, constants.ContextKeyUserID, user.ID) {
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Username:   req.Username,
		TelegramID: req.TelegramID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !h.startSession(c, constants.ContextKeyUserID, user.ID) {
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the authentication session. It serves users and admins alike.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// RegisterAdmin creates another admin. Only admins can reach it.
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req dto.AdminCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	admin, err := h.authService.RegisterAdmin(c.Request.Context(), services.AdminCredentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	creator, _ := middleware.GetAdminID(c)
	logger.FromContext(c.Request.Context(), h.log).Info("admin registered",
		slog.Uint64("admin_id", admin.ID),
		slog.Uint64("created_by", creator),
	)

	c.JSON(http.StatusCreated, dto.ToAdminDTO(*admin))
}

// LoginAdmin authenticates an admin and initializes the session.
func (h *AuthHandler) LoginAdmin(c *gin.Context) {
	var req dto.AdminCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	admin, err := h.authService.LoginAdmin(c.Request.Context(), services.AdminCredentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !h.startSession(c, constants.ContextKeyAdminID, admin.ID) {
		return
	}

	c.JSON(http.StatusOK, dto.ToAdminDTO(*admin))
}

// startSession replaces whatever identity the session held with key=id.
func (h *AuthHandler) startSession(c *gin.Context, key string, id uint64) bool {
	session := sessions.Default(c)
	session.Clear()
	session.Set(key, id)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, err)
		return false
	}
	return true
}
