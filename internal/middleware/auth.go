package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/points-api/internal/constants"
	apierrors "github.com/yukikurage/points-api/internal/errors"
)

// RequireAuth checks if a user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loadIdentity(c, constants.ContextKeyUserID) {
			apierrors.Unauthorized(c, "")
			return
		}
		c.Next()
	}
}

// RequireAdmin checks if an admin is authenticated via session
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loadIdentity(c, constants.ContextKeyAdminID) {
			if _, isUser := sessionID(c, constants.ContextKeyUserID); isUser {
				apierrors.Forbidden(c, "Admin access required")
				return
			}
			apierrors.Unauthorized(c, "")
			return
		}
		c.Next()
	}
}

// RequireUserOrAdmin lets either kind of session through. Both ids are put in
// the context when present.
func RequireUserOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := loadIdentity(c, constants.ContextKeyUserID)
		admin := loadIdentity(c, constants.ContextKeyAdminID)
		if !user && !admin {
			apierrors.Unauthorized(c, "")
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toID(userID)
}

// GetAdminID retrieves the current admin ID from context
func GetAdminID(c *gin.Context) (uint64, bool) {
	adminID, exists := c.Get(constants.ContextKeyAdminID)
	if !exists {
		return 0, false
	}
	return toID(adminID)
}

func loadIdentity(c *gin.Context, key string) bool {
	id, ok := sessionID(c, key)
	if !ok {
		return false
	}
	c.Set(key, id)
	return true
}

func sessionID(c *gin.Context, key string) (uint64, bool) {
	value := sessions.Default(c).Get(key)
	if value == nil {
		return 0, false
	}
	return toID(value)
}

// toID accepts the integer shapes a session codec may hand back.
func toID(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
