package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/points-api/internal/dto"
	apierrors "github.com/yukikurage/points-api/internal/errors"
	"github.com/yukikurage/points-api/internal/middleware"
	"github.com/yukikurage/points-api/internal/services"
	"github.com/yukikurage/points-api/internal/utils"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the current user's notifications, newest first
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	params := utils.GetPaginationParams(c)

	notifications, total, err := h.notifications.ListForUser(c.Request.Context(), userID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NotificationListResponse{
		Notifications: notifications,
		Pagination:    params.Response(total),
	})
}

// MarkRead flags one of the current user's notifications as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	notificationID, ok := parseIDParam(c, "notificationId")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// Send queues a notification for selected users (admin)
func (h *NotificationHandler) Send(c *gin.Context) {
	var req dto.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "userIds and title are required")
		return
	}

	count, err := h.notifications.Send(c.Request.Context(), req.UserIDs, req.Title, req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"message":    "Notification queued",
		"recipients": count,
	})
}
