package dto

import (
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/utils"
)

// AnnouncementRequest creates or updates an announcement
type AnnouncementRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Link        *string `json:"link"`
}

// CarouselRequest adds a carousel image
type CarouselRequest struct {
	Link string `json:"link" binding:"required"`
}

// SendNotificationRequest is an admin notification to selected users
type SendNotificationRequest struct {
	UserIDs []uint64 `json:"userIds" binding:"required,min=1"`
	Title   string   `json:"title" binding:"required"`
	Body    string   `json:"body"`
}

// NotificationListResponse is a page of the caller's notifications
type NotificationListResponse struct {
	Notifications []models.Notification    `json:"notifications"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}

// SendMessageRequest messages selected users through the bot
type SendMessageRequest struct {
	UserIDs []uint64 `json:"userIds" binding:"required,min=1"`
	Message string   `json:"message" binding:"required"`
}

// SendMessageAllRequest messages every bot member
type SendMessageAllRequest struct {
	Message string `json:"message" binding:"required"`
}

// DeliveryDTO is the outcome of one bot message
type DeliveryDTO struct {
	UserID     uint64 `json:"userId"`
	TelegramID int64  `json:"telegramId,omitempty"`
	Sent       bool   `json:"sent"`
	Error      string `json:"error,omitempty"`
}

// BroadcastResponse summarizes a bulk send
type BroadcastResponse struct {
	Message string        `json:"message"`
	Total   int           `json:"total"`
	Sent    int           `json:"sent"`
	Failed  []uint64      `json:"failed"`
	Results []DeliveryDTO `json:"results"`
}

// BotMemberDTO is a user reachable by the bot
type BotMemberDTO struct {
	UserID     uint64 `json:"userId"`
	Username   string `json:"username"`
	TelegramID int64  `json:"telegramId"`
}
