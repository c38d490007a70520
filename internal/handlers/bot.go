package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/yukikurage/points-api/internal/dto"
	apierrors "github.com/yukikurage/points-api/internal/errors"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/services"
)

// BotHandler exposes the Telegram bot to admins.
type BotHandler struct {
	broadcast *services.BroadcastService
}

func NewBotHandler(broadcast *services.BroadcastService) *BotHandler {
	return &BotHandler{broadcast: broadcast}
}

// Members lists the users the bot can reach
func (h *BotHandler) Members(c *gin.Context) {
	users, err := h.broadcast.Members(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	members := lo.Map(users, func(u models.User, _ int) dto.BotMemberDTO {
		return dto.BotMemberDTO{UserID: u.ID, Username: u.Username, TelegramID: u.TelegramID}
	})
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// SendMessage messages selected users and reports each delivery
func (h *BotHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "userIds and message are required")
		return
	}

	results, err := h.broadcast.SendToUsers(c.Request.Context(), req.UserIDs, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBroadcastResponse(results))
}

// SendMessageAll messages every bot member
func (h *BotHandler) SendMessageAll(c *gin.Context) {
	var req dto.SendMessageAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "message is required")
		return
	}

	results, err := h.broadcast.SendToAll(c.Request.Context(), req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBroadcastResponse(results))
}

func toBroadcastResponse(results []services.DeliveryResult) dto.BroadcastResponse {
	summary := services.Summarize(results)

	return dto.BroadcastResponse{
		Message: "Broadcast finished",
		Total:   summary.Total,
		Sent:    summary.Sent,
		Failed:  summary.Failed,
		Results: lo.Map(results, func(r services.DeliveryResult, _ int) dto.DeliveryDTO {
			d := dto.DeliveryDTO{UserID: r.UserID, TelegramID: r.TelegramID, Sent: r.OK()}
			if r.Err != nil {
				d.Error = r.Err.Error()
			}
			return d
		}),
	}
}
