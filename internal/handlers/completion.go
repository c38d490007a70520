package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/points-api/internal/dto"
	apierrors "github.com/yukikurage/points-api/internal/errors"
	"github.com/yukikurage/points-api/internal/middleware"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/services"
	"github.com/yukikurage/points-api/internal/utils"
)

// CompletionHandler exposes the task completion engine and referral rewards.
type CompletionHandler struct {
	completion *services.CompletionService
	referrals  *services.ReferralService
}

func NewCompletionHandler(completion *services.CompletionService, referrals *services.ReferralService) *CompletionHandler {
	return &CompletionHandler{completion: completion, referrals: referrals}
}

// MarkTask attempts a task for the current user
func (h *CompletionHandler) MarkTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req dto.MarkTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "taskId is required")
		return
	}

	result, err := h.completion.Mark(c.Request.Context(), services.MarkInput{
		UserID:      userID,
		TaskID:      req.TaskID,
		ActivityURL: req.ActivityURL,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := dto.MarkTaskResponse{
		Status: string(result.Outcome),
		Task:   *result.Task,
	}
	if result.Outcome == services.OutcomePending {
		resp.Message = "Task marked for review"
	} else {
		resp.Message = "Task completed successfully"
		user := dto.ToUserDTO(*result.User)
		resp.User = &user
	}
	c.JSON(http.StatusOK, resp)
}

// CompleteTask collects the reward of an approved submission
func (h *CompletionHandler) CompleteTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := parseIDParam(c, "taskId")
	if !ok {
		return
	}

	user, err := h.completion.Collect(c.Request.Context(), userID, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reward collected successfully",
		"user":    dto.ToUserDTO(*user),
	})
}

// UpdateTaskStatus approves or rejects a pending submission (admin)
func (h *CompletionHandler) UpdateTaskStatus(c *gin.Context) {
	adminID, _ := middleware.GetAdminID(c)

	var req dto.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "userId, taskId and status are required")
		return
	}

	err := h.completion.Adjudicate(c.Request.Context(), services.AdjudicateInput{
		AdminID:  adminID,
		UserID:   req.UserID,
		TaskID:   req.TaskID,
		Decision: req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task status updated to " + string(req.Status)})
}

// ListSubmissions returns the review queue (admin). ?status= defaults to PENDING.
func (h *CompletionHandler) ListSubmissions(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	status := models.SubmissionStatus(c.Query("status"))

	submissions, total, err := h.completion.ListSubmissions(c.Request.Context(), status, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubmissionListResponse(submissions, params, total))
}

// RewardInviter credits the owner of :referCode for the current user's signup
func (h *CompletionHandler) RewardInviter(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	result, err := h.referrals.RewardInviter(c.Request.Context(), userID, c.Param("referCode"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Inviter rewarded successfully",
		"inviteCount": result.InviteCount,
		"milestone":   result.Milestone,
	})
}
