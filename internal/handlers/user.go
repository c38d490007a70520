package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/points-api/internal/dto"
	apierrors "github.com/yukikurage/points-api/internal/errors"
	"github.com/yukikurage/points-api/internal/middleware"
	"github.com/yukikurage/points-api/internal/repository"
	"github.com/yukikurage/points-api/internal/services"
	"github.com/yukikurage/points-api/internal/utils"
)

// UserHandler serves profiles, leaderboards and admin user management.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Profile returns the current user with completion lists and invitees
func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	profile, err := h.users.Profile(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":       dto.ToUserDTO(*profile.User),
		"dailyTasks": profile.DailyTasks,
		"onceTasks":  profile.OnceTasks,
		"invitees":   profile.Invitees,
	})
}

// UsernameByTelegramID resolves a username for the bot
func (h *UserHandler) UsernameByTelegramID(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegramId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid telegramId")
		return
	}

	username, err := h.users.UsernameByTelegramID(c.Request.Context(), telegramID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": username})
}

// TaskLeaderboard ranks users by task score
func (h *UserHandler) TaskLeaderboard(c *gin.Context) {
	h.leaderboard(c, repository.BoardTask)
}

// OverallLeaderboard ranks users by total score
func (h *UserHandler) OverallLeaderboard(c *gin.Context) {
	h.leaderboard(c, repository.BoardOverall)
}

func (h *UserHandler) leaderboard(c *gin.Context, board repository.Board) {
	userID, _ := middleware.GetUserID(c)

	result, err := h.users.Leaderboard(c.Request.Context(), board, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateUsername renames the current user
func (h *UserHandler) UpdateUsername(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req dto.UpdateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "username is required")
		return
	}

	user, err := h.users.UpdateUsername(c.Request.Context(), userID, req.Username)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// LinkTwitter stores the current user's Twitter identity
func (h *UserHandler) LinkTwitter(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req dto.LinkTwitterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "twitterUsername and twitterId are required")
		return
	}

	user, err := h.users.LinkTwitter(c.Request.Context(), userID, req.Username, req.TwitterID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ListUsers returns a page of users (admin)
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.users.ListUsers(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params, total))
}

// UpdateUser edits a user's username or scores (admin)
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	var req dto.AdminUserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.users.AdminUpdate(c.Request.Context(), userID, services.AdminUserPatch{
		Username:    req.Username,
		TaskScore:   req.TaskScore,
		InviteScore: req.InviteScore,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser removes a user (admin)
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// ResetScores zeroes every user's task score (admin)
func (h *UserHandler) ResetScores(c *gin.Context) {
	affected, err := h.users.ResetTaskScores(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Task scores reset successfully",
		"users":   affected,
	})
}

// DownloadRanking returns the ranking as a CSV attachment (admin)
func (h *UserHandler) DownloadRanking(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.users.WriteRankingCSV(c.Request.Context(), &buf); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="ranking.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
