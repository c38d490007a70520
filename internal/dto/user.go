package dto

import (
	"time"

	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/utils"
)

// RegisterRequest creates a user account
type RegisterRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=50"`
	TelegramID int64  `json:"telegramId" binding:"required"`
}

// LoginRequest authenticates a user
type LoginRequest struct {
	Username   string `json:"username" binding:"required"`
	TelegramID int64  `json:"telegramId" binding:"required"`
}

// AdminCredentialsRequest is used for admin register and login
type AdminCredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUsernameRequest renames the current user
type UpdateUsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// LinkTwitterRequest attaches a Twitter identity to the current user
type LinkTwitterRequest struct {
	Username  string `json:"twitterUsername" binding:"required"`
	TwitterID int64  `json:"twitterId" binding:"required"`
}

// AdminUserUpdateRequest is an admin edit of a user
type AdminUserUpdateRequest struct {
	Username    *string `json:"username"`
	TaskScore   *int64  `json:"taskScore"`
	InviteScore *int64  `json:"inviteScore"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID              uint64     `json:"id"`
	Username        string     `json:"username"`
	TelegramID      int64      `json:"telegram_id"`
	ReferralCode    string     `json:"referral_code"`
	InviteLink      string     `json:"invite_link"`
	TotalScore      int64      `json:"total_score"`
	TaskScore       int64      `json:"task_score"`
	InviteScore     int64      `json:"invite_score"`
	LastResetDate   *time.Time `json:"last_reset_date"`
	TwitterUsername *string    `json:"twitter_username"`
	TwitterID       *int64     `json:"twitter_id"`
	CreatedAt       time.Time  `json:"created_at"`
}

// AdminDTO represents an admin in API responses
type AdminDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// UserListResponse is a page of users
type UserListResponse struct {
	Users      []UserDTO                `json:"users"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:              user.ID,
		Username:        user.Username,
		TelegramID:      user.TelegramID,
		ReferralCode:    user.ReferralCode,
		InviteLink:      user.InviteLink,
		TotalScore:      user.TotalScore,
		TaskScore:       user.TaskScore,
		InviteScore:     user.InviteScore,
		LastResetDate:   user.LastResetDate,
		TwitterUsername: user.TwitterUsername,
		TwitterID:       user.TwitterID,
		CreatedAt:       user.CreatedAt,
	}
}

// ToAdminDTO converts an Admin model to AdminDTO
func ToAdminDTO(admin models.Admin) AdminDTO {
	return AdminDTO{ID: admin.ID, Username: admin.Username}
}

// ToUserListResponse converts a page of users
func ToUserListResponse(users []models.User, params utils.PaginationParams, total int64) UserListResponse {
	items := make([]UserDTO, len(users))
	for i, u := range users {
		items[i] = ToUserDTO(u)
	}
	return UserListResponse{Users: items, Pagination: params.Response(total)}
}
