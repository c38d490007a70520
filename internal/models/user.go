package models

import (
	"time"
)

type User struct {
	ID              uint64     `gorm:"primarykey" json:"id"`
	Username        string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	TelegramID      int64      `gorm:"uniqueIndex;not null" json:"telegram_id"`
	ReferralCode    string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"referral_code"`
	InviteLink      string     `gorm:"type:varchar(255)" json:"invite_link"`
	TotalScore      int64      `gorm:"not null;default:0;index" json:"total_score"`
	TaskScore       int64      `gorm:"not null;default:0;index" json:"task_score"`
	InviteScore     int64      `gorm:"not null;default:0" json:"invite_score"`
	LastResetDate   *time.Time `json:"last_reset_date"`
	TwitterUsername *string    `gorm:"type:varchar(100)" json:"twitter_username"`
	TwitterID       *int64     `json:"twitter_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relations
	Completions []TaskCompletion `gorm:"foreignKey:UserID" json:"-"`
	Submissions []TaskSubmission `gorm:"foreignKey:UserID" json:"-"`
}

// HasTwitter reports whether the user linked a Twitter account.
func (u *User) HasTwitter() bool {
	return u.TwitterUsername != nil && *u.TwitterUsername != ""
}
