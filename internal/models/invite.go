package models

import "time"

// Invite credits an inviter for one invitee, identified by Telegram id.
type Invite struct {
	ID                uint64    `gorm:"primarykey" json:"id"`
	InviterID         uint64    `gorm:"not null;uniqueIndex:idx_invites_pair" json:"inviter_id"`
	InviteeTelegramID int64     `gorm:"not null;uniqueIndex:idx_invites_pair" json:"invitee_telegram_id"`
	CreatedAt         time.Time `json:"created_at"`
}
