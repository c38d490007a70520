package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

type Platform string

const (
	PlatformGeneric  Platform = "GENERIC"
	PlatformTelegram Platform = "TELEGRAM"
	PlatformTwitter  Platform = "TWITTER"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformGeneric, PlatformTelegram, PlatformTwitter:
		return true
	}
	return false
}

// AutoVerified reports whether completion is checked against an external API.
func (p Platform) AutoVerified() bool {
	return p == PlatformTelegram || p == PlatformTwitter
}

type TaskType string

const (
	TaskTypeDaily TaskType = "DAILY"
	TaskTypeOnce  TaskType = "ONCE"
)

func (t TaskType) Valid() bool {
	return t == TaskTypeDaily || t == TaskTypeOnce
}

type SubmitType string

const (
	SubmitTypeNone  SubmitType = "NONE"
	SubmitTypeLink  SubmitType = "LINK"
	SubmitTypeImage SubmitType = "IMAGE"
	SubmitTypeBoth  SubmitType = "BOTH"
)

func (s SubmitType) Valid() bool {
	switch s {
	case SubmitTypeNone, SubmitTypeLink, SubmitTypeImage, SubmitTypeBoth:
		return true
	}
	return false
}

func (s SubmitType) NeedsLink() bool  { return s == SubmitTypeLink || s == SubmitTypeBoth }
func (s SubmitType) NeedsImage() bool { return s == SubmitTypeImage || s == SubmitTypeBoth }

// EngagementKind is a Twitter interaction a task can require.
type EngagementKind string

const (
	EngagementReact   EngagementKind = "REACT"
	EngagementFollow  EngagementKind = "FOLLOW"
	EngagementRetweet EngagementKind = "RETWEET"
	EngagementReply   EngagementKind = "REPLY"
	EngagementQuote   EngagementKind = "QUOTE"
)

func (k EngagementKind) Valid() bool {
	switch k {
	case EngagementReact, EngagementFollow, EngagementRetweet, EngagementReply, EngagementQuote:
		return true
	}
	return false
}

// EngagementKinds is an ordered set stored as a comma separated column.
type EngagementKinds []EngagementKind

func (e EngagementKinds) Value() (driver.Value, error) {
	if len(e) == 0 {
		return "", nil
	}
	parts := make([]string, len(e))
	for i, k := range e {
		parts[i] = string(k)
	}
	return strings.Join(parts, ","), nil
}

func (e *EngagementKinds) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*e = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("scan engagement kinds: unsupported type %T", src)
	}

	kinds := EngagementKinds{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kinds = append(kinds, EngagementKind(part))
	}
	*e = kinds
	return nil
}

type Task struct {
	ID          uint64          `gorm:"primarykey" json:"id"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	CTA         string          `gorm:"type:varchar(100)" json:"cta"`
	Description string          `gorm:"type:text" json:"description"`
	Link        string          `gorm:"type:varchar(512)" json:"link"`
	Image       string          `gorm:"type:varchar(512)" json:"image"`
	Platform    Platform        `gorm:"type:varchar(20);not null" json:"platform"`
	Type        TaskType        `gorm:"type:varchar(10);not null;index" json:"type"`
	SubmitType  SubmitType      `gorm:"type:varchar(10);not null" json:"submit_type"`
	Points      int64           `gorm:"not null" json:"points"`
	CheckFor    EngagementKinds `gorm:"type:varchar(100)" json:"check_for"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
