package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyAdminID = "admin_id"
	ContextKeyTask    = "task"
	SessionCookieName = "points_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
	SessionMaxAge     = 7 * 24 * time.Hour
)

// Leaderboard
const (
	LeaderboardSize = 100
)
