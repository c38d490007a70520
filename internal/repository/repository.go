package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/utils"
)

var (
	// ErrDuplicate is returned when a conditional insert hit an existing unique key.
	ErrDuplicate = errors.New("repository: duplicate record")
	// ErrNoRowsAffected is returned when a conditional update or delete matched nothing.
	ErrNoRowsAffected = errors.New("repository: no rows affected")
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id uint64) (*models.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error

	// Delete removes a task together with its completions and submissions
	Delete(ctx context.Context, id uint64) error

	// DeleteCreatedBefore removes every task created before cutoff, with cascades
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Type     *models.TaskType
	Platform *models.Platform
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	FindByReferralCode(ctx context.Context, code string) (*models.User, error)
	List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error)

	// ListRecipients returns users with a Telegram id; nil ids selects everyone
	ListRecipients(ctx context.Context, ids []uint64) ([]models.User, error)
	ListIDs(ctx context.Context) ([]uint64, error)

	// UpdateFields applies a partial update and returns the reloaded user
	UpdateFields(ctx context.Context, id uint64, fields map[string]any) (*models.User, error)

	// Delete removes a user with submissions, completions, invites and notifications
	Delete(ctx context.Context, id uint64) error

	Leaderboard(ctx context.Context, board Board, limit int) ([]LeaderboardEntry, error)
	Rank(ctx context.Context, board Board, userID uint64) (*LeaderboardEntry, error)
	Ranking(ctx context.Context) ([]LeaderboardEntry, error)

	// ResetTaskScores zeroes every task score and clears all completion records
	ResetTaskScores(ctx context.Context) (int64, error)
}

// Board selects the score column a leaderboard is ordered by
type Board string

const (
	BoardTask    Board = "task_score"
	BoardOverall Board = "total_score"
)

// LeaderboardEntry is a ranked row of a leaderboard
type LeaderboardEntry struct {
	Rank        int64  `json:"rank"`
	UserID      uint64 `json:"user_id"`
	Username    string `json:"username"`
	TaskScore   int64  `json:"task_score"`
	InviteScore int64  `json:"invite_score"`
	TotalScore  int64  `json:"total_score"`
}

// CompletionRepository owns submissions and completion records, the state of the task engine
type CompletionRepository interface {
	HasCompletion(ctx context.Context, userID, taskID uint64) (bool, error)
	ListCompletions(ctx context.Context, userID uint64, kind models.TaskType) ([]models.TaskCompletion, error)

	FindSubmission(ctx context.Context, userID, taskID uint64) (*models.TaskSubmission, error)

	// CreateSubmission inserts a submission or returns ErrDuplicate when one exists for the pair
	CreateSubmission(ctx context.Context, submission *models.TaskSubmission) error
	// Resubmit reopens a retained REJECTED submission as PENDING with new proof.
	// ErrNoRowsAffected means there was no rejected submission to reopen.
	Resubmit(ctx context.Context, submission *models.TaskSubmission) error
	ListSubmissions(ctx context.Context, status models.SubmissionStatus, params utils.PaginationParams) ([]models.TaskSubmission, int64, error)

	// ApplyReward records the completion and credits task points in one transaction.
	// ErrDuplicate means the pair was already rewarded and nothing changed.
	ApplyReward(ctx context.Context, userID uint64, task *models.Task, at time.Time) (*models.User, error)

	// CollectApproved consumes an approved submission and applies the reward atomically.
	// ErrNoRowsAffected means there was no collectable submission.
	CollectApproved(ctx context.Context, userID uint64, task *models.Task, at time.Time) (*models.User, error)

	// ResolvePending moves a PENDING submission to status, or deletes it when remove is set.
	// ErrNoRowsAffected means the submission was not pending.
	ResolvePending(ctx context.Context, userID, taskID uint64, status models.SubmissionStatus, remove bool) error

	// ResetDaily clears every DAILY completion record and stamps users' last reset date
	ResetDaily(ctx context.Context, at time.Time) (int64, error)
}

// InviteRepository records referral rewards
type InviteRepository interface {
	// Record credits the inviter and returns the updated inviter and invite count.
	// ErrDuplicate means the pair was already credited.
	Record(ctx context.Context, inviterID uint64, inviteeTelegramID int64, points int64) (*models.User, int64, error)
	ListInvitees(ctx context.Context, inviterID uint64) ([]int64, error)
}

// NotificationRepository defines the interface for the notification store
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ListByUser(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id uint64) error
}

// ContentRepository covers announcements and carousel images
type ContentRepository interface {
	CreateAnnouncement(ctx context.Context, a *models.Announcement) error
	FindAnnouncement(ctx context.Context, id uint64) (*models.Announcement, error)
	ListAnnouncements(ctx context.Context) ([]models.Announcement, error)
	UpdateAnnouncement(ctx context.Context, a *models.Announcement) error
	DeleteAnnouncement(ctx context.Context, id uint64) error

	CreateCarouselImage(ctx context.Context, img *models.CarouselImage) error
	ListCarouselImages(ctx context.Context) ([]models.CarouselImage, error)
	DeleteCarouselImage(ctx context.Context, id uint64) error
}

// AdminRepository defines the interface for admin account data access
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByID(ctx context.Context, id uint64) (*models.Admin, error)
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
}
