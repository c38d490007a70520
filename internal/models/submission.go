package models

import "time"

type SubmissionStatus string

const (
	SubmissionPending       SubmissionStatus = "PENDING"
	SubmissionCompleted     SubmissionStatus = "COMPLETED"
	SubmissionRejected      SubmissionStatus = "REJECTED"
	SubmissionAdminApproved SubmissionStatus = "ADMIN_APPROVED"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionCompleted, SubmissionRejected, SubmissionAdminApproved:
		return true
	}
	return false
}

// Collectable reports whether the user may claim the reward for a submission in this state.
// COMPLETED is kept for rows written before ADMIN_APPROVED existed.
func (s SubmissionStatus) Collectable() bool {
	return s == SubmissionAdminApproved || s == SubmissionCompleted
}

// TaskSubmission is proof of a manual-review task awaiting an admin decision.
// At most one row exists per (user, task).
type TaskSubmission struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	UserID      uint64           `gorm:"not null;uniqueIndex:idx_submissions_user_task" json:"user_id"`
	TaskID      uint64           `gorm:"not null;uniqueIndex:idx_submissions_user_task;index" json:"task_id"`
	Status      SubmissionStatus `gorm:"type:varchar(20);not null;index:idx_submissions_status_created,priority:1" json:"status"`
	ActivityURL *string          `gorm:"type:varchar(512)" json:"activity_url"`
	ImageURL    *string          `gorm:"type:varchar(512)" json:"image_url"`
	CreatedAt   time.Time        `gorm:"index:idx_submissions_status_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
