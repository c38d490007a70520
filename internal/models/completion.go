package models

import "time"

// TaskCompletion records that a user was rewarded for a task.
// Kind mirrors the task type so daily records can be cleared without a join.
type TaskCompletion struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	UserID      uint64    `gorm:"not null;uniqueIndex:idx_completions_user_task" json:"user_id"`
	TaskID      uint64    `gorm:"not null;uniqueIndex:idx_completions_user_task;index" json:"task_id"`
	Kind        TaskType  `gorm:"type:varchar(10);not null;index" json:"kind"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}
