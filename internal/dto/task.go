package dto

import (
	"time"

	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/utils"
)

// TaskRequest is the admin payload for creating a task
type TaskRequest struct {
	Title       string                  `json:"title" binding:"required"`
	CTA         string                  `json:"cta"`
	Description string                  `json:"description"`
	Link        string                  `json:"link"`
	Image       string                  `json:"image"`
	Platform    models.Platform         `json:"platform" binding:"required"`
	Type        models.TaskType         `json:"type" binding:"required"`
	SubmitType  models.SubmitType       `json:"submitType"`
	Points      int64                   `json:"points"`
	CheckFor    []models.EngagementKind `json:"checkFor"`
}

// TaskPatchRequest is the admin payload for updating a task; absent fields are kept
type TaskPatchRequest struct {
	Title       *string                  `json:"title"`
	CTA         *string                  `json:"cta"`
	Description *string                  `json:"description"`
	Link        *string                  `json:"link"`
	Image       *string                  `json:"image"`
	Platform    *models.Platform         `json:"platform"`
	Type        *models.TaskType         `json:"type"`
	SubmitType  *models.SubmitType       `json:"submitType"`
	Points      *int64                   `json:"points"`
	CheckFor    *[]models.EngagementKind `json:"checkFor"`
}

// MarkTaskRequest is sent by a user attempting a task
type MarkTaskRequest struct {
	TaskID      uint64 `json:"taskId" binding:"required"`
	ActivityURL string `json:"activity_url"`
	ImageURL    string `json:"image_url"`
}

// UpdateTaskStatusRequest is an admin decision on a submission
type UpdateTaskStatusRequest struct {
	UserID uint64                  `json:"userId" binding:"required"`
	TaskID uint64                  `json:"taskId" binding:"required"`
	Status models.SubmissionStatus `json:"status" binding:"required"`
}

// MarkTaskResponse reports where the task ended up
type MarkTaskResponse struct {
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Task    models.Task `json:"task"`
	User    *UserDTO    `json:"user,omitempty"`
}

// TaskListResponse is a list of tasks
type TaskListResponse struct {
	Tasks []models.Task `json:"tasks"`
}

// SubmissionDTO is a review queue entry
type SubmissionDTO struct {
	ID          uint64                  `json:"id"`
	Status      models.SubmissionStatus `json:"status"`
	ActivityURL *string                 `json:"activity_url"`
	ImageURL    *string                 `json:"image_url"`
	CreatedAt   time.Time               `json:"created_at"`
	User        *UserDTO                `json:"user,omitempty"`
	Task        *models.Task            `json:"task,omitempty"`
}

// SubmissionListResponse is a page of the review queue
type SubmissionListResponse struct {
	Submissions []SubmissionDTO          `json:"submissions"`
	Pagination  utils.PaginationResponse `json:"pagination"`
}

// ToSubmissionDTO converts a TaskSubmission model to SubmissionDTO
func ToSubmissionDTO(s models.TaskSubmission) SubmissionDTO {
	dto := SubmissionDTO{
		ID:          s.ID,
		Status:      s.Status,
		ActivityURL: s.ActivityURL,
		ImageURL:    s.ImageURL,
		CreatedAt:   s.CreatedAt,
		Task:        s.Task,
	}

	// Include user if preloaded
	if s.User != nil {
		user := ToUserDTO(*s.User)
		dto.User = &user
	}
	return dto
}

// ToSubmissionListResponse converts a page of submissions
func ToSubmissionListResponse(submissions []models.TaskSubmission, params utils.PaginationParams, total int64) SubmissionListResponse {
	items := make([]SubmissionDTO, len(submissions))
	for i, s := range submissions {
		items[i] = ToSubmissionDTO(s)
	}
	return SubmissionListResponse{
		Submissions: items,
		Pagination:  params.Response(total),
	}
}
