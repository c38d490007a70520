package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/repository"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// TaskInput represents the fields of a task as sent by an admin
type TaskInput struct {
	Title       string
	CTA         string
	Description string
	Link        string
	Image       string
	Platform    models.Platform
	Type        models.TaskType
	SubmitType  models.SubmitType
	Points      int64
	CheckFor    []models.EngagementKind
}

// TaskPatch represents a partial update; nil fields are left unchanged
type TaskPatch struct {
	Title       *string
	CTA         *string
	Description *string
	Link        *string
	Image       *string
	Platform    *models.Platform
	Type        *models.TaskType
	SubmitType  *models.SubmitType
	Points      *int64
	CheckFor    *[]models.EngagementKind
}

// ListTasks returns every task, optionally filtered by type
func (s *TaskService) ListTasks(ctx context.Context, taskType *models.TaskType) ([]models.Task, error) {
	if taskType != nil && !taskType.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidTask, *taskType)
	}

	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{Type: taskType})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a task by ID
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// CreateTask validates and stores a new task
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*models.Task, error) {
	if input.SubmitType == "" {
		input.SubmitType = models.SubmitTypeNone
	}

	task := &models.Task{
		Title:       strings.TrimSpace(input.Title),
		CTA:         strings.TrimSpace(input.CTA),
		Description: input.Description,
		Link:        strings.TrimSpace(input.Link),
		Image:       strings.TrimSpace(input.Image),
		Platform:    input.Platform,
		Type:        input.Type,
		SubmitType:  input.SubmitType,
		Points:      input.Points,
		CheckFor:    lo.Uniq(input.CheckFor),
	}

	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// UpdateTask applies a partial update to an existing task
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint64, patch TaskPatch) (*models.Task, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.CTA != nil {
		task.CTA = strings.TrimSpace(*patch.CTA)
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Link != nil {
		task.Link = strings.TrimSpace(*patch.Link)
	}
	if patch.Image != nil {
		task.Image = strings.TrimSpace(*patch.Image)
	}
	if patch.Platform != nil {
		task.Platform = *patch.Platform
	}
	if patch.Type != nil {
		task.Type = *patch.Type
	}
	if patch.SubmitType != nil {
		task.SubmitType = *patch.SubmitType
	}
	if patch.Points != nil {
		task.Points = *patch.Points
	}
	if patch.CheckFor != nil {
		task.CheckFor = lo.Uniq(*patch.CheckFor)
	}

	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task with its completion records and submissions.
// Points already awarded are kept.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint64) error {
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func validateTask(task *models.Task) error {
	if task.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if !task.Platform.Valid() {
		return fmt.Errorf("%w: unknown platform %q", ErrInvalidTask, task.Platform)
	}
	if !task.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTask, task.Type)
	}
	if !task.SubmitType.Valid() {
		return fmt.Errorf("%w: unknown submit type %q", ErrInvalidTask, task.SubmitType)
	}
	if task.Points < 0 {
		return fmt.Errorf("%w: points must not be negative", ErrInvalidTask)
	}

	for _, kind := range task.CheckFor {
		if !kind.Valid() {
			return fmt.Errorf("%w: unknown engagement kind %q", ErrInvalidTask, kind)
		}
	}

	if task.Platform == models.PlatformTwitter {
		if len(task.CheckFor) == 0 {
			return fmt.Errorf("%w: twitter tasks need at least one check", ErrInvalidTask)
		}
		needsTweet := lo.ContainsBy(task.CheckFor, func(k models.EngagementKind) bool {
			return k == models.EngagementRetweet || k == models.EngagementReply || k == models.EngagementQuote
		})
		if needsTweet && task.Link == "" {
			return fmt.Errorf("%w: link to the tweet is required", ErrInvalidTask)
		}
	}
	return nil
}
