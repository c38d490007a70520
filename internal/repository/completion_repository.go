package repository

import (
	"context"
	"time"

	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCompletionRepository is a GORM implementation of CompletionRepository.
// Double rewards are prevented by the unique (user_id, task_id) indexes, not by prior reads.
type GormCompletionRepository struct {
	db *gorm.DB
}

// NewCompletionRepository creates a new CompletionRepository
func NewCompletionRepository(db *gorm.DB) CompletionRepository {
	return &GormCompletionRepository{db: db}
}

func (r *GormCompletionRepository) HasCompletion(ctx context.Context, userID, taskID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TaskCompletion{}).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormCompletionRepository) ListCompletions(ctx context.Context, userID uint64, kind models.TaskType) ([]models.TaskCompletion, error) {
	completions := []models.TaskCompletion{}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("completed_at ASC").
		Find(&completions).Error
	if err != nil {
		return nil, err
	}
	return completions, nil
}

func (r *GormCompletionRepository) FindSubmission(ctx context.Context, userID, taskID uint64) (*models.TaskSubmission, error) {
	var submission models.TaskSubmission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *GormCompletionRepository) CreateSubmission(ctx context.Context, submission *models.TaskSubmission) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
			DoNothing: true,
		}).
		Create(submission)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *GormCompletionRepository) Resubmit(ctx context.Context, submission *models.TaskSubmission) error {
	result := r.db.WithContext(ctx).
		Model(&models.TaskSubmission{}).
		Where("user_id = ? AND task_id = ? AND status = ?", submission.UserID, submission.TaskID, models.SubmissionRejected).
		Updates(map[string]any{
			"status":       models.SubmissionPending,
			"activity_url": submission.ActivityURL,
			"image_url":    submission.ImageURL,
			"created_at":   submission.CreatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// ListSubmissions returns submissions in the given status, oldest first
func (r *GormCompletionRepository) ListSubmissions(ctx context.Context, status models.SubmissionStatus, params utils.PaginationParams) ([]models.TaskSubmission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TaskSubmission{}).
		Where("status = ?", status).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	submissions := []models.TaskSubmission{}
	err := query.
		Preload("User").
		Preload("Task").
		Order("created_at ASC").
		Order("id ASC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&submissions).Error
	if err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}

func (r *GormCompletionRepository) ApplyReward(ctx context.Context, userID uint64, task *models.Task, at time.Time) (*models.User, error) {
	var user models.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := insertCompletion(tx, userID, task, at); err != nil {
			return err
		}
		if err := creditTaskPoints(tx, userID, task.Points); err != nil {
			return err
		}
		return tx.First(&user, userID).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormCompletionRepository) CollectApproved(ctx context.Context, userID uint64, task *models.Task, at time.Time) (*models.User, error) {
	var user models.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("user_id = ? AND task_id = ? AND status IN ?", userID, task.ID,
				[]models.SubmissionStatus{models.SubmissionAdminApproved, models.SubmissionCompleted}).
			Delete(&models.TaskSubmission{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoRowsAffected
		}

		if err := insertCompletion(tx, userID, task, at); err != nil {
			return err
		}
		if err := creditTaskPoints(tx, userID, task.Points); err != nil {
			return err
		}
		return tx.First(&user, userID).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormCompletionRepository) ResolvePending(ctx context.Context, userID, taskID uint64, status models.SubmissionStatus, remove bool) error {
	query := r.db.WithContext(ctx).
		Model(&models.TaskSubmission{}).
		Where("user_id = ? AND task_id = ? AND status = ?", userID, taskID, models.SubmissionPending)

	var result *gorm.DB
	if remove {
		result = query.Delete(&models.TaskSubmission{})
	} else {
		result = query.Update("status", status)
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *GormCompletionRepository) ResetDaily(ctx context.Context, at time.Time) (int64, error) {
	var cleared int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("kind = ?", models.TaskTypeDaily).Delete(&models.TaskCompletion{})
		if result.Error != nil {
			return result.Error
		}
		cleared = result.RowsAffected

		return tx.Model(&models.User{}).Where("1 = 1").Update("last_reset_date", at).Error
	})

	return cleared, err
}

func insertCompletion(tx *gorm.DB, userID uint64, task *models.Task, at time.Time) error {
	completion := models.TaskCompletion{
		UserID:      userID,
		TaskID:      task.ID,
		Kind:        task.Type,
		CompletedAt: at,
	}

	result := tx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
			DoNothing: true,
		}).
		Create(&completion)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func creditTaskPoints(tx *gorm.DB, userID uint64, points int64) error {
	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"task_score":  gorm.Expr("task_score + ?", points),
			"total_score": gorm.Expr("total_score + ?", points),
		}).Error
}
