package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *GormUserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return r.findOne(ctx, "telegram_id = ?", telegramID)
}

func (r *GormUserRepository) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	return r.findOne(ctx, "referral_code = ?", code)
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := []models.User{}
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *GormUserRepository) ListRecipients(ctx context.Context, ids []uint64) ([]models.User, error) {
	query := r.db.WithContext(ctx).Where("telegram_id <> 0")
	if ids != nil {
		if len(ids) == 0 {
			return []models.User{}, nil
		}
		query = query.Where("id IN ?", ids)
	}

	users := []models.User{}
	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) ListIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormUserRepository) UpdateFields(ctx context.Context, id uint64, fields map[string]any) (*models.User, error) {
	var user models.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.TaskSubmission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.TaskCompletion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("inviter_id = ?", id).Delete(&models.Invite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormUserRepository) Leaderboard(ctx context.Context, board Board, limit int) ([]LeaderboardEntry, error) {
	column, err := board.column()
	if err != nil {
		return nil, err
	}

	var users []models.User
	query := r.db.WithContext(ctx).
		Select("id", "username", "task_score", "invite_score", "total_score").
		Order(column + " DESC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = toEntry(u, int64(i+1))
	}
	return entries, nil
}

// Rank returns the caller's position under the same ordering as Leaderboard
func (r *GormUserRepository) Rank(ctx context.Context, board Board, userID uint64) (*LeaderboardEntry, error) {
	column, err := board.column()
	if err != nil {
		return nil, err
	}

	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	score := user.TaskScore
	if board == BoardOverall {
		score = user.TotalScore
	}

	var ahead int64
	err = r.db.WithContext(ctx).Model(&models.User{}).
		Where(column+" > ? OR ("+column+" = ? AND id < ?)", score, score, user.ID).
		Count(&ahead).Error
	if err != nil {
		return nil, err
	}

	entry := toEntry(*user, ahead+1)
	return &entry, nil
}

func (r *GormUserRepository) Ranking(ctx context.Context) ([]LeaderboardEntry, error) {
	return r.Leaderboard(ctx, BoardOverall, 0)
}

func (r *GormUserRepository) ResetTaskScores(ctx context.Context) (int64, error) {
	var affected int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.TaskCompletion{}).Error; err != nil {
			return err
		}

		result := tx.Model(&models.User{}).Where("1 = 1").Updates(map[string]any{
			"task_score":  0,
			"total_score": gorm.Expr("invite_score"),
		})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})

	return affected, err
}

func (b Board) column() (string, error) {
	switch b {
	case BoardTask, BoardOverall:
		return string(b), nil
	default:
		return "", fmt.Errorf("unknown leaderboard %q", b)
	}
}

func toEntry(u models.User, rank int64) LeaderboardEntry {
	return LeaderboardEntry{
		Rank:        rank,
		UserID:      u.ID,
		Username:    u.Username,
		TaskScore:   u.TaskScore,
		InviteScore: u.InviteScore,
		TotalScore:  u.TotalScore,
	}
}
