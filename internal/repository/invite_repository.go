package repository

import (
	"context"

	"github.com/yukikurage/points-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInviteRepository is a GORM implementation of InviteRepository
type GormInviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &GormInviteRepository{db: db}
}

func (r *GormInviteRepository) Record(ctx context.Context, inviterID uint64, inviteeTelegramID int64, points int64) (*models.User, int64, error) {
	var (
		inviter models.User
		count   int64
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Redemptions for one inviter are serialized so each sees a distinct count.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inviter, inviterID).Error; err != nil {
			return err
		}

		invite := models.Invite{
			InviterID:         inviterID,
			InviteeTelegramID: inviteeTelegramID,
		}
		result := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "inviter_id"}, {Name: "invitee_telegram_id"}},
				DoNothing: true,
			}).
			Create(&invite)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDuplicate
		}

		err := tx.Model(&models.User{}).
			Where("id = ?", inviterID).
			Updates(map[string]any{
				"invite_score": gorm.Expr("invite_score + ?", points),
				"total_score":  gorm.Expr("total_score + ?", points),
			}).Error
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Invite{}).Where("inviter_id = ?", inviterID).Count(&count).Error; err != nil {
			return err
		}
		return tx.First(&inviter, inviterID).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return &inviter, count, nil
}

func (r *GormInviteRepository) ListInvitees(ctx context.Context, inviterID uint64) ([]int64, error) {
	ids := []int64{}
	err := r.db.WithContext(ctx).Model(&models.Invite{}).
		Where("inviter_id = ?", inviterID).
		Order("id ASC").
		Pluck("invitee_telegram_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
