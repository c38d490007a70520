package repository

import (
	"context"

	"github.com/yukikurage/points-api/internal/models"
	"gorm.io/gorm"
)

// GormAdminRepository is a GORM implementation of AdminRepository
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &GormAdminRepository{db: db}
}

func (r *GormAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *GormAdminRepository) FindByID(ctx context.Context, id uint64) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *GormAdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}
