package repository

import (
	"context"

	"github.com/yukikurage/points-api/internal/models"
	"gorm.io/gorm"
)

// GormContentRepository is a GORM implementation of ContentRepository
type GormContentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &GormContentRepository{db: db}
}

func (r *GormContentRepository) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *GormContentRepository) FindAnnouncement(ctx context.Context, id uint64) (*models.Announcement, error) {
	var a models.Announcement
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormContentRepository) ListAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	announcements := []models.Announcement{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}

func (r *GormContentRepository) UpdateAnnouncement(ctx context.Context, a *models.Announcement) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *GormContentRepository) DeleteAnnouncement(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, &models.Announcement{}, id)
}

func (r *GormContentRepository) CreateCarouselImage(ctx context.Context, img *models.CarouselImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *GormContentRepository) ListCarouselImages(ctx context.Context) ([]models.CarouselImage, error) {
	images := []models.CarouselImage{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (r *GormContentRepository) DeleteCarouselImage(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, &models.CarouselImage{}, id)
}

func deleteByID(ctx context.Context, db *gorm.DB, model any, id uint64) error {
	result := db.WithContext(ctx).Delete(model, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
