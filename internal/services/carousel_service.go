package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/repository"
)

// CarouselService manages the images shown on the home carousel.
type CarouselService struct {
	content repository.ContentRepository
}

func NewCarouselService(content repository.ContentRepository) *CarouselService {
	return &CarouselService{content: content}
}

func (s *CarouselService) List(ctx context.Context) ([]models.CarouselImage, error) {
	images, err := s.content.ListCarouselImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list carousel images: %w", err)
	}
	return images, nil
}

func (s *CarouselService) Add(ctx context.Context, link string) (*models.CarouselImage, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, ErrInvalidCarouselLink
	}

	img := &models.CarouselImage{Link: link}
	if err := s.content.CreateCarouselImage(ctx, img); err != nil {
		return nil, fmt.Errorf("failed to add carousel image: %w", err)
	}
	return img, nil
}

func (s *CarouselService) Remove(ctx context.Context, id uint64) error {
	if err := s.content.DeleteCarouselImage(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCarouselImageNotFound
		}
		return fmt.Errorf("failed to remove carousel image: %w", err)
	}
	return nil
}
