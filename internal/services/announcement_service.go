package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/points-api/internal/logger"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/repository"
)

const announcementTitle = "New Announcement!"

// AnnouncementService manages announcements and tells every user about new ones.
type AnnouncementService struct {
	content  repository.ContentRepository
	users    repository.UserRepository
	notifier Notifier
	log      *slog.Logger
}

// NewAnnouncementService creates a new AnnouncementService
func NewAnnouncementService(content repository.ContentRepository, users repository.UserRepository, notifier Notifier, log *slog.Logger) *AnnouncementService {
	if log == nil {
		log = slog.Default()
	}
	return &AnnouncementService{content: content, users: users, notifier: notifier, log: log}
}

// AnnouncementInput holds announcement fields; nil pointers are left unchanged on update.
type AnnouncementInput struct {
	Title       *string
	Description *string
	Image       *string
	Link        *string
}

func (s *AnnouncementService) List(ctx context.Context) ([]models.Announcement, error) {
	announcements, err := s.content.ListAnnouncements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return announcements, nil
}

func (s *AnnouncementService) Get(ctx context.Context, id uint64) (*models.Announcement, error) {
	a, err := s.content.FindAnnouncement(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("failed to find announcement: %w", err)
	}
	return a, nil
}

// Create stores the announcement and notifies all users in the background.
func (s *AnnouncementService) Create(ctx context.Context, input AnnouncementInput) (*models.Announcement, error) {
	a := &models.Announcement{}
	applyAnnouncement(a, input)
	if a.Title == "" {
		return nil, ErrInvalidAnnouncement
	}

	if err := s.content.CreateAnnouncement(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}

	ids, err := s.users.ListIDs(ctx)
	if err != nil {
		// the announcement is stored; only the fan-out is lost
		logger.FromContext(ctx, s.log).Error("failed to load announcement recipients",
			slog.Uint64("announcement_id", a.ID), slog.Any("error", err))
		return a, nil
	}
	s.notifier.NotifyMany(ctx, ids, announcementTitle, a.Title)
	return a, nil
}

func (s *AnnouncementService) Update(ctx context.Context, id uint64, input AnnouncementInput) (*models.Announcement, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyAnnouncement(a, input)
	if a.Title == "" {
		return nil, ErrInvalidAnnouncement
	}

	if err := s.content.UpdateAnnouncement(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}
	return a, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, id uint64) error {
	if err := s.content.DeleteAnnouncement(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnnouncementNotFound
		}
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	return nil
}

func applyAnnouncement(a *models.Announcement, input AnnouncementInput) {
	if input.Title != nil {
		a.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		a.Description = *input.Description
	}
	if input.Image != nil {
		a.Image = strings.TrimSpace(*input.Image)
	}
	if input.Link != nil {
		a.Link = strings.TrimSpace(*input.Link)
	}
}
