package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/yukikurage/points-api/internal/logger"
	"github.com/yukikurage/points-api/internal/metrics"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/repository"
)

// referralMilestones are the exact invite counts that earn a milestone notification.
var referralMilestones = []int64{5, 10, 20, 50, 100}

// IsReferralMilestone reports whether count is one of the milestone counts.
func IsReferralMilestone(count int64) bool {
	return lo.Contains(referralMilestones, count)
}

// ReferralResult describes a credited referral.
type ReferralResult struct {
	Inviter     *models.User
	InviteCount int64
	Milestone   bool
}

// ReferralService credits inviters when an invitee redeems their code.
type ReferralService struct {
	users    repository.UserRepository
	invites  repository.InviteRepository
	notifier Notifier
	points   int64
	log      *slog.Logger
}

// NewReferralService creates a new ReferralService
func NewReferralService(users repository.UserRepository, invites repository.InviteRepository, notifier Notifier, points int64, log *slog.Logger) *ReferralService {
	if log == nil {
		log = slog.Default()
	}
	return &ReferralService{
		users:    users,
		invites:  invites,
		notifier: notifier,
		points:   points,
		log:      log,
	}
}

// RewardInviter credits the owner of referCode for inviting inviteeID.
// Each (inviter, invitee) pair is credited at most once.
func (s *ReferralService) RewardInviter(ctx context.Context, inviteeID uint64, referCode string) (*ReferralResult, error) {
	invitee, err := s.users.FindByID(ctx, inviteeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find invitee: %w", err)
	}

	inviter, err := s.users.FindByReferralCode(ctx, referCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviterNotFound
		}
		return nil, fmt.Errorf("failed to find inviter: %w", err)
	}

	if inviter.ID == invitee.ID || inviter.TelegramID == invitee.TelegramID {
		return nil, ErrSelfInvite
	}

	updated, count, err := s.invites.Record(ctx, inviter.ID, invitee.TelegramID, s.points)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyInvited
		}
		return nil, fmt.Errorf("failed to record invite: %w", err)
	}

	metrics.RecordPoints("referral", s.points)
	logger.FromContext(ctx, s.log).Info("referral rewarded",
		slog.Uint64("inviter_id", inviter.ID),
		slog.Uint64("invitee_id", invitee.ID),
		slog.Int64("invite_count", count),
	)

	s.notifier.Notify(ctx, inviter.ID, "Referral Reward",
		fmt.Sprintf("%s joined with your referral link. You earned %d points!", invitee.Username, s.points))

	milestone := IsReferralMilestone(count)
	if milestone {
		s.notifier.Notify(ctx, inviter.ID, "Referral Milestone",
			fmt.Sprintf("Congratulations! You have invited %d friends.", count))
	}

	return &ReferralResult{Inviter: updated, InviteCount: count, Milestone: milestone}, nil
}
