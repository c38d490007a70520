package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"

	"github.com/yukikurage/points-api/internal/logger"
	"github.com/yukikurage/points-api/internal/metrics"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/repository"
)

// Messenger delivers a bot message to a Telegram user.
type Messenger interface {
	Send(ctx context.Context, telegramID int64, text string) error
}

// DeliveryResult is the outcome of one bot message.
type DeliveryResult struct {
	UserID     uint64 `json:"user_id"`
	TelegramID int64  `json:"telegram_id"`
	Err        error  `json:"-"`
}

// OK reports whether the message was delivered.
func (r DeliveryResult) OK() bool { return r.Err == nil }

// BroadcastSummary aggregates a fan-out for the admin.
type BroadcastSummary struct {
	Total  int      `json:"total"`
	Sent   int      `json:"sent"`
	Failed []uint64 `json:"failed"`
}

// Summarize counts delivered messages and lists the users that failed.
func Summarize(results []DeliveryResult) BroadcastSummary {
	failed := lo.FilterMap(results, func(r DeliveryResult, _ int) (uint64, bool) {
		return r.UserID, !r.OK()
	})
	return BroadcastSummary{
		Total:  len(results),
		Sent:   len(results) - len(failed),
		Failed: failed,
	}
}

// BroadcastService sends bot messages with bounded concurrency.
type BroadcastService struct {
	users       repository.UserRepository
	messenger   Messenger
	concurrency int
	log         *slog.Logger
}

// NewBroadcastService creates a new BroadcastService
func NewBroadcastService(users repository.UserRepository, messenger Messenger, concurrency int, log *slog.Logger) *BroadcastService {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &BroadcastService{users: users, messenger: messenger, concurrency: concurrency, log: log}
}

// Members returns every user reachable by the bot.
func (s *BroadcastService) Members(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListRecipients(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list bot members: %w", err)
	}
	return users, nil
}

// SendToUsers messages the given users. Every requested id gets a result, including
// ids that do not exist or have no Telegram account.
func (s *BroadcastService) SendToUsers(ctx context.Context, userIDs []uint64, message string) ([]DeliveryResult, error) {
	ids := lo.Uniq(userIDs)
	if len(ids) == 0 {
		return nil, ErrNoRecipients
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	recipients, err := s.users.ListRecipients(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipients: %w", err)
	}

	found := lo.SliceToMap(recipients, func(u models.User) (uint64, bool) { return u.ID, true })
	missing := lo.FilterMap(ids, func(id uint64, _ int) (DeliveryResult, bool) {
		return DeliveryResult{UserID: id, Err: ErrRecipientUnavailable}, !found[id]
	})

	results := append(s.fanOut(ctx, recipients, message), missing...)
	sortByUser(results)
	return results, nil
}

// SendToAll messages every user with a Telegram account.
func (s *BroadcastService) SendToAll(ctx context.Context, message string) ([]DeliveryResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	recipients, err := s.users.ListRecipients(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipients: %w", err)
	}
	return s.fanOut(ctx, recipients, message), nil
}

func (s *BroadcastService) fanOut(ctx context.Context, recipients []models.User, message string) []DeliveryResult {
	if len(recipients) == 0 {
		return []DeliveryResult{}
	}

	log := logger.FromContext(ctx, s.log)
	p := pool.NewWithResults[DeliveryResult]().WithMaxGoroutines(s.concurrency)

	for _, u := range recipients {
		u := u
		p.Go(func() DeliveryResult {
			result := DeliveryResult{UserID: u.ID, TelegramID: u.TelegramID}
			if err := ctx.Err(); err != nil {
				result.Err = err
			} else {
				result.Err = s.messenger.Send(ctx, u.TelegramID, message)
			}

			metrics.RecordDelivery(result.OK())
			if result.Err != nil {
				log.Warn("bot message not delivered",
					slog.Uint64("user_id", u.ID),
					slog.Any("error", result.Err),
				)
			}
			return result
		})
	}

	results := p.Wait()
	sortByUser(results)
	return results
}

func sortByUser(results []DeliveryResult) {
	slices.SortFunc(results, func(a, b DeliveryResult) int {
		return cmp.Compare(a.UserID, b.UserID)
	})
}
