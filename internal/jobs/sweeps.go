package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yukikurage/points-api/internal/config"
	"github.com/yukikurage/points-api/internal/metrics"
	"github.com/yukikurage/points-api/internal/services"
)

// Job names, also used as metric labels.
const (
	JobResetDaily = "reset_daily_tasks"
	JobExpire     = "expire_tasks"
	JobReminder   = "broadcast_reminder"
)

type DailyResetter interface {
	ResetDaily(ctx context.Context, at time.Time) (int64, error)
}

type TaskExpirer interface {
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Broadcaster interface {
	SendToAll(ctx context.Context, message string) ([]services.DeliveryResult, error)
}

// Sweeps holds the periodic maintenance jobs. Every sweep can run any number
// of times with the same outcome.
type Sweeps struct {
	completions DailyResetter
	tasks       TaskExpirer
	broadcast   Broadcaster
	cfg         config.SchedulerConfig
	now         func() time.Time
	log         *slog.Logger
}

func NewSweeps(completions DailyResetter, tasks TaskExpirer, broadcast Broadcaster, cfg config.SchedulerConfig, log *slog.Logger) *Sweeps {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeps{
		completions: completions,
		tasks:       tasks,
		broadcast:   broadcast,
		cfg:         cfg,
		now:         time.Now,
		log:         log,
	}
}

// ResetDailyTasks clears DAILY completion records so those tasks can be done again.
// Scores and ONCE records are left alone.
func (s *Sweeps) ResetDailyTasks(ctx context.Context) error {
	cleared, err := s.completions.ResetDaily(ctx, s.now())
	metrics.RecordJob(JobResetDaily, err)
	if err != nil {
		return fmt.Errorf("failed to reset daily tasks: %w", err)
	}

	s.log.Info("daily tasks reset", slog.Int64("cleared", cleared))
	return nil
}

// ExpireTasks deletes tasks older than the configured TTL. A TTL of zero disables it.
func (s *Sweeps) ExpireTasks(ctx context.Context) error {
	if s.cfg.TaskTTLDays <= 0 {
		return nil
	}

	cutoff := s.now().AddDate(0, 0, -s.cfg.TaskTTLDays)
	deleted, err := s.tasks.DeleteCreatedBefore(ctx, cutoff)
	metrics.RecordJob(JobExpire, err)
	if err != nil {
		return fmt.Errorf("failed to expire tasks: %w", err)
	}

	if deleted > 0 {
		s.log.Info("expired tasks deleted", slog.Int64("deleted", deleted), slog.Time("cutoff", cutoff))
	}
	return nil
}

// BroadcastReminder sends the configured reminder to every bot member.
func (s *Sweeps) BroadcastReminder(ctx context.Context) error {
	message := strings.TrimSpace(s.cfg.ReminderMessage)
	if message == "" {
		return nil
	}

	results, err := s.broadcast.SendToAll(ctx, message)
	metrics.RecordJob(JobReminder, err)
	if err != nil {
		return fmt.Errorf("failed to broadcast reminder: %w", err)
	}

	summary := services.Summarize(results)
	s.log.Info("reminder broadcast",
		slog.Int("total", summary.Total),
		slog.Int("sent", summary.Sent),
		slog.Int("failed", len(summary.Failed)),
	)
	return nil
}
