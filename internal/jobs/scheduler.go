package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yukikurage/points-api/internal/config"
)

// jobTimeout bounds a single sweep run.
const jobTimeout = 10 * time.Minute

type Scheduler interface {
	RegisterTasks() error
	Run()
	Shutdown(ctx context.Context)
}

type scheduler struct {
	cron   *cron.Cron
	sweeps *Sweeps
	cfg    config.SchedulerConfig
	log    *slog.Logger
}

// NewScheduler builds a cron scheduler that fires in cfg.Timezone. Runs of the
// same job never overlap and a panicking job does not stop the others.
func NewScheduler(sweeps *Sweeps, cfg config.SchedulerConfig, log *slog.Logger) (Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	cronLog := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	return &scheduler{cron: c, sweeps: sweeps, cfg: cfg, log: log}, nil
}

func (s *scheduler) RegisterTasks() error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{JobResetDaily, s.cfg.DailyResetCron, s.sweeps.ResetDailyTasks},
		{JobExpire, s.cfg.ExpiryCron, s.sweeps.ExpireTasks},
		{JobReminder, s.cfg.ReminderCron, s.sweeps.BroadcastReminder},
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(job.spec, s.wrap(job.name, job.run)); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.name, err)
		}
		s.log.Info("scheduler: registered job", slog.String("job", job.name), slog.String("spec", job.spec))
	}
	return nil
}

func (s *scheduler) wrap(name string, run func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := run(ctx); err != nil {
			s.log.Error("scheduler: job failed", slog.String("job", name), slog.Any("error", err))
			return
		}
		s.log.Debug("scheduler: job finished", slog.String("job", name), slog.Duration("duration", time.Since(start)))
	}
}

func (s *scheduler) Run() {
	s.log.Info("scheduler: starting", slog.String("timezone", s.cfg.Timezone))
	s.cron.Start()
}

// Shutdown stops scheduling and waits for running jobs until ctx is done.
func (s *scheduler) Shutdown(ctx context.Context) {
	s.log.Info("scheduler: shutting down")

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler: jobs still running at shutdown")
	}
}

// cronLogger routes cron's own logging into slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
