// Package notify writes in-app notifications in the background.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc"

	"github.com/yukikurage/points-api/internal/logger"
	"github.com/yukikurage/points-api/internal/metrics"
	"github.com/yukikurage/points-api/internal/models"
)

const defaultTimeout = 10 * time.Second

// Store persists notifications.
type Store interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) error
}

// Dispatcher is fire-and-forget: failures are logged and counted, never retried.
type Dispatcher struct {
	store   Store
	log     *slog.Logger
	timeout time.Duration
	wg      conc.WaitGroup
}

func NewDispatcher(store Store, timeout time.Duration, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{store: store, log: log, timeout: timeout}
}

// Notify queues one notification for userID.
func (d *Dispatcher) Notify(ctx context.Context, userID uint64, title, body string) {
	d.run(ctx, func(ctx context.Context) error {
		return d.store.Create(ctx, &models.Notification{
			UserID: userID,
			Title:  title,
			Body:   body,
		})
	}, slog.Uint64("user_id", userID), slog.String("title", title))
}

// NotifyMany queues the same notification for every distinct user id.
func (d *Dispatcher) NotifyMany(ctx context.Context, userIDs []uint64, title, body string) {
	ids := lo.Uniq(userIDs)
	if len(ids) == 0 {
		return
	}

	rows := lo.Map(ids, func(id uint64, _ int) models.Notification {
		return models.Notification{UserID: id, Title: title, Body: body}
	})

	d.run(ctx, func(ctx context.Context) error {
		return d.store.CreateBatch(ctx, rows)
	}, slog.Int("recipients", len(rows)), slog.String("title", title))
}

// Wait blocks until every queued notification has finished. A panic inside a
// send is logged here instead of crashing the process.
func (d *Dispatcher) Wait() {
	if recovered := d.wg.WaitAndRecover(); recovered != nil {
		d.log.Error("notification sender panicked", slog.String("panic", recovered.String()))
	}
}

func (d *Dispatcher) run(ctx context.Context, send func(context.Context) error, attrs ...any) {
	// detach from the request so the write survives the response
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx, d.log)

	d.wg.Go(func() {
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		if err := send(ctx); err != nil {
			metrics.RecordNotificationFailure()
			log.Error("failed to store notification", append(attrs, slog.Any("error", err))...)
		}
	})
}
