// Package verify decides whether a user actually performed an auto-verified task.
package verify

import (
	"context"
	"log/slog"
	"time"

	"github.com/yukikurage/points-api/internal/metrics"
	"github.com/yukikurage/points-api/internal/models"
)

// Verifier checks one platform. Upstream failures are reported as false, never as errors.
type Verifier interface {
	Verify(ctx context.Context, user *models.User, task *models.Task) bool
}

// Dispatcher routes a task to the verifier registered for its platform.
type Dispatcher struct {
	verifiers map[models.Platform]Verifier
	timeout   time.Duration
	log       *slog.Logger
}

func NewDispatcher(timeout time.Duration, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		verifiers: make(map[models.Platform]Verifier),
		timeout:   timeout,
		log:       log,
	}
}

// Register binds v to platform, replacing any previous verifier.
func (d *Dispatcher) Register(platform models.Platform, v Verifier) *Dispatcher {
	d.verifiers[platform] = v
	return d
}

// Verify runs the platform verifier under the configured timeout.
// Platforms without a verifier never verify.
func (d *Dispatcher) Verify(ctx context.Context, user *models.User, task *models.Task) bool {
	v, ok := d.verifiers[task.Platform]
	if !ok {
		d.log.Warn("no verifier registered",
			slog.String("platform", string(task.Platform)),
			slog.Uint64("task_id", task.ID),
		)
		return false
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	verified := v.Verify(ctx, user, task)
	metrics.RecordVerification(string(task.Platform), verified, time.Since(start))

	d.log.Info("task verification finished",
		slog.Uint64("user_id", user.ID),
		slog.Uint64("task_id", task.ID),
		slog.String("platform", string(task.Platform)),
		slog.Bool("verified", verified),
		slog.Duration("took", time.Since(start)),
	)
	return verified
}
