// Package lock provides short-lived Redis locks used to serialize work on a single key.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked indicates that another holder owns the lock.
var ErrLocked = errors.New("lock is held, try again later")

// releaseScript deletes the key only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker acquires SETNX locks with a TTL. A nil client disables locking.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func New(client *redis.Client, ttl time.Duration, log *slog.Logger) *Locker {
	if log == nil {
		log = slog.Default()
	}
	return &Locker{client: client, ttl: ttl, log: log}
}

// Acquire takes the lock for key and returns the func that releases it.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	if l == nil || l.client == nil {
		return func() {}, nil
	}

	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !acquired {
		return nil, ErrLocked
	}

	release := func() {
		// the request context may already be cancelled
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.log.Error("failed to release lock", slog.String("key", key), slog.Any("error", err))
		}
	}
	return release, nil
}

// CompletionKey is the lock key guarding one (user, task) pair.
func CompletionKey(userID, taskID uint64) string {
	return fmt.Sprintf("completion:lock:%d:%d", userID, taskID)
}
