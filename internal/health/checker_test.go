package health

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type checkFunc func(ctx context.Context) error

func (f checkFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestChecker_AggregatesResults(t *testing.T) {
	checker := NewChecker(nil)
	checker.AddCheck("ok", checkFunc(func(context.Context) error { return nil }))
	checker.AddCheck("broken", checkFunc(func(context.Context) error { return errors.New("down") }))
	checker.AddCheck("", checkFunc(func(context.Context) error { return nil }))

	results, healthy := checker.Check(context.Background())

	assert.False(t, healthy)
	assert.Equal(t, map[string]string{"ok": "OK", "broken": "down"}, results)
}

func TestDBChecker(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	assert.NoError(t, NewDBChecker(db).HealthCheck(context.Background()))
	assert.Error(t, NewDBChecker(nil).HealthCheck(context.Background()))
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, NewRedisChecker(client).HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, NewRedisChecker(client).HealthCheck(context.Background()))
}

func TestTelegramChecker_Uninitialized(t *testing.T) {
	assert.Error(t, NewTelegramChecker(nil).HealthCheck(context.Background()))
}
