package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/metrics"
)

var ErrLockNotAcquired = errors.New("slot lock not acquired")

// Locker serializa tentativas de reserva do mesmo horário. O índice único no
// banco continua sendo a garantia; o lock só corta a corrida mais cedo.
type Locker interface {
	WithSlotLock(ctx context.Context, professionalID uuid.UUID, at time.Time, fn func(ctx context.Context) error) error
}

type redisSlotLocker struct {
	client  *redis.Client
	ttl     time.Duration
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewRedisSlotLocker(client *redis.Client, ttl time.Duration, log *zap.Logger, m *metrics.Metrics) Locker {
	return &redisSlotLocker{client: client, ttl: ttl, log: log, metrics: m}
}

func SlotKey(professionalID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("lock:slot:%s:%d", professionalID, at.Unix())
}

func (l *redisSlotLocker) WithSlotLock(ctx context.Context, professionalID uuid.UUID, at time.Time, fn func(ctx context.Context) error) error {
	key := SlotKey(professionalID, at)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		// Redis fora: segue sem lock, o índice único decide a corrida
		l.log.Warn("slot lock unavailable, relying on unique index",
			zap.String("key", key),
			zap.Error(err),
		)
		l.metrics.SlotLockErrors.Inc()
		return fn(ctx)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(context.Background(), key, token)
	}()

	lockCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(lockCtx)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisSlotLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release slot lock: %w", err)
	}
	return nil
}

// Noop é usado quando não há Redis configurado.
type Noop struct{}

func (Noop) WithSlotLock(ctx context.Context, _ uuid.UUID, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
