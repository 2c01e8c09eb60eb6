package redislock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/metrics"
)

// nada escuta na porta 1: toda chamada falha na conexão
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func lockErrors(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "clinica_slot_lock_errors_total" {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestWithSlotLock_RedisDownStillBooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	locker := NewRedisSlotLocker(unreachableClient(t), time.Second, zap.NewNop(), m)

	called := false
	err := locker.WithSlotLock(context.Background(), uuid.New(), time.Now(), func(context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, float64(1), lockErrors(t, reg))
}

func TestWithSlotLock_RedisDownKeepsInsertError(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	locker := NewRedisSlotLocker(unreachableClient(t), time.Second, zap.NewNop(), m)

	taken := errors.New("slot taken")
	err := locker.WithSlotLock(context.Background(), uuid.New(), time.Now(), func(context.Context) error {
		return taken
	})

	assert.ErrorIs(t, err, taken)
	assert.NotErrorIs(t, err, ErrLockNotAcquired)
}

func TestNoop(t *testing.T) {
	called := false
	err := Noop{}.WithSlotLock(context.Background(), uuid.New(), time.Now(), func(context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
}

func TestSlotKey(t *testing.T) {
	id := uuid.MustParse("8f14e45f-ceea-467f-a8fa-5b6c2d0f1a11")
	at := time.Unix(1752498000, 0)

	assert.Equal(t, "lock:slot:8f14e45f-ceea-467f-a8fa-5b6c2d0f1a11:1752498000", SlotKey(id, at))
}
