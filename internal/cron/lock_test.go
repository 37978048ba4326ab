package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRedis struct {
	values map[string]string
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func TestRedisLockIsExclusiveAndOwnerScoped(t *testing.T) {
	store := &memoryRedis{values: map[string]string{}}
	a, err := NewRedisLock(store, "qw:lock:cron", time.Minute)
	require.NoError(t, err)
	b, err := NewRedisLock(store, "qw:lock:cron", time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Release(ctx))
	assert.Contains(t, store.values, "qw:lock:cron")

	require.NoError(t, a.Release(ctx))
	assert.NotContains(t, store.values, "qw:lock:cron")

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRedisLockValidates(t *testing.T) {
	_, err := NewRedisLock(nil, "k", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisLock(&memoryRedis{}, "", time.Minute)
	assert.Error(t, err)
}

func TestLocalLock(t *testing.T) {
	var l LocalLock
	ok, _ := l.Acquire(context.Background())
	assert.True(t, ok)
	ok, _ = l.Acquire(context.Background())
	assert.False(t, ok)
	require.NoError(t, l.Release(context.Background()))
	ok, _ = l.Acquire(context.Background())
	assert.True(t, ok)
}
