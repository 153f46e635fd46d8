package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)

	// Returned bytes are a copy.
	got[0] = 'x'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), again)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 14, 19, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "long", []byte("2"), time.Hour))
	require.NoError(t, m.Set(ctx, "forever", []byte("3"), 0))

	now = now.Add(2 * time.Minute)
	_, err := m.Get(ctx, "short")
	require.ErrorIs(t, err, ErrMiss)

	_, err = m.Get(ctx, "long")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	require.Equal(t, 1, m.Sweep())
	require.Equal(t, 1, m.Len())

	got, err := m.Get(ctx, "forever")
	require.NoError(t, err)
	require.Equal(t, []byte("3"), got)
}

func TestMemoryExpiredReadKeepsConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 2, 14, 19, 0, 0, 0, time.UTC)
	now := start
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("stale"), time.Minute))
	now = start.Add(2 * time.Minute)

	// A writer stores a fresh value after Get has seen the stale entry but
	// before it takes the write lock.
	calls := 0
	m.now = func() time.Time {
		calls++
		if calls == 1 {
			require.NoError(t, m.Set(ctx, "k", []byte("fresh"), time.Hour))
		}
		return now
	}

	_, err := m.Get(ctx, "k")
	require.ErrorIs(t, err, ErrMiss)

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("fresh"), got)
}

func TestMemorySweeperStops(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunSweeper(ctx, 5*time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	require.Equal(t, "datenight:google|abc", NewRedis(client, "").Key("google|abc"))
	require.Equal(t, "custom:k", NewRedis(client, "custom").Key("k"))
}

func TestRedisUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, RedisOptions{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	require.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	store := NewRedis(client, "")

	_, err = store.Get(ctx, "k")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrMiss))
	require.Error(t, store.Set(ctx, "k", []byte("v"), time.Minute))
}
