package llm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"
)

func newTestPool(t *testing.T, keys ...string) (*CredentialPool, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	return NewCredentialPool(keys, DefaultPoolConfig(), clock, zaptest.NewLogger(t)), clock
}

func TestNewCredentialPool_Normalizes(t *testing.T) {
	pool, _ := newTestPool(t, " k1 ", "", "k2", "k1")
	assert.Equal(t, []string{"k1", "k2"}, pool.IDs())
	assert.Equal(t, 2, pool.Len())

	for _, s := range pool.Snapshot() {
		assert.True(t, s.NextAvailableAt.IsZero())
		assert.Zero(t, s.ConsecutiveFailures)
	}
}

func TestCredentialPool_SelectFirstFit(t *testing.T) {
	pool, clock := newTestPool(t, "k1", "k2", "k3")
	ctx := context.Background()

	id, err := pool.Select(ctx)
	require.NoError(t, err)
	assert.Equal(t, "k1", id)

	// k1 冷却中，k2 仍可用，按配置顺序选中 k2 且不等待
	pool.MarkPenalized("k1")
	id, err = pool.Select(ctx)
	require.NoError(t, err)
	assert.Equal(t, "k2", id)
	assert.Empty(t, clock.Sleeps())
}

func TestCredentialPool_SelectWaitsForEarliest(t *testing.T) {
	pool, clock := newTestPool(t, "k1", "k2")

	pool.MarkPenalized("k2") // 30s
	pool.MarkPenalized("k1")
	pool.MarkPenalized("k1") // 60s

	id, err := pool.Select(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "k2", id)
	assert.Equal(t, []time.Duration{30 * time.Second}, clock.Sleeps())
}

func TestCredentialPool_SelectTieBreaksByOrder(t *testing.T) {
	pool, clock := newTestPool(t, "k1", "k2")
	pool.MarkPenalized("k2")
	pool.MarkPenalized("k1")

	id, err := pool.Select(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "k1", id)
	assert.Equal(t, []time.Duration{30 * time.Second}, clock.Sleeps())
}

func TestCredentialPool_SelectEmpty(t *testing.T) {
	pool, clock := newTestPool(t)
	id, err := pool.Select(context.Background())
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, clock.Sleeps())
}

func TestCredentialPool_SelectCanceled(t *testing.T) {
	pool, _ := newTestPool(t, "k1")
	pool.MarkPenalized("k1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pool.Select(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCredentialPool_MarkSuccessResets(t *testing.T) {
	pool, clock := newTestPool(t, "k1")
	pool.MarkPenalized("k1")
	pool.MarkPenalized("k1")

	clock.Advance(5 * time.Second)
	pool.MarkSuccess("k1")

	s := pool.Snapshot()[0]
	assert.Zero(t, s.ConsecutiveFailures)
	assert.True(t, s.NextAvailableAt.IsZero())
	assert.Equal(t, clock.Now(), pool.LastSuccessAt())
	assert.Zero(t, pool.Cooling())
}

func TestCredentialPool_LazyUnknownCredential(t *testing.T) {
	pool, _ := newTestPool(t, "k1")
	cooldown := pool.MarkPenalized("other")

	assert.Equal(t, DefaultCooldownBase, cooldown)
	assert.Equal(t, []string{"k1", "other"}, pool.IDs())
	assert.Equal(t, 1, pool.Cooling())
}

func TestCredentialPool_WaitMinDelay(t *testing.T) {
	pool, clock := newTestPool(t, "k1")
	ctx := context.Background()

	// 尚未有成功请求时不等待
	require.NoError(t, pool.WaitMinDelay(ctx))
	assert.Empty(t, clock.Sleeps())

	pool.MarkSuccess("k1")
	clock.Advance(time.Second)
	require.NoError(t, pool.WaitMinDelay(ctx))
	assert.Equal(t, []time.Duration{DefaultMinInterval - time.Second}, clock.Sleeps())

	// 间隔已满足
	clock.Advance(DefaultMinInterval)
	assert.Zero(t, pool.MinDelay())
}

func TestCooldown(t *testing.T) {
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, 0},
		{1, 30 * time.Second},
		{2, time.Minute},
		{19, 570 * time.Second},
		{20, 10 * time.Minute},
		{21, 10 * time.Minute},
		{1 << 40, 10 * time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Cooldown(DefaultCooldownBase, DefaultCooldownCap, tt.failures), "failures=%d", tt.failures)
	}
}

func TestProperty_PenaltyIsLinearAndCapped(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := time.Duration(rapid.IntRange(1, 120).Draw(rt, "base_s")) * time.Second
		limit := time.Duration(rapid.IntRange(1, 60).Draw(rt, "cap_m")) * time.Minute
		n := rapid.IntRange(1, 40).Draw(rt, "penalties")

		clock := newFakeClock()
		pool := NewCredentialPool([]string{"k"}, PoolConfig{CooldownBase: base, CooldownCap: limit}, clock, nil)

		var prev int
		for i := 1; i <= n; i++ {
			pool.MarkPenalized("k")
			s := pool.Snapshot()[0]
			if s.ConsecutiveFailures < prev {
				rt.Fatalf("failures decreased: %d -> %d", prev, s.ConsecutiveFailures)
			}
			prev = s.ConsecutiveFailures

			want := min(limit, base*time.Duration(i))
			if got := s.NextAvailableAt.Sub(clock.Now()); got != want {
				rt.Fatalf("penalty %d: cooldown %v, want %v", i, got, want)
			}
		}

		pool.MarkSuccess("k")
		if s := pool.Snapshot()[0]; s.ConsecutiveFailures != 0 || !s.NextAvailableAt.IsZero() {
			rt.Fatalf("state not reset after success: %+v", s)
		}
	})
}

func TestCredentialPool_ConcurrentAccess(t *testing.T) {
	pool, _ := newTestPool(t, "k1", "k2", "k3")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := pool.Select(context.Background())
			if err != nil {
				return
			}
			if i%2 == 0 {
				pool.MarkPenalized(id)
			} else {
				pool.MarkSuccess(id)
			}
			_ = pool.Snapshot()
			_ = pool.WaitMinDelay(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, pool.Len())
	for _, s := range pool.Snapshot() {
		assert.GreaterOrEqual(t, s.ConsecutiveFailures, 0)
	}
}
