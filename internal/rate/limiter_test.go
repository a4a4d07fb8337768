package rate

import (
	"context"
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
	l := NewMemoryLimiter(gocache.New(time.Minute, time.Minute), "login:", 3, time.Minute).
		WithClock(func() time.Time { return now })

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, res.Allowed)
		require.Equal(t, int64(3-i), res.Remaining)
	}

	res, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Equal(t, 55*time.Second, res.RetryAfter)

	// otra clave no comparte contador
	res, _ = l.Allow(ctx, "10.0.0.2")
	require.True(t, res.Allowed)

	// ventana siguiente
	now = now.Add(time.Minute)
	res, _ = l.Allow(ctx, "10.0.0.1")
	require.True(t, res.Allowed)
	require.Equal(t, int64(1), res.CurrentHits)
}

func TestBuildResult(t *testing.T) {
	r := buildResult(5, 5, 10*time.Second, time.Minute)
	require.True(t, r.Allowed)
	require.Zero(t, r.Remaining)

	r = buildResult(6, 5, -1, time.Minute)
	require.False(t, r.Allowed)
	require.Equal(t, time.Minute, r.RetryAfter)
}

func TestWindowKey(t *testing.T) {
	at := time.Unix(125, 0).UTC()
	require.Equal(t, "rl:a_b:120", windowKey("rl:", "a b", at, time.Minute))
}
