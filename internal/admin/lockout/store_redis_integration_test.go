//go:build integration

package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"orghub/pkg/testutil/containers"
)

func TestRedisStoreLockoutCycle(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	store := NewRedisStore(rc.Client)

	const key = "admin@acme.test"

	for want := 1; want <= 3; want++ {
		count, err := store.RecordFailure(ctx, key, time.Minute)
		require.NoError(t, err)
		require.Equal(t, want, count)
	}

	locked, _, err := store.IsLocked(ctx, key)
	require.NoError(t, err)
	require.False(t, locked)

	require.NoError(t, store.Lock(ctx, key, time.Minute))

	locked, retryAfter, err := store.IsLocked(ctx, key)
	require.NoError(t, err)
	require.True(t, locked)
	require.Greater(t, retryAfter, 30*time.Second)

	require.NoError(t, store.Clear(ctx, key))

	locked, _, err = store.IsLocked(ctx, key)
	require.NoError(t, err)
	require.False(t, locked)

	count, err := store.RecordFailure(ctx, key, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRedisStoreFailureWindowExpires(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	store := NewRedisStore(rc.Client)

	const key = "window@acme.test"

	count, err := store.RecordFailure(ctx, key, 500*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.Eventually(t, func() bool {
		count, err := store.RecordFailure(ctx, key, 500*time.Millisecond)
		return err == nil && count == 1
	}, 5*time.Second, 200*time.Millisecond)
}
