package ignite

import (
	"context"
	"testing"
	"time"

	"github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/options"
	"github.com/stretchr/testify/require"
)

func newTestInstance(t *testing.T) *Instance {
	t.Helper()
	ctx := context.Background()
	inst, err := NewInstance(ctx, "ignite-test", options.WithDataDir(t.TempDir()))
	require.NoError(t, err)
	return inst
}

func TestInstanceSetGetDelete(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t)
	defer inst.Close(ctx)

	require.NoError(t, inst.Set(ctx, "key1", []byte("value1")))

	value, ok, err := inst.Get(ctx, "key1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("value1"), value)

	require.NoError(t, inst.Delete(ctx, "key1"))
	_, ok, err = inst.Get(ctx, "key1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInstanceSetXReturnsValidationError(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t)
	defer inst.Close(ctx)

	err := inst.SetX(ctx, "key1", []byte("value1"), time.Minute)
	require.Error(t, err)
	require.True(t, errors.IsValidationError(err))
}

func TestInstanceMergeReturnsEmptyWhenNothingToMerge(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t)
	defer inst.Close(ctx)

	merged, err := inst.Merge(ctx)
	require.NoError(t, err)
	require.Empty(t, merged)
}
