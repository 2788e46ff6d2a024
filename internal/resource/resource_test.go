package resource

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/pool"
)

func discardLogger() hclog.Logger {
	return hclog.NewNullLogger()
}

func TestAcquireEntersReady(t *testing.T) {
	r := New(discardLogger(), newFakePool, nil)
	require.NoError(t, r.Acquire(context.Background()))
	assert.True(t, r.Ready())
}

func TestReleaseClearsReady(t *testing.T) {
	r := New(discardLogger(), newFakePool, nil)
	require.NoError(t, r.Acquire(context.Background()))
	require.NoError(t, r.Release(context.Background()))
	assert.False(t, r.Ready())
}

func TestEnterWaitsForReady(t *testing.T) {
	r := New(discardLogger(), newFakePool, nil)

	entered := make(chan pool.WorkerPool, 1)
	go func() {
		leave, p, err := r.Enter(context.Background())
		if err == nil {
			defer leave()
		}
		entered <- p
	}()

	select {
	case <-entered:
		t.Fatal("Enter should block while the resource has no pool")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, r.Acquire(context.Background()))

	select {
	case p := <-entered:
		assert.NotNil(t, p, "the waiting Enter should observe the acquired pool")
	case <-time.After(time.Second):
		t.Fatal("Enter never woke up after Acquire")
	}
}

func TestEnterReturnsErrorWhenContextCancelled(t *testing.T) {
	r := New(discardLogger(), newFakePool, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, p, err := r.Enter(ctx)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestProcessFailureTriggersRenewOnLastLeave exercises the crash
// recovery path: Process observes a Figmentate error, clears ready, and
// the last leave of the scope still holding it triggers Renew, rebuilding
// the pool from a fresh one.
func TestProcessFailureTriggersRenewOnLastLeave(t *testing.T) {
	var built []*fakePool
	factory := func() pool.WorkerPool {
		p := &fakePool{failFigmentate: len(built) == 0}
		built = append(built, p)
		return p
	}

	r := New(discardLogger(), factory, nil)
	require.NoError(t, r.Acquire(context.Background()))

	leave, p, err := r.Enter(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)

	batch := []*figmodel.FigmentContext{{Entry: &figmodel.SceneEntry{}}}
	var gotErr error
	r.Process(context.Background(), p, batch, func(i int, fc *figmodel.FigmentContext, err error) {
		gotErr = err
	})
	assert.Error(t, gotErr)
	assert.False(t, r.Ready(), "ready should be cleared immediately after a Process failure")

	leave()
	assert.True(t, r.Ready(), "the last leave of the scope should have triggered a renew")
	assert.Len(t, built, 2, "renew should have built a second pool")
}

func TestEnterDoesNotRenewWhileOtherUsersStillInScope(t *testing.T) {
	var built []*fakePool
	factory := func() pool.WorkerPool {
		p := &fakePool{failFigmentate: len(built) == 0}
		built = append(built, p)
		return p
	}

	r := New(discardLogger(), factory, nil)
	require.NoError(t, r.Acquire(context.Background()))

	leaveA, p, err := r.Enter(context.Background())
	require.NoError(t, err)
	leaveB, _, err := r.Enter(context.Background())
	require.NoError(t, err)

	batch := []*figmodel.FigmentContext{{Entry: &figmodel.SceneEntry{}}}
	r.Process(context.Background(), p, batch, func(int, *figmodel.FigmentContext, error) {})

	leaveA()
	assert.False(t, r.Ready(), "renew should wait for every scope user to leave")
	assert.Len(t, built, 1)

	leaveB()
	assert.True(t, r.Ready())
	assert.Len(t, built, 2)
}

func TestProcessSuccessDeliversEachResult(t *testing.T) {
	r := New(discardLogger(), newFakePool, nil)
	require.NoError(t, r.Acquire(context.Background()))

	leave, p, err := r.Enter(context.Background())
	require.NoError(t, err)
	defer leave()

	batch := []*figmodel.FigmentContext{
		{Entry: &figmodel.SceneEntry{}},
		{Entry: &figmodel.SceneEntry{}},
	}

	delivered := map[int]error{}
	r.Process(context.Background(), p, batch, func(i int, fc *figmodel.FigmentContext, err error) {
		delivered[i] = err
	})

	assert.Len(t, delivered, 2)
	assert.NoError(t, delivered[0])
	assert.NoError(t, delivered[1])
	assert.Equal(t, figmodel.StatusCompleted, batch[0].Status)
}
