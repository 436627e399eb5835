package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSync_OfflineWriteReachesRemote(t *testing.T) {
	e := newEnv(t, false, nil)
	ctx := context.Background()

	require.NoError(t, e.binding.Save(ctx, KindAssessment, map[string]string{"id": "a1"}))

	pending, err := e.binding.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	item, err := e.repos.Assessments.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, item.Synced)

	e.monitor.Set(true)
	res, err := e.binding.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, PassResult{Delivered: 1, Synced: 1}, res)

	pending, err = e.binding.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	item, err = e.repos.Assessments.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, item.Synced)

	calls := e.remote.calls()
	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.Equal(t, models.ActionCreate, c.Action)
		assert.Equal(t, AssessmentEndpoint, c.Endpoint)
		assert.JSONEq(t, `{"id":"a1"}`, c.Payload)
	}
}

func TestSync_QueueItemDroppedAfterThirdFailure(t *testing.T) {
	e := newEnv(t, true, &fakeRemote{fail: alwaysFail})
	ctx := context.Background()

	it, err := e.repos.Queue.Enqueue(ctx, models.ActionUpdate, "/api/profile", map[string]string{"name": "x"})
	require.NoError(t, err)

	for pass := 1; pass <= 2; pass++ {
		res, err := e.scheduler.Sync(ctx)
		require.NoError(t, err)
		assert.Equal(t, PassResult{Retried: 1}, res, "pass %d", pass)

		pending, err := e.repos.Queue.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1, "pass %d", pass)
		assert.Equal(t, pass, pending[0].Retries)
	}

	res, err := e.scheduler.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, PassResult{DeadLettered: 1}, res)

	pending, err := e.repos.Queue.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	res, err = e.scheduler.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, PassResult{}, res)
	assert.Equal(t, 3, e.remote.countTo("/api/profile"))

	dead, err := e.binding.DeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, it.ID, dead[0].ID)
	assert.Equal(t, 3, dead[0].Retries)
	assert.Contains(t, dead[0].LastError, errRemoteDown.Error())
}

func TestSync_ItemAtCeilingIsNotAttempted(t *testing.T) {
	e := newEnv(t, true, nil)
	ctx := context.Background()

	stale := models.QueueItem{ID: "q-old", Action: models.ActionCreate, Endpoint: "/api/x", Retries: DefaultMaxRetries}
	require.NoError(t, e.store.Put(ctx, queue.Collection, stale))

	res, err := e.scheduler.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, PassResult{DeadLettered: 1}, res)
	assert.Empty(t, e.remote.calls())
}

func TestSync_DeliversInEnqueueOrder(t *testing.T) {
	e := newEnv(t, true, nil)
	ctx := context.Background()

	endpoints := []string{"/api/a", "/api/b/1", "/api/c"}
	actions := []models.Action{models.ActionCreate, models.ActionDelete, models.ActionUpdate}
	for i, ep := range endpoints {
		_, err := e.repos.Queue.Enqueue(ctx, actions[i], ep, map[string]int{"i": i})
		require.NoError(t, err)
	}

	res, err := e.scheduler.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Delivered)

	calls := e.remote.calls()
	require.Len(t, calls, 3)
	for i, c := range calls {
		assert.Equal(t, endpoints[i], c.Endpoint)
		assert.Equal(t, actions[i], c.Action)
	}
}

func TestSync_SweepFailuresStayUnsynced(t *testing.T) {
	remote := &fakeRemote{fail: func(endpoint string) error {
		if endpoint == AnalyticsEndpoint {
			return errRemoteDown
		}
		return nil
	}}
	e := newEnv(t, true, remote)
	ctx := context.Background()

	_, err := e.repos.Assessments.Save(ctx, map[string]string{"id": "a1"})
	require.NoError(t, err)
	ev, err := e.repos.Analytics.Record(ctx, map[string]string{"name": "open"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		res, err := e.scheduler.Sync(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
	}

	unsynced, err := e.repos.Analytics.ListUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, ev.ID, unsynced[0].ID)

	unsyncedA, err := e.repos.Assessments.ListUnsynced(ctx)
	require.NoError(t, err)
	assert.Empty(t, unsyncedA)
	assert.Equal(t, 1, remote.countTo(AssessmentEndpoint))
	assert.Equal(t, 5, remote.countTo(AnalyticsEndpoint))
}

func TestSync_OfflineSkipsPass(t *testing.T) {
	e := newEnv(t, false, nil)
	ctx := context.Background()

	_, err := e.repos.Queue.Enqueue(ctx, models.ActionCreate, "/api/x", nil)
	require.NoError(t, err)

	_, err = e.scheduler.Sync(ctx)
	require.ErrorIs(t, err, ErrOffline)
	assert.Empty(t, e.remote.calls())
	assert.Equal(t, Idle, e.scheduler.State())
}

func TestSync_ResaveDuringPushStaysUnsynced(t *testing.T) {
	remote := &fakeRemote{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	e := newEnv(t, true, remote)
	ctx := context.Background()

	require.NoError(t, e.binding.Save(ctx, KindAssessment, map[string]any{"id": "a1", "v": 1}))

	var (
		res PassResult
		err error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		res, err = e.scheduler.Sync(ctx)
	}()

	select {
	case <-remote.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("pass never reached the remote")
	}
	require.NoError(t, e.binding.Save(ctx, KindAssessment, map[string]any{"id": "a1", "v": 2}))
	close(remote.gate)
	<-done

	require.NoError(t, err)
	assert.Equal(t, PassResult{Stale: 1}, res)

	item, err := e.repos.Assessments.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, item.Synced)
	assert.JSONEq(t, `{"id":"a1","v":2}`, string(item.Data))

	// the next pass pushes the newer version
	res, err = e.scheduler.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, PassResult{Synced: 1}, res)

	item, err = e.repos.Assessments.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, item.Synced)

	calls := remote.calls()
	require.Len(t, calls, 2)
	assert.JSONEq(t, `{"id":"a1","v":1}`, calls[0].Payload)
	assert.JSONEq(t, `{"id":"a1","v":2}`, calls[1].Payload)
}

func TestSync_PassesDoNotOverlap(t *testing.T) {
	remote := &fakeRemote{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	e := newEnv(t, true, remote)
	ctx := context.Background()

	_, err := e.repos.Queue.Enqueue(ctx, models.ActionCreate, "/api/x", map[string]int{"n": 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]PassResult, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = e.scheduler.Sync(ctx)
	}()

	select {
	case <-remote.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first pass never reached the remote")
	}
	assert.Equal(t, Syncing, e.scheduler.State())

	// a caller that gives up while the pass runs gets its own ctx error
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	_, err = e.scheduler.Sync(short)
	cancel()
	require.ErrorIs(t, err, context.DeadlineExceeded)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = e.scheduler.Sync(ctx)
	}()

	close(remote.gate)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, PassResult{Delivered: 1}, results[0])
	assert.Len(t, remote.calls(), 1)
	assert.Equal(t, Idle, e.scheduler.State())
}

func TestStart_PassOnReconnect(t *testing.T) {
	e := newEnv(t, false, nil)
	ctx := context.Background()

	require.NoError(t, e.binding.Save(ctx, KindAnalytics, map[string]string{"name": "open"}))

	stop := e.scheduler.Start(ctx)

	e.monitor.Set(true)
	require.Eventually(t, func() bool {
		pending, err := e.repos.Queue.ListPending(ctx)
		return err == nil && len(pending) == 0
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		unsynced, err := e.repos.Analytics.ListUnsynced(ctx)
		return err == nil && len(unsynced) == 0
	}, 2*time.Second, 10*time.Millisecond)

	stop()
	stop()

	// no listener after stop
	before := len(e.remote.calls())
	e.monitor.Set(false)
	e.monitor.Set(true)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, e.remote.calls(), before)
}

func TestStart_OfflineTransitionDoesNothing(t *testing.T) {
	e := newEnv(t, true, nil)
	ctx := context.Background()

	_, err := e.repos.Queue.Enqueue(ctx, models.ActionCreate, "/api/x", nil)
	require.NoError(t, err)

	stop := e.scheduler.Start(ctx)
	defer stop()

	e.monitor.Set(false)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, e.remote.calls())
}

func TestWithMaxRetries(t *testing.T) {
	s := NewScheduler(&fakeRemote{}, nil, Repositories{}, nil, WithMaxRetries(5))
	assert.Equal(t, 5, s.maxRetries)

	s = NewScheduler(&fakeRemote{}, nil, Repositories{}, nil, WithMaxRetries(0))
	assert.Equal(t, DefaultMaxRetries, s.maxRetries)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "syncing", Syncing.String())
}
