package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcJob struct {
	name string
	run  func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.run(ctx) }

func TestWorkerManagerRunsSubmittedJobs(t *testing.T) {
	manager := NewWorkerManager(2, 8)
	defer manager.StopAll()

	var ran int32
	done := make(chan struct{}, 4)
	for i := 0; i < 4; i++ {
		// Jobs submitted before StartAll wait in the queue
		require.NoError(t, manager.Submit(funcJob{name: "count", run: func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			done <- struct{}{}
			return nil
		}}))
	}
	assert.Equal(t, 4, manager.QueueLength())

	require.NoError(t, manager.StartAll())
	require.NoError(t, manager.StartAll())

	for i := 0; i < 4; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("job did not run")
		}
	}
	assert.Equal(t, int32(4), atomic.LoadInt32(&ran))

	status := manager.GetWorkerStatus()
	assert.Len(t, status, 2)
	assert.Contains(t, status, "generation-1")
	assert.Contains(t, status, "generation-2")
}

func TestWorkerManagerQueueFull(t *testing.T) {
	manager := NewWorkerManager(1, 1)
	defer manager.StopAll()

	noop := funcJob{name: "noop", run: func(context.Context) error { return nil }}
	require.NoError(t, manager.Submit(noop))
	assert.ErrorIs(t, manager.Submit(noop), ErrQueueFull)
}

func TestWorkerManagerStopped(t *testing.T) {
	manager := NewWorkerManager(1, 4)
	require.NoError(t, manager.StartAll())

	started := make(chan struct{})
	var cancelled atomic.Bool
	require.NoError(t, manager.Submit(funcJob{name: "block", run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}}))
	<-started

	require.NoError(t, manager.StopAll())
	require.NoError(t, manager.StopAll())
	assert.True(t, cancelled.Load())

	noop := funcJob{name: "noop", run: func(context.Context) error { return nil }}
	assert.ErrorIs(t, manager.Submit(noop), ErrManagerStopped)
	assert.ErrorIs(t, manager.StartAll(), ErrManagerStopped)

	for id, running := range manager.GetWorkerStatus() {
		assert.False(t, running, id)
	}
}

func TestWorkerSurvivesPanickingJob(t *testing.T) {
	manager := NewWorkerManager(1, 4)
	defer manager.StopAll()
	require.NoError(t, manager.StartAll())

	done := make(chan struct{})
	require.NoError(t, manager.Submit(funcJob{name: "panic", run: func(context.Context) error {
		panic("boom")
	}}))
	require.NoError(t, manager.Submit(funcJob{name: "fail", run: func(context.Context) error {
		return errors.New("failed")
	}}))
	require.NoError(t, manager.Submit(funcJob{name: "after", run: func(context.Context) error {
		close(done)
		return nil
	}}))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not survive the panic")
	}
}
