package workers

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/alimgiray/bizscope/pkg/logger"
	"github.com/sirupsen/logrus"
)

// PoolWorker takes jobs off the shared queue one at a time
type PoolWorker struct {
	*BaseWorker
	jobs <-chan Job
}

// NewPoolWorker creates a worker reading from jobs
func NewPoolWorker(workerID string, jobs <-chan Job) *PoolWorker {
	return &PoolWorker{
		BaseWorker: NewBaseWorker(workerID),
		jobs:       jobs,
	}
}

// Start processes jobs until ctx is cancelled or the worker is stopped
func (w *PoolWorker) Start(ctx context.Context) error {
	w.setRunning(true)
	defer w.setRunning(false)

	logger.WithField("worker_id", w.WorkerID).Info("Worker started")

	for {
		select {
		case <-ctx.Done():
			logger.WithField("worker_id", w.WorkerID).Info("Worker stopping due to context cancellation")
			return nil
		case <-w.StopChan:
			logger.WithField("worker_id", w.WorkerID).Info("Worker stopping due to stop signal")
			return nil
		case job, ok := <-w.jobs:
			if !ok {
				return nil
			}
			w.execute(ctx, job)
		}
	}
}

// execute runs a single job. A panicking job is logged and does not take the worker down.
func (w *PoolWorker) execute(ctx context.Context, job Job) {
	start := time.Now()
	entry := logger.WithFields(logrus.Fields{
		"worker_id": w.WorkerID,
		"job":       job.Name(),
	})

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
				entry.WithField("stack", string(debug.Stack())).Error("Recovered from job panic")
			}
		}()
		return job.Run(ctx)
	}()

	entry = entry.WithField("duration", time.Since(start).String())
	if err != nil {
		entry.WithError(err).Warn("Job failed")
		return
	}
	entry.Debug("Job finished")
}
