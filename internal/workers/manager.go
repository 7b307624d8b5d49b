package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alimgiray/bizscope/pkg/logger"
	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull      = errors.New("generation queue is full")
	ErrManagerStopped = errors.New("worker manager is stopped")
)

// WorkerManager owns a fixed set of pool workers draining a bounded job queue
type WorkerManager struct {
	workers     []Worker
	workerCount int
	queue       chan Job

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewWorkerManager creates a new worker manager. Non-positive sizes fall back to one.
func NewWorkerManager(workerCount, queueSize int) *WorkerManager {
	if workerCount <= 0 {
		workerCount = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers:     make([]Worker, 0, workerCount),
		workerCount: workerCount,
		queue:       make(chan Job, queueSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// StartAll starts the configured number of workers
func (wm *WorkerManager) StartAll() error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if wm.stopped {
		return ErrManagerStopped
	}
	if wm.started {
		return nil
	}
	wm.started = true

	logger.WithFields(logrus.Fields{
		"workers":    wm.workerCount,
		"queue_size": cap(wm.queue),
	}).Info("Starting workers")

	for i := 0; i < wm.workerCount; i++ {
		worker := NewPoolWorker(fmt.Sprintf("generation-%d", i+1), wm.queue)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	logger.Infof("Started %d total workers", len(wm.workers))
	return nil
}

// Submit queues job without blocking. Jobs accepted before StartAll run once the workers start.
func (wm *WorkerManager) Submit(job Job) error {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	if wm.stopped {
		return ErrManagerStopped
	}

	select {
	case wm.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// StopAll cancels running jobs and waits for every worker to return.
// Jobs still queued are dropped.
func (wm *WorkerManager) StopAll() error {
	wm.mu.Lock()
	if wm.stopped {
		wm.mu.Unlock()
		return nil
	}
	wm.stopped = true
	wm.mu.Unlock()

	logger.Info("Stopping all workers...")

	// Cancel the context to signal all workers to stop
	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.WithError(err).WithField("worker_id", worker.GetWorkerID()).Error("Error stopping worker")
		}
	}

	wm.wg.Wait()

	if dropped := len(wm.queue); dropped > 0 {
		logger.WithField("dropped", dropped).Warn("Queued jobs dropped at shutdown")
	}
	logger.Info("All workers stopped")
	return nil
}

// QueueLength returns the number of jobs waiting for a worker
func (wm *WorkerManager) QueueLength() int {
	return len(wm.queue)
}

// GetWorkerStatus returns the running state of every worker keyed by ID
func (wm *WorkerManager) GetWorkerStatus() map[string]bool {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	status := make(map[string]bool, len(wm.workers))
	for _, worker := range wm.workers {
		status[worker.GetWorkerID()] = worker.IsRunning()
	}
	return status
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil {
			logger.WithError(err).WithField("worker_id", worker.GetWorkerID()).Error("Worker stopped with error")
		}
	}()
}
