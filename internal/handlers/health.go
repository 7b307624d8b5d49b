package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// WorkerStatus is the part of the worker pool the health check reports on
type WorkerStatus interface {
	GetWorkerStatus() map[string]bool
	QueueLength() int
}

type HealthHandler struct {
	workers   WorkerStatus
	startedAt time.Time
}

func NewHealthHandler(workers WorkerStatus) *HealthHandler {
	return &HealthHandler{
		workers:   workers,
		startedAt: time.Now(),
	}
}

// HealthCheck reports liveness and the state of the generation workers
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	running := 0
	status := h.workers.GetWorkerStatus()
	for _, up := range status {
		if up {
			running++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"status":  "healthy",
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"workers": gin.H{"total": len(status), "running": running, "queued": h.workers.QueueLength()},
	})
}
