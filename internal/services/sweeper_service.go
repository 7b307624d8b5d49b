package services

import (
	"context"
	"fmt"
	"time"

	"github.com/alimgiray/bizscope/internal/metrics"
	"github.com/alimgiray/bizscope/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SweeperService fails projects stuck in pending or generating, which happens
// when the process stops with jobs queued or running.
type SweeperService struct {
	repo       ProjectStore
	staleAfter time.Duration
	metrics    *metrics.Collector
	now        func() time.Time

	cron *cron.Cron
}

func NewSweeperService(repo ProjectStore, staleAfter time.Duration, collector *metrics.Collector) *SweeperService {
	if staleAfter <= 0 {
		staleAfter = 15 * time.Minute
	}
	return &SweeperService{
		repo:       repo,
		staleAfter: staleAfter,
		metrics:    collector,
		now:        time.Now,
	}
}

// Start schedules the sweep on a six-field cron expression (seconds first)
func (s *SweeperService) Start(schedule string) error {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			logger.WithError(err).Error("Stale generation sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	s.cron = c
	c.Start()
	logger.WithFields(logrus.Fields{
		"schedule":    schedule,
		"stale_after": s.staleAfter.String(),
	}).Info("Stale generation sweeper started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to return
func (s *SweeperService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Sweep marks every in-flight project created more than staleAfter ago as
// failed and returns how many were changed.
func (s *SweeperService) Sweep(ctx context.Context) (int, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.staleAfter)
	swept := 0
	for _, id := range ids {
		project, err := s.repo.GetByID(ctx, id)
		if err != nil {
			logger.WithError(err).WithField("project_id", id).Warn("Sweeper skipping unreadable project")
			continue
		}
		if !project.IsInFlight() || project.CreatedAt.After(cutoff) {
			continue
		}

		previous := project.Status
		message := fmt.Sprintf("generation did not finish within %s", s.staleAfter)
		if err := project.MarkFailed(message); err != nil {
			continue
		}
		if err := s.repo.Save(ctx, project); err != nil {
			logger.WithError(err).WithField("project_id", id).Error("Failed to mark stale project")
			continue
		}

		swept++
		logger.WithFields(logrus.Fields{
			"project_id": id,
			"previous":   previous,
		}).Warn("Marked stale project as failed")
	}

	s.metrics.RecordStaleSwept(swept)
	return swept, nil
}
