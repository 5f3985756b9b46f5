// Package scheduler runs periodic background jobs
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const refreshTimeout = 10 * time.Minute

// KeypointRefresher regenerates keypoints for all free-text questions
type KeypointRefresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	cron      *cron.Cron
	refresher KeypointRefresher
	logger    *zap.Logger
}

// New creates a scheduler that refreshes keypoints on the given cron spec
func New(spec string, refresher KeypointRefresher, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		refresher: refresher,
		logger:    logger,
	}
	if _, err := s.cron.AddFunc(spec, s.refreshKeypoints); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return s, nil
}

// Start begins running scheduled tasks in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("keypoint refresh still running at shutdown")
	}
}

func (s *Scheduler) refreshKeypoints() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.refresher.RefreshAll(ctx)
	if err != nil {
		s.logger.Error("scheduled keypoint refresh failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled keypoint refresh finished",
		zap.Int("questions", n),
		zap.Duration("duration", time.Since(start)),
	)
}
