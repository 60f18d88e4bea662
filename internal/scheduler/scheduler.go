package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/kap-news/internal/assets"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// reindexTimeout bounds a single scheduled asset scan
const reindexTimeout = 2 * time.Minute

// Reindexer rebuilds the asset index
type Reindexer interface {
	Reindex(ctx context.Context) (*assets.Index, error)
}

// Scheduler runs periodic maintenance jobs
type Scheduler struct {
	cron   *cron.Cron
	assets Reindexer
	ctx    context.Context
	logger *zap.Logger
}

// NewScheduler creates a new Scheduler. Jobs stop receiving a live context
// once ctx is cancelled.
func NewScheduler(ctx context.Context, assets Reindexer, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		assets: assets,
		ctx:    ctx,
		logger: logger,
	}
}

// Register adds the asset reindex job. An empty spec disables it.
func (s *Scheduler) Register(assetReindexSpec string) error {
	if assetReindexSpec == "" {
		s.logger.Info("Asset reindex schedule disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(assetReindexSpec, s.ReindexAssets); err != nil {
		return fmt.Errorf("register asset reindex: %w", err)
	}
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// ReindexAssets rebuilds the asset index once
func (s *Scheduler) ReindexAssets() {
	ctx, cancel := context.WithTimeout(s.ctx, reindexTimeout)
	defer cancel()

	start := time.Now()
	if _, err := s.assets.Reindex(ctx); err != nil {
		s.logger.Error("Scheduled asset reindex failed", zap.Error(err))
		return
	}
	s.logger.Debug("Scheduled asset reindex done", zap.Duration("elapsed", time.Since(start)))
}
