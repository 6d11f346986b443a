package service

import (
	"context"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/repository"
	"go.uber.org/zap"
)

// ExpirySweeper periodically deactivates links whose expiry has passed, so
// the redirect path can rely on the active flag alone.
type ExpirySweeper struct {
	logger   *zap.Logger
	repo     repository.LinkRepository
	interval time.Duration
	stopChan chan struct{}
}

// NewExpirySweeper creates a sweeper checking on the given interval.
func NewExpirySweeper(logger *zap.Logger, repo repository.LinkRepository, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpirySweeper{
		logger:   logger,
		repo:     repo,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (s *ExpirySweeper) Start() {
	go s.run()
}

// Stop stops the periodic sweep.
func (s *ExpirySweeper) Stop() {
	close(s.stopChan)
}

func (s *ExpirySweeper) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			s.logger.Info("expiry sweeper stopped")
			return
		}
	}
}

func (s *ExpirySweeper) sweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	affected, err := s.repo.DeactivateExpired(ctx, now)
	if err != nil {
		s.logger.Error("failed to deactivate expired links", zap.Error(err))
		return
	}

	if affected > 0 {
		s.logger.Info("deactivated expired links",
			zap.Int64("count", affected),
			zap.Time("as_of", now),
		)
	}
}
