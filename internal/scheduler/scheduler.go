// Package scheduler runs periodic history maintenance.
package scheduler

import (
	"context"
	"sync"
	"time"

	"ytt/backend/internal/logger"
	"ytt/backend/internal/service"
)

// RetentionSettings supplies the current retention window.
type RetentionSettings interface {
	GetAppSettings(ctx context.Context) (service.AppSettings, error)
}

// Pruner deletes history entries older than a number of days.
type Pruner interface {
	PruneOlderThan(ctx context.Context, days int) (int, error)
}

// Scheduler deletes history entries older than the configured retention
// period. A nil retention period keeps everything.
type Scheduler struct {
	settings   RetentionSettings
	pruner     Pruner
	interval   time.Duration
	stopCh     chan struct{}
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc // cancels the current prune
	mu         sync.Mutex         // protects cancelFunc
}

func New(settings RetentionSettings, pruner Pruner, interval time.Duration) *Scheduler {
	return &Scheduler{
		settings: settings,
		pruner:   pruner,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "module", "scheduler", "action", "prune", "resource", "history", "result", "ok", "interval_ms", s.interval.Milliseconds())
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	logger.Info("scheduler stopped", "module", "scheduler", "action", "prune", "resource", "history", "result", "ok")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.RunOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce()
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce applies the retention period once and returns how many entries
// were deleted.
func (s *Scheduler) RunOnce() int {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	settings, err := s.settings.GetAppSettings(ctx)
	if err != nil {
		logger.Error("load retention settings failed", "module", "scheduler", "action", "prune", "resource", "history", "result", "failed", "error", err)
		return 0
	}
	if settings.HistoryRetentionDays == nil {
		return 0
	}

	n, err := s.pruner.PruneOlderThan(ctx, *settings.HistoryRetentionDays)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("history prune cancelled", "module", "scheduler", "action", "prune", "resource", "history", "result", "cancelled")
			return 0
		}
		logger.Error("history prune failed", "module", "scheduler", "action", "prune", "resource", "history", "result", "failed", "error", err)
		return 0
	}
	return n
}
