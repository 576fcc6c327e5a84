package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"taskflow/internal/domain"
)

// Purger deletes read notifications older than the retention window on a
// cron schedule.
type Purger struct {
	cron      *cron.Cron
	repo      domain.NotificationRepository
	schedule  string
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewPurger creates a Purger. schedule is a standard cron spec or a
// descriptor such as "@daily".
func NewPurger(repo domain.NotificationRepository, schedule string, retention time.Duration, logger *slog.Logger) *Purger {
	return &Purger{
		cron:      cron.New(),
		repo:      repo,
		schedule:  schedule,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the purge job and starts the scheduler.
func (p *Purger) Start(ctx context.Context) error {
	if p.retention <= 0 {
		return fmt.Errorf("notification retention must be positive, got %s", p.retention)
	}
	if _, err := p.cron.AddFunc(p.schedule, func() {
		if _, err := p.PurgeOnce(ctx); err != nil {
			p.logger.Error("notification purge failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", p.schedule, err)
	}
	p.cron.Start()
	p.logger.Info("notification purger started", "schedule", p.schedule, "retention", p.retention)
	return nil
}

// Stop stops the scheduler and waits for a running purge to finish.
func (p *Purger) Stop() {
	<-p.cron.Stop().Done()
	p.logger.Info("notification purger stopped")
}

// PurgeOnce deletes read notifications created before now minus the
// retention window.
func (p *Purger) PurgeOnce(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.retention)
	n, err := p.repo.PurgeReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		p.logger.Info("purged read notifications", "count", n, "before", cutoff)
	}
	return n, nil
}
