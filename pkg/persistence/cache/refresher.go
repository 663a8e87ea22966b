package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

var ErrRefreshScheduleRequired = errors.New("catalog refresh schedule is required")

// Refresher rewarms the cached catalog on a cron schedule so that requests rarely reach
// the database after the TTL expires.
type Refresher struct {
	cache    *MetadataCache
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewRefresher validates schedule, a standard five field cron expression or a descriptor
// such as "@every 5m".
func NewRefresher(metadataCache *MetadataCache, schedule string, logger *slog.Logger) (*Refresher, error) {
	if schedule == "" {
		return nil, ErrRefreshScheduleRequired
	}

	_, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog refresh schedule: %w", err)
	}

	return &Refresher{
		cache:    metadataCache,
		schedule: schedule,
		logger:   logger.With("module", "catalog_refresher", "schedule", schedule),
	}, nil
}

func (r *Refresher) Start(ctx context.Context) error {
	r.logger.InfoContext(ctx, "Starting catalog refresher")

	r.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := r.cron.AddFunc(r.schedule, func() { r.Run(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule catalog refresh: %w", err)
	}

	r.cron.Start()

	return nil
}

// Run performs a single refresh.
func (r *Refresher) Run(ctx context.Context) {
	err := r.cache.Refresh(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to refresh cached catalog", "error", err)

		return
	}

	r.logger.DebugContext(ctx, "Cached catalog refreshed")
}

// Stop waits for a running refresh to finish.
func (r *Refresher) Stop(ctx context.Context) {
	r.logger.InfoContext(ctx, "Stopping catalog refresher")

	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}
