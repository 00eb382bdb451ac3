package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/beatspace-ads/beatspace-backend/internal/stats"
	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
)

const defaultStatsInterval = 30 * time.Second

type statsRefresher interface {
	Refresh(ctx context.Context) (*stats.PublicStats, error)
}

// StatsRefreshJobParams configure the public stats refresh job.
type StatsRefreshJobParams struct {
	Logger   *logger.Logger
	Stats    statsRefresher
	Interval time.Duration
}

// NewStatsRefreshJob keeps the cached marketplace tallies warm so the public
// endpoint never waits on a cold recount.
func NewStatsRefreshJob(params StatsRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stats == nil {
		return nil, fmt.Errorf("stats service required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultStatsInterval
	}
	return &statsRefreshJob{
		logg:     params.Logger,
		stats:    params.Stats,
		interval: interval,
	}, nil
}

type statsRefreshJob struct {
	logg     *logger.Logger
	stats    statsRefresher
	interval time.Duration
}

func (j *statsRefreshJob) Name() string            { return "stats-refresh" }
func (j *statsRefreshJob) Interval() time.Duration { return j.interval }

func (j *statsRefreshJob) Run(ctx context.Context) error {
	snapshot, err := j.stats.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("stats refresh: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"available_assets": snapshot.AvailableAssets,
		"total_campaigns":  snapshot.TotalCampaigns,
		"buyers":           snapshot.Buyers,
		"sellers":          snapshot.Sellers,
	})
	j.logg.Info(logCtx, "public stats refreshed")
	return nil
}
