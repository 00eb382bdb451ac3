package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
)

const (
	defaultRetentionDays     = 90
	defaultRetentionInterval = 24 * time.Hour
)

type notificationPruner interface {
	PruneOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// NotificationRetentionJobParams configure the bell retention sweep.
type NotificationRetentionJobParams struct {
	Logger        *logger.Logger
	Notifications notificationPruner
	RetentionDays int
	Interval      time.Duration
}

// NewNotificationRetentionJob prunes read notifications past the retention
// window. Unread rows stay until the user acknowledges them.
func NewNotificationRetentionJob(params NotificationRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = defaultRetentionDays
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultRetentionInterval
	}
	return &notificationRetentionJob{
		logg:      params.Logger,
		bells:     params.Notifications,
		retention: retention,
		interval:  interval,
	}, nil
}

type notificationRetentionJob struct {
	logg      *logger.Logger
	bells     notificationPruner
	retention int
	interval  time.Duration
}

func (j *notificationRetentionJob) Name() string            { return "notification-retention" }
func (j *notificationRetentionJob) Interval() time.Duration { return j.interval }

func (j *notificationRetentionJob) Run(ctx context.Context) error {
	age := time.Duration(j.retention) * 24 * time.Hour
	deleted, err := j.bells.PruneOlderThan(ctx, age)
	if err != nil {
		return fmt.Errorf("notification retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notification retention complete")
	return nil
}
