package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatspace-ads/beatspace-backend/internal/stats"
)

type stubStats struct {
	snapshot *stats.PublicStats
	err      error
	calls    int
}

func (s *stubStats) Refresh(context.Context) (*stats.PublicStats, error) {
	s.calls++
	return s.snapshot, s.err
}

type stubPruner struct {
	deleted int64
	err     error
	lastAge time.Duration
}

func (s *stubPruner) PruneOlderThan(_ context.Context, age time.Duration) (int64, error) {
	s.lastAge = age
	return s.deleted, s.err
}

func TestStatsRefreshJobRefreshesSnapshot(t *testing.T) {
	refresher := &stubStats{snapshot: &stats.PublicStats{AvailableAssets: 3}}
	job, err := NewStatsRefreshJob(StatsRefreshJobParams{Logger: testLogger(), Stats: refresher})
	require.NoError(t, err)

	assert.Equal(t, "stats-refresh", job.Name())
	assert.Equal(t, 30*time.Second, job.Interval())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, refresher.calls)
}

func TestStatsRefreshJobPropagatesErrors(t *testing.T) {
	job, err := NewStatsRefreshJob(StatsRefreshJobParams{
		Logger: testLogger(),
		Stats:  &stubStats{err: errors.New("db down")},
	})
	require.NoError(t, err)
	assert.Error(t, job.Run(context.Background()))
}

func TestNotificationRetentionJobUsesConfiguredWindow(t *testing.T) {
	pruner := &stubPruner{deleted: 12}
	job, err := NewNotificationRetentionJob(NotificationRetentionJobParams{
		Logger:        testLogger(),
		Notifications: pruner,
		RetentionDays: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, "notification-retention", job.Name())
	assert.Equal(t, 24*time.Hour, job.Interval())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 30*24*time.Hour, pruner.lastAge)
}

func TestNotificationRetentionJobDefaultsRetention(t *testing.T) {
	pruner := &stubPruner{}
	job, err := NewNotificationRetentionJob(NotificationRetentionJobParams{
		Logger:        testLogger(),
		Notifications: pruner,
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 90*24*time.Hour, pruner.lastAge)
}

func TestJobConstructorsValidateDependencies(t *testing.T) {
	_, err := NewStatsRefreshJob(StatsRefreshJobParams{Logger: testLogger()})
	assert.Error(t, err)

	_, err = NewNotificationRetentionJob(NotificationRetentionJobParams{Logger: testLogger()})
	assert.Error(t, err)
}
