package cron

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
	"github.com/beatspace-ads/beatspace-backend/pkg/metrics"
)

// LockFactory builds a per-job lock. The TTL covers one run plus a grace
// period so a stuck job eventually frees its slot.
type LockFactory func(job string, ttl time.Duration) (Lock, error)

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Locks    LockFactory
	Metrics  *metrics.CronJobMetrics
}

// Service runs each registered job on its own cadence until the context ends.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	locks    LockFactory
	metrics  *metrics.CronJobMetrics
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		locks:    params.Locks,
		metrics:  params.Metrics,
	}, nil
}

// Run schedules every registered job and blocks until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	group, groupCtx := errgroup.WithContext(ctx)
	for _, job := range s.registry.Jobs() {
		lock, err := s.lockFor(job)
		if err != nil {
			return fmt.Errorf("building lock for %s: %w", job.Name(), err)
		}
		group.Go(func() error {
			s.runLoop(groupCtx, job, lock)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	s.logg.Info(ctx, "cron service stopped")
	return ctx.Err()
}

func (s *Service) lockFor(job Job) (Lock, error) {
	if s.locks == nil {
		return nil, nil
	}
	return s.locks(job.Name(), job.Interval()+defaultLockTTL)
}

func (s *Service) runLoop(ctx context.Context, job Job, lock Lock) {
	interval := job.Interval()
	if interval <= 0 {
		interval = time.Minute
	}
	s.runJob(ctx, job, lock)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runJob(ctx, job, lock)
		}
	}
}

func (s *Service) runJob(ctx context.Context, job Job, lock Lock) {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	jobCtx = s.logg.WithField(jobCtx, "event", "cron.job")
	if lock != nil {
		locked, err := lock.Acquire(jobCtx)
		if err != nil {
			s.logg.Error(jobCtx, "lock acquire failed", err)
			return
		}
		if !locked {
			s.logg.Info(jobCtx, "another worker holds the lock, skipping this run")
			return
		}
		defer func() {
			if relErr := lock.Release(jobCtx); relErr != nil {
				s.logg.Error(jobCtx, "failed to release job lock", relErr)
			}
		}()
	}

	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.metrics.ObserveDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.metrics.IncFailure(job.Name())
		return
	}
	s.logg.Info(jobCtx, "job completed")
	s.metrics.IncSuccess(job.Name())
}
