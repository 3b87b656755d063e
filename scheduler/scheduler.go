// Package scheduler runs the API's maintenance jobs with gocron: evicting idle rate limiter
// buckets, sampling connection pool statistics into Prometheus, and pruning old log files.
// None of the jobs touch formulary data.
package scheduler

import (
	"fmt"
	"time"

	"github.com/giygas/nlem-api/interfaces"
	"github.com/giygas/nlem-api/logging"
	"github.com/giygas/nlem-api/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// BucketEvicter drops rate limiter state for clients that have gone quiet
type BucketEvicter interface {
	Cleanup() int
}

// LogCleaner removes log files past their retention
type LogCleaner interface {
	CleanupOldLogs() (int, error)
}

// Intervals controls how often each job runs. Zero values use the defaults.
type Intervals struct {
	BucketEviction time.Duration
	PoolSampling   time.Duration
	LogCleanup     time.Duration
}

// DefaultIntervals returns the production job intervals
func DefaultIntervals() Intervals {
	return Intervals{
		BucketEviction: 5 * time.Minute,
		PoolSampling:   15 * time.Second,
		LogCleanup:     24 * time.Hour,
	}
}

// Scheduler runs the maintenance jobs using injected dependencies. Any dependency may be nil,
// in which case its job is not scheduled.
type Scheduler struct {
	limiter   BucketEvicter
	pool      interfaces.Pinger
	logs      LogCleaner
	intervals Intervals
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(limiter BucketEvicter, pool interfaces.Pinger, logs LogCleaner, intervals Intervals) *Scheduler {
	defaults := DefaultIntervals()
	if intervals.BucketEviction <= 0 {
		intervals.BucketEviction = defaults.BucketEviction
	}
	if intervals.PoolSampling <= 0 {
		intervals.PoolSampling = defaults.PoolSampling
	}
	if intervals.LogCleanup <= 0 {
		intervals.LogCleanup = defaults.LogCleanup
	}

	s := gocron.NewScheduler(time.Local)
	s.SingletonModeAll()

	return &Scheduler{
		limiter:   limiter,
		pool:      pool,
		logs:      logs,
		intervals: intervals,
		scheduler: s,
	}
}

// Start registers the jobs and starts running them in the background
func (s *Scheduler) Start() error {
	if s.limiter != nil {
		if _, err := s.scheduler.Every(s.intervals.BucketEviction).WaitForSchedule().Do(s.evictBuckets); err != nil {
			return fmt.Errorf("failed to schedule rate limiter cleanup: %w", err)
		}
	}

	if s.pool != nil {
		if _, err := s.scheduler.Every(s.intervals.PoolSampling).Do(s.samplePool); err != nil {
			return fmt.Errorf("failed to schedule pool sampling: %w", err)
		}
	}

	if s.logs != nil {
		if _, err := s.scheduler.Every(s.intervals.LogCleanup).Do(s.cleanupLogs); err != nil {
			return fmt.Errorf("failed to schedule log cleanup: %w", err)
		}
	}

	s.scheduler.StartAsync()
	logging.Info("Maintenance scheduler started", "jobs", len(s.scheduler.Jobs()))
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) evictBuckets() {
	remaining := s.limiter.Cleanup()
	logging.Debug("Rate limiter buckets evicted", "remaining", remaining)
}

func (s *Scheduler) samplePool() {
	stats := s.pool.Stats()
	metrics.RecordPoolStats(stats)

	if stats.MaxConns > 0 && stats.AcquiredConns == stats.MaxConns {
		logging.Warn("Connection pool saturated",
			"acquired", stats.AcquiredConns,
			"max", stats.MaxConns,
			"empty_acquire_count", stats.EmptyAcquireCount,
		)
	}
}

func (s *Scheduler) cleanupLogs() {
	deleted, err := s.logs.CleanupOldLogs()
	if err != nil {
		logging.Error("Failed to clean up old logs", "error", err)
		return
	}
	if deleted > 0 {
		logging.Info("Old log files removed", "count", deleted)
	}
}
