package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/giygas/nlem-api/database"
	"github.com/giygas/nlem-api/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type mockEvicter struct {
	calls atomic.Int32
}

func (m *mockEvicter) Cleanup() int {
	m.calls.Add(1)
	return 3
}

type mockPool struct {
	stats database.PoolStats
	calls atomic.Int32
}

func (m *mockPool) Ping(ctx context.Context) error { return nil }

func (m *mockPool) Stats() database.PoolStats {
	m.calls.Add(1)
	return m.stats
}

type mockLogCleaner struct {
	err   error
	calls atomic.Int32
}

func (m *mockLogCleaner) CleanupOldLogs() (int, error) {
	m.calls.Add(1)
	return 2, m.err
}

func TestNewSchedulerAppliesDefaults(t *testing.T) {
	s := NewScheduler(nil, nil, nil, Intervals{PoolSampling: time.Second})

	assert.Equal(t, 5*time.Minute, s.intervals.BucketEviction)
	assert.Equal(t, time.Second, s.intervals.PoolSampling)
	assert.Equal(t, 24*time.Hour, s.intervals.LogCleanup)
}

func TestSamplePoolRecordsGauges(t *testing.T) {
	pool := &mockPool{stats: database.PoolStats{MaxConns: 20, TotalConns: 20, AcquiredConns: 20}}
	s := NewScheduler(nil, pool, nil, Intervals{})

	s.samplePool()

	assert.Equal(t, int32(1), pool.calls.Load())
	assert.Equal(t, float64(20), testutil.ToFloat64(metrics.DBPoolAcquiredConns))
	assert.Equal(t, float64(20), testutil.ToFloat64(metrics.DBPoolMaxConns))
}

func TestCleanupLogsToleratesErrors(t *testing.T) {
	logs := &mockLogCleaner{err: errors.New("permission denied")}
	s := NewScheduler(nil, nil, logs, Intervals{})

	s.cleanupLogs()

	assert.Equal(t, int32(1), logs.calls.Load())
}

func TestStartRunsJobs(t *testing.T) {
	evicter := &mockEvicter{}
	pool := &mockPool{stats: database.PoolStats{MaxConns: 20}}
	logs := &mockLogCleaner{}

	s := NewScheduler(evicter, pool, logs, Intervals{
		BucketEviction: 50 * time.Millisecond,
		PoolSampling:   50 * time.Millisecond,
		LogCleanup:     time.Hour,
	})
	assert.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return evicter.calls.Load() >= 1 && pool.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	// Log cleanup runs once at start, then daily
	assert.Eventually(t, func() bool { return logs.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestStartWithoutDependencies(t *testing.T) {
	s := NewScheduler(nil, nil, nil, Intervals{})
	assert.NoError(t, s.Start())
	assert.Empty(t, s.scheduler.Jobs())
	s.Stop()
}
