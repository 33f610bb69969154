package voxelpipe

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordServe is called after each top-level serve operation.
	// duration is the total time taken, err is nil if successful.
	RecordServe(duration time.Duration, err error)

	// RecordSubRequest is called after each upstream sub-request.
	RecordSubRequest(duration time.Duration, err error)

	// RecordSchedule is called after a tiling schedule has been built.
	// subRequests is the number of sub-requests in the schedule.
	RecordSchedule(subRequests int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordServe(time.Duration, error)      {}
func (NoopMetricsCollector) RecordSubRequest(time.Duration, error) {}
func (NoopMetricsCollector) RecordSchedule(int)                    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ServeCount           atomic.Int64
	ServeErrors          atomic.Int64
	ServeTotalNanos      atomic.Int64
	SubRequestCount      atomic.Int64
	SubRequestErrors     atomic.Int64
	SubRequestTotalNanos atomic.Int64
	ScheduleCount        atomic.Int64
	ScheduledSubRequests atomic.Int64
}

func (c *BasicMetricsCollector) RecordServe(d time.Duration, err error) {
	c.ServeCount.Add(1)
	c.ServeTotalNanos.Add(int64(d))
	if err != nil {
		c.ServeErrors.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordSubRequest(d time.Duration, err error) {
	c.SubRequestCount.Add(1)
	c.SubRequestTotalNanos.Add(int64(d))
	if err != nil {
		c.SubRequestErrors.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordSchedule(subRequests int) {
	c.ScheduleCount.Add(1)
	c.ScheduledSubRequests.Add(int64(subRequests))
}

// AvgServeDuration returns the mean duration of all recorded serves.
func (c *BasicMetricsCollector) AvgServeDuration() time.Duration {
	count := c.ServeCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(c.ServeTotalNanos.Load() / count)
}
