package filter

import (
	"github.com/hupe1980/voxelpipe"
)

type options struct {
	radius  int64
	logger  *voxelpipe.Logger
	metrics voxelpipe.MetricsCollector
}

func defaultOptions() options {
	return options{
		logger:  voxelpipe.NoopLogger(),
		metrics: voxelpipe.NoopMetricsCollector{},
	}
}

// Option configures a filter stage.
type Option func(*options)

// WithRadius sets the Chebyshev radius used by stages that mark or
// clear neighborhoods around voxels.
func WithRadius(r int64) Option {
	return func(o *options) {
		if r >= 0 {
			o.radius = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *voxelpipe.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics voxelpipe.MetricsCollector) Option {
	return func(o *options) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}
