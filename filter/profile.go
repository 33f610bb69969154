package filter

import (
	"context"
	"sort"
	"time"

	"github.com/hupe1980/voxelpipe"
	"github.com/hupe1980/voxelpipe/model"
)

// Profile wraps an upstream provider and reports per-serve timing: the
// wall time of every serve goes to the metrics collector, and the
// accumulated per-stage timings carried in the batch are logged.
type Profile struct {
	upstream voxelpipe.Provider
	name     string
	opts     options
}

// NewProfile creates the stage. name labels this pipeline position in
// logs and in the batch timings.
func NewProfile(upstream voxelpipe.Provider, name string, optFns ...Option) *Profile {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Profile{
		upstream: upstream,
		name:     name,
		opts:     opts,
	}
}

// Extents passes the upstream extents through unchanged.
func (f *Profile) Extents(ctx context.Context) (model.Extents, error) {
	return f.upstream.Extents(ctx)
}

func (f *Profile) Serve(ctx context.Context, req model.Request) (*model.Batch, error) {
	start := time.Now()
	batch, err := f.upstream.Serve(ctx, req)
	elapsed := time.Since(start)

	f.opts.metrics.RecordServe(elapsed, err)
	if err != nil {
		f.opts.logger.ErrorContext(ctx, "serve failed",
			"pipeline", f.name,
			"request", req.String(),
			"elapsed", elapsed,
			"error", err,
		)
		return nil, err
	}

	batch.Timings.Add(f.name, elapsed)

	attrs := make([]any, 0, 2*len(batch.Timings)+4)
	attrs = append(attrs, "pipeline", f.name, "elapsed", elapsed)
	for _, stage := range sortedStages(batch.Timings) {
		attrs = append(attrs, stage, batch.Timings[stage])
	}
	f.opts.logger.InfoContext(ctx, "serve completed", attrs...)

	return batch, nil
}

var _ voxelpipe.Provider = (*Profile)(nil)

func sortedStages(t model.Timings) []string {
	stages := make([]string, 0, len(t))
	for stage := range t {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	return stages
}
