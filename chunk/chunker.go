package chunk

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/voxelpipe"
	"github.com/hupe1980/voxelpipe/model"
	"github.com/hupe1980/voxelpipe/pool"
)

const (
	// DefaultNumWorkers is the number of concurrent upstream workers
	// used when no option overrides it.
	DefaultNumWorkers = 20

	// DefaultCacheSize is the capacity of the bounded result buffer
	// used when no option overrides it.
	DefaultCacheSize = 50
)

type options struct {
	numWorkers int
	cacheSize  int
	rateLimit  rate.Limit
	rateBurst  int
	logger     *voxelpipe.Logger
	metrics    voxelpipe.MetricsCollector
}

// Option configures a Chunker.
type Option func(*options)

// WithNumWorkers configures the number of concurrent workers forwarding
// sub-requests upstream. A value of 1 disables the pool entirely: the
// chunker calls upstream synchronously in schedule order, which makes
// overlap-region content fully deterministic.
func WithNumWorkers(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.numWorkers = n
		}
	}
}

// WithCacheSize configures the capacity of the bounded result buffer.
// Workers block once the buffer is full; assembly blocks once it is
// empty.
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.cacheSize = n
		}
	}
}

// WithRateLimit throttles upstream sub-requests to the given number of
// requests per second. Zero or negative disables throttling.
func WithRateLimit(perSecond float64) Option {
	return func(o *options) {
		if perSecond > 0 {
			o.rateLimit = rate.Limit(perSecond)
			o.rateBurst = 1
		}
	}
}

// WithLogger configures the logger. Nil restores the default.
func WithLogger(l *voxelpipe.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics configures a metrics collector. Nil disables collection.
func WithMetrics(m voxelpipe.MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = voxelpipe.NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

// Chunker assembles a large batch by requesting smaller chunks upstream.
//
// It is a pipeline stage like any other: it exposes the same Provider
// contract it consumes, so it composes freely with sources and filters.
type Chunker struct {
	upstream voxelpipe.Provider
	template Template

	numWorkers int
	cacheSize  int
	limiter    *rate.Limiter
	logger     *voxelpipe.Logger
	metrics    voxelpipe.MetricsCollector
}

var _ voxelpipe.Provider = (*Chunker)(nil)

// NewChunker creates a chunker that covers oversized requests with
// chunks shaped by the template. Template validation failures (mixed
// dimensionality, empty template) surface here, before any request is
// accepted.
func NewChunker(upstream voxelpipe.Provider, tmpl Template, optFns ...Option) (*Chunker, error) {
	o := options{
		numWorkers: DefaultNumWorkers,
		cacheSize:  DefaultCacheSize,
		logger:     voxelpipe.NewTextLogger(slog.LevelInfo),
		metrics:    voxelpipe.NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&o)
	}

	if _, err := tmpl.Dims(); err != nil {
		return nil, err
	}

	c := &Chunker{
		upstream:   upstream,
		template:   Template(model.Request(tmpl).Clone()),
		numWorkers: o.numWorkers,
		cacheSize:  o.cacheSize,
		logger:     o.logger.WithStage("chunker"),
		metrics:    o.metrics,
	}
	if o.rateLimit > 0 {
		c.limiter = rate.NewLimiter(o.rateLimit, o.rateBurst)
	}
	return c, nil
}

// Extents passes the upstream extents through unchanged: the chunker can
// serve everything its upstream can.
func (c *Chunker) Extents(ctx context.Context) (model.Extents, error) {
	return c.upstream.Extents(ctx)
}

// Serve builds a fresh tiling schedule for the request, realizes every
// sub-request upstream and merges the sub-batches into one output batch.
//
// A request either fully completes or fails: any upstream error aborts
// the in-flight request without retry, and no partial batch is returned.
func (c *Chunker) Serve(ctx context.Context, req model.Request) (*model.Batch, error) {
	start := time.Now()

	batch, err := c.serve(ctx, req)

	c.metrics.RecordServe(time.Since(start), err)
	c.logger.LogServe(ctx, req, err)
	if err != nil {
		return nil, err
	}

	batch.Timings.Add("chunker", time.Since(start))
	return batch, nil
}

func (c *Chunker) serve(ctx context.Context, req model.Request) (*model.Batch, error) {
	sched, err := BuildSchedule(req.Clone(), c.template)
	if err != nil {
		return nil, err
	}
	c.logger.LogSchedule(ctx, sched.Len())
	c.metrics.RecordSchedule(sched.Len())

	asm := newAssembler(req, c.logger)

	if c.numWorkers > 1 {
		if err := c.serveConcurrent(ctx, sched, asm); err != nil {
			return nil, err
		}
	} else {
		for _, sub := range sched.SubRequests {
			subBatch, err := c.call(ctx, sub)
			if err != nil {
				return nil, err
			}
			if err := asm.merge(ctx, subBatch); err != nil {
				return nil, err
			}
		}
	}

	return asm.finish()
}

// serveConcurrent drains the schedule through a bounded worker pool. The
// pool lives for one top-level request: shutting it down afterwards
// discards whatever was still in flight when the request failed, so a
// failed request never leaks stale sub-batches into the next one.
func (c *Chunker) serveConcurrent(ctx context.Context, sched *Schedule, asm *assembler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := pool.New[*model.Batch](c.numWorkers, c.cacheSize)
	p.Start(ctx)
	defer p.Stop()

	submitErr := make(chan error, 1)
	go func() {
		for _, sub := range sched.SubRequests {
			sub := sub
			err := p.Submit(ctx, func(taskCtx context.Context) (*model.Batch, error) {
				return c.call(taskCtx, sub)
			})
			if err != nil {
				submitErr <- err
				return
			}
		}
		submitErr <- nil
	}()

	for i := 0; i < sched.Len(); i++ {
		subBatch, err := p.Get(ctx)
		if err != nil {
			cancel()
			<-submitErr
			return err
		}
		if err := asm.merge(ctx, subBatch); err != nil {
			cancel()
			<-submitErr
			return err
		}
	}

	return <-submitErr
}

// call forwards one sub-request unchanged to the upstream provider.
func (c *Chunker) call(ctx context.Context, sub model.Request) (*model.Batch, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	batch, err := c.upstream.Serve(ctx, sub)
	c.metrics.RecordSubRequest(time.Since(start), err)

	return batch, err
}
