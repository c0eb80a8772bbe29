// Package pipeline runs one tidify job: read a nested value from a
// source, flatten it into a tidy table and hand the table to a
// destination.
//
// # Basic Usage
//
//	p := pipeline.New(source, destination, cfg.ToOptions(), logger, collector)
//	summary, err := p.Run(ctx)
//	defer p.Close(ctx)
//
// Each stage runs inside its own span (tidify.read, tidify.tidy,
// tidify.write) under a tidify.run span, and its duration is recorded in
// the metrics collector.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/metrics"
	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/observability"
	"github.com/ajitpratap0/tidify/pkg/tidy"
)

// Stage names used for spans, metrics and logs
const (
	StageRead  = "read"
	StageTidy  = "tidy"
	StageWrite = "write"
)

// Pipeline wires a source to a destination through the flattener.
type Pipeline struct {
	Source      core.Source
	Destination core.Destination
	Options     tidy.Options
	Logger      *zap.Logger
	Metrics     *metrics.Collector
}

// Summary describes a finished run.
type Summary struct {
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	Rows        int           `json:"rows"`
	Columns     int           `json:"columns"`
	Collisions  int           `json:"collisions"`
	Stages      []StageTiming `json:"stages"`
	Duration    time.Duration `json:"duration"`
}

// StageTiming is how long one stage took.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// New creates a pipeline. A nil logger discards logs; a nil collector
// gets a private one.
func New(source core.Source, destination core.Destination, opts tidy.Options, logger *zap.Logger, collector *metrics.Collector) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.NewCollector("tidify")
	}
	return &Pipeline{
		Source:      source,
		Destination: destination,
		Options:     opts,
		Logger:      logger,
		Metrics:     collector,
	}
}

// Run executes the three stages in order and stops at the first error.
// The source and destination stay open; call Close when done.
func (p *Pipeline) Run(ctx context.Context) (summary Summary, err error) {
	logger := p.logger()
	summary = Summary{Source: p.Source.Name(), Destination: p.Destination.Name()}
	start := time.Now()

	ctx, span := observability.StartSpan(ctx, "tidify.run")
	span.SetAttribute("source", summary.Source)
	span.SetAttribute("destination", summary.Destination)
	defer func() {
		summary.Duration = time.Since(start)
		span.SetAttribute("rows", summary.Rows)
		span.SetAttribute("columns", summary.Columns)
		span.End(err)
		p.record(summary, err)
	}()

	logger.Info("starting run",
		zap.String("source", summary.Source),
		zap.String("destination", summary.Destination))

	var value nested.Value
	err = p.stage(ctx, &summary, StageRead, func(ctx context.Context) error {
		var readErr error
		value, readErr = p.Source.Read(ctx)
		return readErr
	})
	if err != nil {
		return summary, err
	}

	var table *tidy.Table
	collisions := newCollisionLog(logger, p.Metrics, p.Options.Collision)
	err = p.stage(ctx, &summary, StageTidy, func(ctx context.Context) error {
		opts := p.Options
		opts.OnCollision = collisions.hook(p.Options.OnCollision)

		var tidyErr error
		table, tidyErr = tidy.Tidify(value, opts)
		return tidyErr
	})
	summary.Collisions = collisions.count()
	if err != nil {
		return summary, err
	}
	summary.Rows = table.Len()
	summary.Columns = table.Width()

	err = p.stage(ctx, &summary, StageWrite, func(ctx context.Context) error {
		return p.Destination.Write(ctx, table)
	})
	if err != nil {
		return summary, err
	}

	logger.Info("run completed",
		zap.Int("rows", summary.Rows),
		zap.Int("columns", summary.Columns),
		zap.Int("collisions", summary.Collisions),
		zap.Duration("duration", time.Since(start)))
	return summary, nil
}

// Close closes the source and the destination and returns their errors
// joined.
func (p *Pipeline) Close(ctx context.Context) error {
	return errors.Join(p.Source.Close(ctx), p.Destination.Close(ctx))
}

func (p *Pipeline) stage(ctx context.Context, summary *Summary, name string, fn func(ctx context.Context) error) error {
	timer := metrics.NewTimer(name)
	err := observability.Trace(ctx, "tidify."+name, func(ctx context.Context, _ *observability.Span) error {
		return fn(ctx)
	})
	elapsed := timer.Stop()

	p.Metrics.ObserveStage(name, elapsed)
	summary.Stages = append(summary.Stages, StageTiming{Stage: name, Duration: elapsed})

	if err != nil {
		p.logger().Error("stage failed",
			zap.String("stage", name),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return err
	}
	p.logger().Debug("stage completed",
		zap.String("stage", name),
		zap.Duration("duration", elapsed))
	return nil
}

func (p *Pipeline) record(summary Summary, err error) {
	if err != nil {
		p.Metrics.RecordRun("failure")
		return
	}
	p.Metrics.RecordRun("success")
	p.Metrics.AddRows(summary.Source, summary.Destination, summary.Rows)
	p.Metrics.SetColumns(summary.Source, summary.Destination, summary.Columns)
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// collisionLog warns once per column and counts every collision.
type collisionLog struct {
	logger    *zap.Logger
	collector *metrics.Collector
	policy    tidy.CollisionPolicy

	mu    sync.Mutex
	seen  map[string]int
	total int
}

func newCollisionLog(logger *zap.Logger, collector *metrics.Collector, policy tidy.CollisionPolicy) *collisionLog {
	if policy == "" {
		policy = tidy.CollisionOverwrite
	}
	return &collisionLog{logger: logger, collector: collector, policy: policy, seen: make(map[string]int)}
}

func (c *collisionLog) hook(next func(column string)) func(column string) {
	return func(column string) {
		c.mu.Lock()
		c.total++
		c.seen[column]++
		first := c.seen[column] == 1
		c.mu.Unlock()

		c.collector.IncCollisions()
		if first {
			c.logger.Warn("column collision",
				zap.String("column", column),
				zap.String("policy", string(c.policy)))
		}
		if next != nil {
			next(column)
		}
	}
}

func (c *collisionLog) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}
