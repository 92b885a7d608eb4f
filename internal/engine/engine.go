// Package engine drives the multi-instrument decision loop. Every tick it
// fans one cycle out across all strategies and waits for the stragglers, so a
// slow or failing instrument never stalls or kills the others.
package engine

import (
	"context"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"signalbot/internal/metrics"
)

// Runner is one instrument's cycle entry point. *strategy.Strategy satisfies
// it; tests substitute fakes.
type Runner interface {
	Figi() string
	Enabled() bool
	RunCycle(ctx context.Context) error
}

// Engine executes cycles over a fixed set of strategies.
type Engine struct {
	strategies []Runner
	interval   time.Duration
	metrics    *metrics.Metrics
	health     *metrics.HealthStatus
}

// Option tweaks an Engine at construction.
type Option func(*Engine)

// WithMetrics attaches cycle counters and timings.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithHealth lets the engine stamp the health status after each cycle.
func WithHealth(h *metrics.HealthStatus) Option {
	return func(e *Engine) { e.health = h }
}

// New builds an engine over the given strategies. Interval is the pause
// between cycle starts; zero means the caller drives cycles manually.
func New(strategies []Runner, interval time.Duration, opts ...Option) *Engine {
	e := &Engine{strategies: strategies, interval: interval}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunCycle runs one cycle for every enabled strategy concurrently and waits
// for all of them. One instrument's error or panic is logged and counted but
// never reaches its siblings; the engine itself only fails on a cancelled
// context.
func (e *Engine) RunCycle(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	started := time.Now()

	var wg sync.WaitGroup
	for _, s := range e.strategies {
		if !s.Enabled() {
			continue
		}
		wg.Add(1)
		go func(s Runner) {
			defer wg.Done()
			e.runOne(ctx, s)
		}(s)
	}
	wg.Wait()

	if e.metrics != nil {
		e.metrics.CyclesTotal.Inc()
		e.metrics.CycleDur.Observe(time.Since(started).Seconds())
	}
	if e.health != nil {
		e.health.SetLastCycleAt(time.Now().UTC())
	}
	return nil
}

func (e *Engine) runOne(ctx context.Context, s Runner) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[engine] %s: cycle panic: %v\n%s", s.Figi(), r, debug.Stack())
			if e.metrics != nil {
				e.metrics.CycleFailures.WithLabelValues(s.Figi()).Inc()
			}
		}
	}()

	if err := s.RunCycle(ctx); err != nil {
		log.Printf("[engine] %s: cycle error: %v", s.Figi(), err)
		if e.metrics != nil {
			e.metrics.CycleFailures.WithLabelValues(s.Figi()).Inc()
		}
	}
}

// Run blocks, executing a cycle immediately and then once per interval until
// ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if e.interval <= 0 {
		e.interval = time.Minute
	}
	log.Printf("[engine] starting loop: %d strategies, cycle every %s", len(e.strategies), e.interval)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		if err := e.RunCycle(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			log.Println("[engine] stopping: context cancelled")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
