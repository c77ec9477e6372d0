// Package poll runs periodic background refreshes.
package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task is one periodic job.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// TaskStats counts what happened to a task across ticks.
type TaskStats struct {
	Runs     uint64
	Failures uint64
	Skipped  uint64
}

type taskState struct {
	Task
	inFlight atomic.Bool
	runs     atomic.Uint64
	failures atomic.Uint64
	skipped  atomic.Uint64
}

// Poller fires every registered task once per interval. A task whose previous
// run has not finished is skipped for that tick; tasks of one tick run
// concurrently.
type Poller struct {
	interval time.Duration
	timeout  time.Duration
	tasks    []*taskState
	logger   *zap.Logger

	wg sync.WaitGroup
}

// NewPoller creates a poller. timeout bounds a single task run; zero means
// one interval.
func NewPoller(interval, timeout time.Duration, logger *zap.Logger, tasks ...Task) *Poller {
	if timeout <= 0 {
		timeout = interval
	}
	p := &Poller{
		interval: interval,
		timeout:  timeout,
		logger:   logger.Named("poller"),
	}
	for _, t := range tasks {
		p.tasks = append(p.tasks, &taskState{Task: t})
	}
	return p
}

// Run ticks until ctx is cancelled, then waits for in-flight runs to return.
// The first tick happens one interval after start.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Starting poller",
		zap.Duration("interval", p.interval),
		zap.Int("tasks", len(p.tasks)))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				if err := p.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
					p.logger.Debug("Tick finished with errors", zap.Error(err))
				}
			}()
		case <-ctx.Done():
			p.wg.Wait()
			p.logger.Debug("Poller stopped")
			return
		}
	}
}

// Tick runs every task that is not already running and waits for them. It
// returns the first task error.
func (p *Poller) Tick(ctx context.Context) error {
	var g errgroup.Group

	for _, t := range p.tasks {
		if !t.inFlight.CompareAndSwap(false, true) {
			t.skipped.Add(1)
			p.logger.Debug("Skipping task still in flight", zap.String("task", t.Name))
			continue
		}

		g.Go(func() error {
			defer t.inFlight.Store(false)

			runCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()

			t.runs.Add(1)
			if err := t.Run(runCtx); err != nil {
				t.failures.Add(1)
				p.logger.Debug("Task failed", zap.String("task", t.Name), zap.Error(err))
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// Stats returns counters per task name.
func (p *Poller) Stats() map[string]TaskStats {
	out := make(map[string]TaskStats, len(p.tasks))
	for _, t := range p.tasks {
		out[t.Name] = TaskStats{
			Runs:     t.runs.Load(),
			Failures: t.failures.Load(),
			Skipped:  t.skipped.Load(),
		}
	}
	return out
}
