package watcher

import (
	"context"
	"log/slog"
	"sync"

	"symindex/internal/core/ports"
	"symindex/internal/shared/util"
)

// Driver runs index cycles for a working directory when changes arrive.
// Cycles are paced by a token bucket; each call keeps stepping until the
// index reports no pending work or the context ends.
type Driver struct {
	trigger ports.IndexTrigger
	root    string
	limiter *util.Limiter
	log     *slog.Logger

	mu      sync.Mutex
	running bool
	again   bool
}

func NewDriver(trigger ports.IndexTrigger, root string, limiter *util.Limiter, logger *slog.Logger) *Driver {
	if limiter == nil {
		limiter = util.NewLimiter(0, 1)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{trigger: trigger, root: root, limiter: limiter, log: logger}
}

// Handle is the watcher callback. Changes that arrive while a cycle runs
// are folded into one follow-up cycle.
func (d *Driver) Handle(ctx context.Context, paths []string) {
	d.mu.Lock()
	if d.running {
		d.again = true
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.log.Debug("changes detected", "paths", len(paths))
	for {
		if err := d.Sync(ctx); err != nil {
			d.log.Warn("index cycle failed", "dir", d.root, "error", err)
		}

		d.mu.Lock()
		if !d.again || ctx.Err() != nil {
			d.running = false
			d.again = false
			d.mu.Unlock()
			return
		}
		d.again = false
		d.mu.Unlock()
	}
}

// Sync runs one build for the root, then drains pending work.
func (d *Driver) Sync(ctx context.Context) error {
	if err := d.pace(ctx); err != nil {
		return err
	}
	if err := d.trigger.BuildIndex(ctx, d.root); err != nil {
		return err
	}
	return d.Drain(ctx)
}

// Drain calls ProcessPendingFiles until nothing is pending.
func (d *Driver) Drain(ctx context.Context) error {
	for d.trigger.HasPendingFiles() {
		if err := d.pace(ctx); err != nil {
			return err
		}
		if err := d.trigger.ProcessPendingFiles(ctx); err != nil {
			return err
		}
	}
	return nil
}

// pace takes one token, waiting for it when the bucket is empty.
func (d *Driver) pace(ctx context.Context) error {
	if d.limiter.Allow(1) {
		return nil
	}
	d.log.Debug("index cycle throttled", "dir", d.root, "delay", d.limiter.Delay())
	return d.limiter.Wait(ctx, 1)
}
