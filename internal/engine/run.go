package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/donaldgifford/marketplace-monitor/internal/config"
	"github.com/donaldgifford/marketplace-monitor/internal/metrics"
)

// Reloader supplies the configuration before every step of Run.
type Reloader interface {
	Reload(ctx context.Context) (*config.Config, bool, error)
}

// Run searches items one at a time, each when it is due, until ctx ends.
// The configuration is reloaded before every search and at least every
// reload interval while waiting; Reload blocks while the files are
// invalid. Run returns nil once ctx is canceled.
func (eng *Engine) Run(ctx context.Context, r Reloader) error {
	eng.log.Info("monitor started")
	defer eng.log.Info("monitor stopped")

	for {
		cfg, changed, err := r.Reload(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if changed || eng.cfg == nil {
			if err := eng.Apply(cfg); err != nil {
				eng.log.Error("applying configuration failed, keeping the previous one", "error", err)
				if eng.cfg == nil {
					return err
				}
				cfg = eng.cfg
			}
		}

		items := cfg.Items()
		eng.scheduler.Sync(items)
		item, due := eng.scheduler.Next(items)

		wait := eng.reloadInterval
		if item != nil {
			wait = min(due.Sub(eng.now()), eng.reloadInterval)
			if changed {
				for _, e := range eng.scheduler.Entries() {
					eng.log.Info("search planned", "item", e.Item, "at", e.Next.Format(time.DateTime))
				}
			}
		} else if changed {
			eng.log.Warn("no enabled items to search")
		}

		if item == nil || due.After(eng.now()) {
			if !sleep(ctx, wait) {
				return nil
			}
			continue
		}

		cycleID := uuid.NewString()
		start := eng.now()
		if err := eng.RunItem(ctx, item, cycleID); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			eng.log.Error("item failed", "item", item.Name, "cycle_id", cycleID, "error", err)
		}
		metrics.CycleDuration.Observe(eng.now().Sub(start).Seconds())
		metrics.LastCycleTimestamp.Set(float64(eng.now().Unix()))

		next := eng.scheduler.Done(item)
		eng.log.Info("next search planned", "item", item.Name, "at", next.Format(time.DateTime))
	}
}

// sleep waits for d or until ctx ends, and reports whether it slept.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
