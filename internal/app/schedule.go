package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/meiri-hq/meiri-yaowen/internal/logger"
)

// RunEvery runs fn immediately and then on the given interval until ctx
// is cancelled. A failing cycle is logged and the schedule continues;
// the trigger lives entirely outside the pipeline so the pipeline stays
// a plain callable. Overlapping cycles are not guarded against: a run
// is expected to finish well within the interval.
func RunEvery(ctx context.Context, interval time.Duration, log logger.Logger, fn func(context.Context) error) {
	if log == nil {
		log = logger.NopLogger{}
	}

	cycle := func() {
		if err := fn(ctx); err != nil {
			log.ErrorObj("scheduled cycle failed", "schedule_cycle_error", map[string]any{
				"error": err.Error(),
			})
		}
	}

	cycle()

	c := cron.New()
	c.Schedule(cron.Every(interval), cron.FuncJob(cycle))
	c.Start()
	log.InfoObj("scheduler started", "schedule_started", map[string]any{
		"interval": interval.String(),
	})

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
}
