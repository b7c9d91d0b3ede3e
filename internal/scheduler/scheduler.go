// Package scheduler runs the background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/noswipe/noswipe-backend/internal/domain"
)

// Job is one named background task with a cron schedule.
type Job struct {
	Name     string
	CronExpr string
	Run      func(ctx context.Context) error
}

// Scheduler runs its jobs on their cron schedules until the context is
// cancelled. Each job runs in singleton mode, so a slow run is skipped
// rather than overlapped.
type Scheduler struct {
	Jobs []Job
}

func (s *Scheduler) Run(ctx context.Context) error {
	sched := gocron.NewScheduler(time.UTC)
	sched.SingletonModeAll()

	for _, job := range s.Jobs {
		_, err := sched.Cron(job.CronExpr).Do(func() {
			logger := domain.LoggerFromContext(ctx).With("job", job.Name)
			jobCtx := domain.ContextWithLogger(ctx, logger)

			logger.InfoContext(jobCtx, "starting scheduled job")
			if err := job.Run(jobCtx); err != nil {
				logger.ErrorContext(jobCtx, "scheduled job failed", "error", err)
				return
			}
			logger.InfoContext(jobCtx, "scheduled job complete")
		})
		if err != nil {
			return fmt.Errorf("scheduling job [%s] with expression [%s]: %w", job.Name, job.CronExpr, err)
		}
	}

	sched.StartAsync()
	<-ctx.Done()
	sched.Stop()

	return ctx.Err()
}
