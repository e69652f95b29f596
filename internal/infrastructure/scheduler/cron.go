package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"listradar/internal/ports"
)

// CronScheduler runs jobs on a cron expression in a configured timezone.
type CronScheduler struct {
	spec string
	loc  *time.Location
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler from a cron expression and location.
func NewCronScheduler(spec string, loc *time.Location) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{spec: spec, loc: loc}
}

// Start registers the job and begins the schedule. Idempotent: a second
// Start on a running scheduler is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil || c.cron != nil {
		return nil
	}

	runner := cron.New(cron.WithLocation(c.loc))
	if _, err := runner.AddFunc(c.spec, func() {
		job(time.Now().In(c.loc))
	}); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", c.spec, err)
	}

	c.cron = runner
	runner.Start()

	go func() {
		<-ctx.Done()
		runner.Stop()
	}()

	return nil
}

// Stop halts the schedule; in-flight jobs finish.
func (c *CronScheduler) Stop(ctx context.Context) error {
	if c.cron == nil {
		return nil
	}
	c.cron.Stop()
	c.cron = nil
	return nil
}
