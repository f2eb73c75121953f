package refresh

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler runs refreshes and digests on cron schedules. Runs of the same
// job never overlap.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

// NewScheduler returns a stopped scheduler whose jobs run with ctx.
func NewScheduler(ctx context.Context) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx: ctx,
	}
}

// AddRefresh schedules r. An empty spec schedules nothing.
func (s *Scheduler) AddRefresh(spec string, r *Refresher) error {
	return s.add("refresh", spec, func(ctx context.Context) {
		if _, err := r.Refresh(ctx); err != nil {
			log.Printf("scheduler: %v", err)
		}
	})
}

// AddDigest schedules d. An empty spec schedules nothing.
func (s *Scheduler) AddDigest(spec string, d *Digester) error {
	return s.add("digest", spec, func(ctx context.Context) {
		if _, err := d.Send(ctx); err != nil {
			log.Printf("scheduler: %v", err)
		}
	})
}

func (s *Scheduler) add(name, spec string, job func(context.Context)) error {
	if spec == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { job(s.ctx) }); err != nil {
		return fmt.Errorf("scheduler: %s %q: %w", name, spec, err)
	}
	log.Printf("scheduler: %s scheduled at %q", name, spec)
	return nil
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int { return len(s.cron.Entries()) }

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
