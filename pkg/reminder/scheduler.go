package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const runTimeout = 5 * time.Minute

// Scheduler runs the reminder job on a standard five field cron schedule.
type Scheduler struct {
	cron *cron.Cron
	job  *Job
}

func NewScheduler(schedule string, job *Job) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	s := &Scheduler{cron: c, job: job}
	if _, err := c.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	log.Infof("starting reminder scheduler, next run at %s", s.Next().Format(time.RFC3339))
	s.cron.Start()
}

// Stop prevents further runs; the returned context is done when a running job has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if !entries[0].Next.IsZero() {
		return entries[0].Next
	}
	return entries[0].Schedule.Next(time.Now())
}

func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	if _, err := s.job.Run(ctx); err != nil {
		log.Errorf("reminder run failed: %v", err)
	}
}
