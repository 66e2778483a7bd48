package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "github.com/techtech0521/schedule-timeline/internal/log"
)

// Scheduler runs jobs on standard 5-field cron specs. Jobs receive a
// context that is canceled by Stop.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Validate reports whether spec parses as a 5-field cron expression.
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("scheduler: invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// Schedule registers job under name. A run that is still going when the
// next tick fires is not overlapped.
func (s *Scheduler) Schedule(name, spec string, job func(ctx context.Context) error) error {
	if err := Validate(spec); err != nil {
		return err
	}
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := job(s.ctx); err != nil {
			appLog.Error("scheduled job failed", err, "job", name)
			return
		}
		appLog.Debug("scheduled job done", "job", name, "took", time.Since(start))
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler, cancels running jobs and waits for them to
// return, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Serial wraps a job so concurrent callers (a cron tick and a manual
// refresh) run it one at a time.
type Serial struct {
	mu  sync.Mutex
	job func(ctx context.Context) error
}

func NewSerial(job func(ctx context.Context) error) *Serial {
	return &Serial{job: job}
}

func (o *Serial) Run(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.job(ctx)
}
