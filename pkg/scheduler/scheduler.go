package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"cloudspend-hq/warden/pkg/governor"
)

// CycleRunner runs one check cycle. *governor.Governor implements it.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*governor.Summary, error)
}

// Scheduler triggers periodic check cycles from a cron expression.
type Scheduler struct {
	governor CycleRunner
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	entryID cron.EntryID
	running bool
}

// New creates a cycle scheduler. An empty schedule disables it: cycles
// then run only on demand through the HTTP API.
func New(g CycleRunner, schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default().With("component", "scheduler")
	}
	return &Scheduler{
		governor: g,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start begins scheduled cycles. It returns immediately; cycles run on
// the cron goroutine until the context is cancelled or Stop is called.
//
// Common expressions:
//   - "*/10 * * * *" - every 10 minutes
//   - "0 * * * *"    - hourly on the hour
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("check schedule not configured, scheduler idle")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule check cycles: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.running = true
	s.logger.Info("check scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runCycle executes one scheduled cycle.
func (s *Scheduler) runCycle(ctx context.Context) {
	s.logger.Info("starting scheduled check cycle")

	summary, err := s.governor.RunCycle(ctx)
	if err != nil {
		s.logger.Error("scheduled check cycle failed", "error", err)
		return
	}

	s.logger.Info("scheduled check cycle completed",
		"duration", summary.Duration,
		"services", len(summary.Services),
		"degraded", summary.Degraded(),
	)
}

// NextRun returns the time of the next scheduled cycle, or the zero time
// when the scheduler is idle.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Stop stops the scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("check scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
