package scheduler

import (
	"context"
	"sync/atomic"
	"testing"

	"cloudspend-hq/warden/pkg/governor"
)

type fakeRunner struct {
	cycles atomic.Int64
}

func (f *fakeRunner) RunCycle(context.Context) (*governor.Summary, error) {
	f.cycles.Add(1)
	return &governor.Summary{}, nil
}

func TestScheduler_EmptyScheduleIdle(t *testing.T) {
	s := New(&fakeRunner{}, "", nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler should stay idle without a schedule")
	}
	if !s.NextRun().IsZero() {
		t.Error("idle scheduler should report zero next run")
	}
}

func TestScheduler_InvalidExpression(t *testing.T) {
	s := New(&fakeRunner{}, "not a cron expr", nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(&fakeRunner{}, "*/10 * * * *", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("scheduler should be running")
	}
	if s.NextRun().IsZero() {
		t.Error("running scheduler should report a next run time")
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler should stop")
	}
}
