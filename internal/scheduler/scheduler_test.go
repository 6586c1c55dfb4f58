package scheduler

import (
	"testing"

	"github.com/gremialdev/memberflow/internal/bus"
)

func TestAddJobRejectsInvalidExpression(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	if err := s.AddJob("not a cron", func() {}); err == nil {
		t.Error("expected error for invalid cron expression")
	}
	if err := s.AddJob("*/5 * * * *", func() {}); err != nil {
		t.Errorf("unexpected error for valid expression: %v", err)
	}
}

func TestScheduleRefreshValidatesExpression(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	b := bus.New()
	defer b.Close()

	if err := s.ScheduleRefresh("bogus", b); err == nil {
		t.Error("expected error for invalid cron expression")
	}
	if err := s.ScheduleRefresh("0 * * * *", b); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
