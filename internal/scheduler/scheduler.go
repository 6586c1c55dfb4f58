// Package scheduler provides cron-based background refresh for MemberFlow.
//
// It periodically dispatches refresh events (news, alerts, information,
// documents) so cached result slots stay warm without user interaction.
package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/gremialdev/memberflow/internal/bus"
	"github.com/gremialdev/memberflow/internal/models"
)

// Scheduler provides cron-based job scheduling.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates and starts a cron scheduler.
func NewScheduler() *Scheduler {
	// Use standard 5-field cron parser (min, hour, dom, month, dow) and enable recovery
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// AddJob schedules a task using the provided cron expression.
// It returns an error if the expression is invalid.
func (s *Scheduler) AddJob(expr string, task func()) error {
	_, err := s.cron.AddFunc(expr, task)
	return err
}

// ScheduleRefresh dispatches the read-only refresh events on the given cron
// expression. Refreshes are best-effort; watcher-side failures are silent.
func (s *Scheduler) ScheduleRefresh(expr string, b *bus.Bus) error {
	err := s.AddJob(expr, func() {
		slog.Debug("Scheduler: dispatching background refresh events", "cron", expr)
		b.Dispatch(models.Event{Kind: models.EventGetNews})
		b.Dispatch(models.Event{Kind: models.EventGetAlerts})
		b.Dispatch(models.Event{Kind: models.EventGetInformation})
		b.Dispatch(models.Event{Kind: models.EventGetDocuments})
	})
	if err != nil {
		return err
	}
	slog.Info("Scheduler: background refresh scheduled", "cron", expr)
	return nil
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
