// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mtavares/receiptwise/internal/domain/reminders"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	reminders *reminders.Service
	schedule  string
	logger    *slog.Logger
}

// NewScheduler creates a new job scheduler. schedule is a standard
// 5-field cron expression; empty means daily at 8:00 AM.
func NewScheduler(remindersSvc *reminders.Service, schedule string, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	if schedule == "" {
		schedule = "0 8 * * *"
	}

	return &Scheduler{
		cron:      c,
		reminders: remindersSvc,
		schedule:  schedule,
		logger:    logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.sendReturnReminders)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.schedule),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the reminder job (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.sendReturnReminders()
}

// sendReturnReminders mails the daily return-window digest.
func (s *Scheduler) sendReturnReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.logger.Info("starting daily return reminder job")

	count, err := s.reminders.SendUpcoming(ctx)
	if err != nil {
		s.logger.Error("return reminder job failed", slog.Any("error", err))
		return
	}

	s.logger.Info("daily return reminder job completed",
		slog.Int("receipts", count),
	)
}
