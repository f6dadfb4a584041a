package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtavares/receiptwise/internal/domain/receipts"
)

// DeadlineLister is the slice of receipt storage the reminder job needs.
type DeadlineLister interface {
	ListDeadlinesWithin(ctx context.Context, now time.Time, lead time.Duration) ([]*receipts.StoredReceipt, error)
}

// Service finds receipts whose return windows are about to close and
// mails a digest.
type Service struct {
	repo   DeadlineLister
	mailer Mailer
	to     string
	lead   time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the reminder service.
type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a reminder service. to is the digest recipient and
// lead is how far ahead of the deadline reminders go out.
func NewService(repo DeadlineLister, mailer Mailer, to string, lead time.Duration, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if lead <= 0 {
		lead = 3 * 24 * time.Hour
	}
	s := &Service{
		repo:   repo,
		mailer: mailer,
		to:     to,
		lead:   lead,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendUpcoming mails one digest covering every receipt whose return
// deadline falls within the lead window. Returns how many receipts the
// digest covered.
func (s *Service) SendUpcoming(ctx context.Context) (int, error) {
	now := s.now().UTC()

	stored, err := s.repo.ListDeadlinesWithin(ctx, now, s.lead)
	if err != nil {
		return 0, fmt.Errorf("failed to list upcoming deadlines: %w", err)
	}

	upcoming := make([]Upcoming, 0, len(stored))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, sr := range stored {
		if sr.Receipt.ReturnDeadline == nil {
			continue
		}
		deadline, err := time.Parse("2006-01-02", *sr.Receipt.ReturnDeadline)
		if err != nil {
			s.logger.Warn("skipping receipt with malformed deadline",
				slog.String("id", sr.ID.String()),
				slog.String("deadline", *sr.Receipt.ReturnDeadline),
			)
			continue
		}
		upcoming = append(upcoming, Upcoming{
			Receipt:  sr,
			Deadline: *sr.Receipt.ReturnDeadline,
			DaysLeft: int(deadline.Sub(today).Hours() / 24),
		})
	}

	if len(upcoming) == 0 {
		s.logger.Debug("no return windows closing within lead window")
		return 0, nil
	}

	if err := s.mailer.SendDigest(s.to, upcoming); err != nil {
		return 0, fmt.Errorf("failed to send reminder digest: %w", err)
	}

	s.logger.Info("reminder digest sent",
		slog.String("to", s.to),
		slog.Int("receipts", len(upcoming)),
	)
	return len(upcoming), nil
}
