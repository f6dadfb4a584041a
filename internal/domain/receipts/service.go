package receipts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mtavares/receiptwise/internal/domain/insights"
	"github.com/mtavares/receiptwise/internal/domain/parser"
	"github.com/mtavares/receiptwise/internal/domain/structurer"
	"github.com/mtavares/receiptwise/pkg/storage"
)

// ParseCounter records how receipts were parsed, keyed by source.
type ParseCounter interface {
	ReceiptParsed(source string)
}

// Service coordinates parsing, persistence and search for receipts.
type Service struct {
	repo      Repository
	search    *SearchIndex
	parser    *parser.Parser
	extractor structurer.Extractor // nil when no LLM is configured
	counter   ParseCounter         // nil when metrics are disabled
	archive   storage.Archive      // nil when raw text archival is disabled
	logger    *slog.Logger
	now       func() time.Time
}

// ServiceOption configures optional service dependencies.
type ServiceOption func(*Service)

// WithExtractor enables LLM-backed structuring. The local parser remains
// the fallback when the extractor fails.
func WithExtractor(e structurer.Extractor) ServiceOption {
	return func(s *Service) { s.extractor = e }
}

// WithArchive keeps a copy of the original OCR text outside the database.
func WithArchive(a storage.Archive) ServiceOption {
	return func(s *Service) { s.archive = a }
}

// WithParseCounter enables parse-source metrics.
func WithParseCounter(c ParseCounter) ServiceOption {
	return func(s *Service) { s.counter = c }
}

// WithServiceClock overrides the wall clock.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a receipt service.
func NewService(repo Repository, search *SearchIndex, p *parser.Parser, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:   repo,
		search: search,
		parser: p,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse structures raw OCR text without persisting the result. It never
// returns an error: unusable input yields sample data instead.
func (s *Service) Parse(ctx context.Context, rawText string) parser.Receipt {
	receipt, source := s.structure(ctx, rawText)
	s.countParse(source)
	return receipt
}

// Ingest structures raw OCR text, persists the result and indexes it for
// search. Parsing itself never fails; only storage errors surface.
func (s *Service) Ingest(ctx context.Context, rawText string) (*StoredReceipt, error) {
	receipt, source := s.structure(ctx, rawText)
	s.countParse(source)

	sr := &StoredReceipt{
		ID:        uuid.New(),
		CreatedAt: s.now().UTC(),
		Source:    source,
		RawText:   rawText,
		Receipt:   receipt,
	}

	if err := s.repo.Save(ctx, sr); err != nil {
		return nil, fmt.Errorf("failed to save receipt: %w", err)
	}

	if s.search != nil {
		if err := s.search.IndexReceipt(sr); err != nil {
			// The receipt is already stored, so indexing failures only
			// degrade search.
			s.logger.Warn("failed to index receipt", slog.String("id", sr.ID.String()), slog.Any("error", err))
		}
	}

	if s.archive != nil && rawText != "" {
		if err := s.archive.Put(ctx, sr.ID, rawText); err != nil {
			s.logger.Warn("failed to archive raw text", slog.String("id", sr.ID.String()), slog.Any("error", err))
		}
	}

	s.logger.Info("receipt ingested",
		slog.String("id", sr.ID.String()),
		slog.String("merchant", sr.Receipt.Merchant),
		slog.String("source", string(sr.Source)),
		slog.Int("items", sr.Receipt.ItemCount()),
	)
	return sr, nil
}

// structure runs the LLM extractor when configured and falls back to the
// local parser on any failure, so callers always get a receipt.
func (s *Service) structure(ctx context.Context, rawText string) (parser.Receipt, Source) {
	if s.extractor != nil && strings.TrimSpace(rawText) != "" {
		receipt, err := s.extractor.Structure(ctx, rawText)
		if err == nil {
			return receipt, SourceLLM
		}
		s.logger.Warn("llm structuring failed, using local parser", slog.Any("error", err))
	}

	receipt := s.parser.Parse(rawText)
	return receipt, sourceOf(receipt)
}

func (s *Service) countParse(source Source) {
	if s.counter != nil {
		s.counter.ReceiptParsed(string(source))
	}
}

// Get retrieves a stored receipt by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*StoredReceipt, error) {
	sr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return sr, nil
}

// List returns stored receipts, newest first, plus the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*StoredReceipt, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Delete removes a receipt from storage and the search index.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	if s.search != nil {
		if err := s.search.DeleteReceipt(id); err != nil {
			s.logger.Warn("failed to unindex receipt", slog.String("id", id.String()), slog.Any("error", err))
		}
	}
	if s.archive != nil {
		if err := s.archive.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to delete archived text", slog.String("id", id.String()), slog.Any("error", err))
		}
	}
	return nil
}

// Search runs a fuzzy full-text query over stored receipts.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if s.search == nil {
		return nil, errors.New("search index not configured")
	}
	return s.search.Search(query, limit)
}

// Summary aggregates spending across all stored receipts.
func (s *Service) Summary(ctx context.Context) (insights.SpendingSummary, error) {
	stored, _, err := s.repo.List(ctx, summaryBatchSize, 0)
	if err != nil {
		return insights.SpendingSummary{}, fmt.Errorf("failed to load receipts: %w", err)
	}
	receipts := make([]parser.Receipt, 0, len(stored))
	for _, sr := range stored {
		receipts = append(receipts, sr.Receipt)
	}
	return insights.Summarize(receipts), nil
}

// summaryBatchSize bounds how many receipts a summary covers.
const summaryBatchSize = 1000

// Speakable renders a stored receipt as a voice-assistant sentence.
func (s *Service) Speakable(ctx context.Context, id uuid.UUID) (string, error) {
	sr, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return insights.Speakable(sr.Receipt), nil
}
