package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtavares/receiptwise/internal/domain/categorization"
	"github.com/mtavares/receiptwise/internal/domain/merchant"
	"github.com/mtavares/receiptwise/internal/domain/parser"
	"github.com/mtavares/receiptwise/internal/domain/receipts"
	"github.com/mtavares/receiptwise/internal/domain/receipts/handler"
	"github.com/mtavares/receiptwise/internal/domain/reminders"
	"github.com/mtavares/receiptwise/internal/domain/structurer"
	"github.com/mtavares/receiptwise/pkg/config"
	"github.com/mtavares/receiptwise/pkg/cron"
	"github.com/mtavares/receiptwise/pkg/db"
	"github.com/mtavares/receiptwise/pkg/metrics"
	"github.com/mtavares/receiptwise/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	Metrics *metrics.Metrics

	// Repositories and indexes
	ReceiptRepo receipts.Repository
	SearchIndex *receipts.SearchIndex

	// Services
	Parser         *parser.Parser
	Identifier     *merchant.Identifier
	Extractor      structurer.Extractor
	ReceiptService *receipts.Service
	Reminders      *reminders.Service

	// Background jobs
	Scheduler *cron.Scheduler

	// Handlers
	Server *handler.Server
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initServices initializes the parsing pipeline and receipt service
func (d *Dependencies) initServices(ctx context.Context) error {
	d.ReceiptRepo = receipts.NewPostgresRepository(d.DB.Pool)

	search, err := receipts.NewSearchIndex("")
	if err != nil {
		return fmt.Errorf("failed to init search index: %w", err)
	}
	d.SearchIndex = search

	d.Identifier = merchant.NewIdentifier()
	d.Parser = parser.New(
		parser.WithIdentifier(d.Identifier),
		parser.WithCategorizer(categorization.NewCategorizer()),
		parser.WithLogger(d.Logger),
	)

	opts := []receipts.ServiceOption{
		receipts.WithParseCounter(d.Metrics),
	}

	if d.Config.Archive.Path != "" {
		archive, err := storage.NewLocalArchive(d.Config.Archive.Path)
		if err != nil {
			return fmt.Errorf("failed to init raw text archive: %w", err)
		}
		opts = append(opts, receipts.WithArchive(archive))
		d.Logger.Info("raw text archive enabled", slog.String("path", d.Config.Archive.Path))
	}

	// LLM structuring is optional; without a key the local parser
	// handles everything.
	if d.Config.Gemini.APIKey != "" {
		extractor, err := structurer.NewGemini(ctx, d.Config.Gemini.APIKey, d.Config.Gemini.Models, d.Logger)
		if err != nil {
			return fmt.Errorf("failed to init gemini extractor: %w", err)
		}
		d.Extractor = extractor
		opts = append(opts, receipts.WithExtractor(extractor))
		d.Logger.Info("gemini structuring enabled", slog.Int("models", len(d.Config.Gemini.Models)))
	} else {
		d.Logger.Info("gemini structuring disabled, using local parser only")
	}

	d.ReceiptService = receipts.NewService(d.ReceiptRepo, d.SearchIndex, d.Parser, d.Logger, opts...)

	if d.Config.Reminders.Enabled {
		mailer := reminders.NewResendMailer(d.Config.Reminders.ResendKey, d.Config.Reminders.From, d.Logger)
		d.Reminders = reminders.NewService(
			d.ReceiptRepo,
			mailer,
			d.Config.Reminders.To,
			time.Duration(d.Config.Reminders.LeadDays)*24*time.Hour,
			d.Logger,
		)
		d.Scheduler = cron.NewScheduler(d.Reminders, d.Config.Reminders.Schedule, d.Logger)
	}

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes the HTTP layer
func (d *Dependencies) initHandlers() error {
	d.Server = handler.NewServer(d.ReceiptService, d.Identifier, handler.BasicAuth{
		Username:     d.Config.Auth.Username,
		Password:     d.Config.Auth.Password,
		PasswordHash: d.Config.Auth.PasswordHash,
	}, d.Logger)

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.SearchIndex != nil {
		if err := d.SearchIndex.Close(); err != nil {
			d.Logger.Warn("failed to close search index", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
