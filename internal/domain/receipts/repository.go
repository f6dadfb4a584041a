package receipts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mtavares/receiptwise/internal/domain/parser"
)

// ErrNotFound is returned when a receipt does not exist.
var ErrNotFound = errors.New("receipt not found")

// Repository defines receipt persistence.
type Repository interface {
	Save(ctx context.Context, r *StoredReceipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*StoredReceipt, error)
	List(ctx context.Context, limit, offset int) ([]*StoredReceipt, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListDeadlinesWithin returns receipts whose return deadline falls
	// between now and now+lead, for reminder scheduling.
	ListDeadlinesWithin(ctx context.Context, now time.Time, lead time.Duration) ([]*StoredReceipt, error)
}

// PostgresRepository implements Repository using PostgreSQL. Line items
// are stored as a JSONB document alongside the scalar columns so the
// row mirrors the Receipt value exactly.
type PostgresRepository struct {
	pool querier
}

// querier is the subset of pgxpool.Pool the repository uses; tests
// substitute a pgxmock pool.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPostgresRepository creates a PostgreSQL-backed receipt repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const receiptColumns = `id, created_at, source, raw_text, merchant, purchase_date, items,
	total, subtotal, tax, payment_method, return_policy_days, return_deadline,
	parsed_from_ocr, is_sample_data`

// Save inserts a receipt row.
func (r *PostgresRepository) Save(ctx context.Context, sr *StoredReceipt) error {
	items, err := json.Marshal(sr.Receipt.Items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}

	query := `
		INSERT INTO receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = r.pool.Exec(ctx, query,
		sr.ID, sr.CreatedAt, sr.Source, sr.RawText,
		sr.Receipt.Merchant, sr.Receipt.Date, items,
		sr.Receipt.Total, sr.Receipt.Subtotal, sr.Receipt.Tax,
		sr.Receipt.PaymentMethod, sr.Receipt.ReturnPolicyDays, sr.Receipt.ReturnDeadline,
		sr.Receipt.ParsedFromOCR, sr.Receipt.IsSampleData,
	)
	if err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	return nil
}

// GetByID retrieves a single receipt.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*StoredReceipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE id = $1`

	sr, err := scanReceipt(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return sr, nil
}

// List returns receipts ordered newest first, plus the total count.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*StoredReceipt, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count receipts: %w", err)
	}

	query := `
		SELECT ` + receiptColumns + `
		FROM receipts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var out []*StoredReceipt
	for rows.Next() {
		sr, err := scanReceipt(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan receipt: %w", err)
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read receipts: %w", err)
	}
	return out, total, nil
}

// Delete removes a receipt.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDeadlinesWithin returns receipts whose return deadline is between
// now and now+lead, oldest deadline first.
func (r *PostgresRepository) ListDeadlinesWithin(ctx context.Context, now time.Time, lead time.Duration) ([]*StoredReceipt, error) {
	from := now.UTC().Format("2006-01-02")
	to := now.UTC().Add(lead).Format("2006-01-02")

	query := `
		SELECT ` + receiptColumns + `
		FROM receipts
		WHERE return_deadline IS NOT NULL
		  AND return_deadline >= $1
		  AND return_deadline <= $2
		ORDER BY return_deadline ASC
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming deadlines: %w", err)
	}
	defer rows.Close()

	var out []*StoredReceipt
	for rows.Next() {
		sr, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read receipts: %w", err)
	}
	return out, nil
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (*StoredReceipt, error) {
	var (
		sr    StoredReceipt
		items []byte
		total, subtotal, tax decimal.Decimal
	)
	err := row.Scan(
		&sr.ID, &sr.CreatedAt, &sr.Source, &sr.RawText,
		&sr.Receipt.Merchant, &sr.Receipt.Date, &items,
		&total, &subtotal, &tax,
		&sr.Receipt.PaymentMethod, &sr.Receipt.ReturnPolicyDays, &sr.Receipt.ReturnDeadline,
		&sr.Receipt.ParsedFromOCR, &sr.Receipt.IsSampleData,
	)
	if err != nil {
		return nil, err
	}
	sr.Receipt.Total = total
	sr.Receipt.Subtotal = subtotal
	sr.Receipt.Tax = tax
	if len(items) > 0 {
		if err := json.Unmarshal(items, &sr.Receipt.Items); err != nil {
			return nil, fmt.Errorf("failed to decode items: %w", err)
		}
	}
	if sr.Receipt.Items == nil {
		sr.Receipt.Items = []parser.LineItem{}
	}
	return &sr, nil
}
