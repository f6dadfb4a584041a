package receipts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtavares/receiptwise/internal/domain/categorization"
	"github.com/mtavares/receiptwise/internal/domain/parser"
)

func testStoredReceipt(t *testing.T) *StoredReceipt {
	t.Helper()
	deadline := "2024-06-10"
	return &StoredReceipt{
		ID:        uuid.New(),
		CreatedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		Source:    SourceOCR,
		RawText:   "Walmart\n2 Milk 3.50 7.00\nTOTAL 7.70",
		Receipt: parser.Receipt{
			Merchant: "Walmart",
			Date:     "2024-03-12",
			Items: []parser.LineItem{
				{Name: "Milk", Price: decimal.NewFromFloat(7.00), Quantity: 2, Category: categorization.CategoryGroceries},
			},
			Total:            decimal.NewFromFloat(7.70),
			Subtotal:         decimal.NewFromFloat(7.00),
			Tax:              decimal.NewFromFloat(0.70),
			PaymentMethod:    "unknown",
			ReturnPolicyDays: 90,
			ReturnDeadline:   &deadline,
			ParsedFromOCR:    true,
		},
	}
}

func receiptRows(srs ...*StoredReceipt) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "created_at", "source", "raw_text", "merchant", "purchase_date", "items",
		"total", "subtotal", "tax", "payment_method", "return_policy_days", "return_deadline",
		"parsed_from_ocr", "is_sample_data",
	})
	for _, sr := range srs {
		items, _ := json.Marshal(sr.Receipt.Items)
		rows.AddRow(
			sr.ID, sr.CreatedAt, sr.Source, sr.RawText,
			sr.Receipt.Merchant, sr.Receipt.Date, items,
			sr.Receipt.Total, sr.Receipt.Subtotal, sr.Receipt.Tax,
			sr.Receipt.PaymentMethod, sr.Receipt.ReturnPolicyDays, sr.Receipt.ReturnDeadline,
			sr.Receipt.ParsedFromOCR, sr.Receipt.IsSampleData,
		)
	}
	return rows
}

func TestPostgresRepositorySave(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PostgresRepository{pool: mock}
	sr := testStoredReceipt(t)

	mock.ExpectExec(`INSERT INTO receipts`).
		WithArgs(
			sr.ID, sr.CreatedAt, sr.Source, sr.RawText,
			sr.Receipt.Merchant, sr.Receipt.Date, pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			sr.Receipt.PaymentMethod, sr.Receipt.ReturnPolicyDays, sr.Receipt.ReturnDeadline,
			sr.Receipt.ParsedFromOCR, sr.Receipt.IsSampleData,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Save(context.Background(), sr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PostgresRepository{pool: mock}
	sr := testStoredReceipt(t)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`FROM receipts WHERE id = \$1`).
			WithArgs(sr.ID).
			WillReturnRows(receiptRows(sr))

		got, err := repo.GetByID(context.Background(), sr.ID)
		require.NoError(t, err)
		assert.Equal(t, sr.ID, got.ID)
		assert.Equal(t, "Walmart", got.Receipt.Merchant)
		require.Len(t, got.Receipt.Items, 1)
		assert.Equal(t, "Milk", got.Receipt.Items[0].Name)
		assert.Equal(t, 2, got.Receipt.Items[0].Quantity)
		assert.True(t, got.Receipt.Total.Equal(decimal.NewFromFloat(7.70)))
		require.NotNil(t, got.Receipt.ReturnDeadline)
		assert.Equal(t, "2024-06-10", *got.Receipt.ReturnDeadline)
	})

	t.Run("not found", func(t *testing.T) {
		missing := uuid.New()
		mock.ExpectQuery(`FROM receipts WHERE id = \$1`).
			WithArgs(missing).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(context.Background(), missing)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PostgresRepository{pool: mock}
	first := testStoredReceipt(t)
	second := testStoredReceipt(t)
	second.Receipt.Merchant = "Target"

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM receipts`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WithArgs(50, 0).
		WillReturnRows(receiptRows(first, second))

	got, total, err := repo.List(context.Background(), 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, got, 2)
	assert.Equal(t, "Walmart", got[0].Receipt.Merchant)
	assert.Equal(t, "Target", got[1].Receipt.Merchant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PostgresRepository{pool: mock}
	id := uuid.New()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM receipts`).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.Delete(context.Background(), id))
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM receipts`).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), id), ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryListDeadlinesWithin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PostgresRepository{pool: mock}
	sr := testStoredReceipt(t)
	now := time.Date(2024, 6, 5, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE return_deadline IS NOT NULL`).
		WithArgs("2024-06-05", "2024-06-12").
		WillReturnRows(receiptRows(sr))

	got, err := repo.ListDeadlinesWithin(context.Background(), now, 7*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sr.ID, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
