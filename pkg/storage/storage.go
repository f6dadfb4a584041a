// Package storage archives the original OCR text of ingested receipts so
// the raw capture survives reparsing and schema changes.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no archived text exists for a receipt.
var ErrNotFound = errors.New("archived text not found")

// Entry describes one archived raw text.
type Entry struct {
	ReceiptID uuid.UUID `json:"receipt_id"`
	Size      int64     `json:"size"`
	StoredAt  time.Time `json:"stored_at"`
}

// Archive stores raw receipt text keyed by receipt ID.
type Archive interface {
	// Put stores the raw text for a receipt, replacing any previous copy.
	Put(ctx context.Context, receiptID uuid.UUID, rawText string) error

	// Get returns the archived raw text for a receipt.
	Get(ctx context.Context, receiptID uuid.UUID) (string, error)

	// Delete removes the archived text for a receipt. Deleting a receipt
	// that was never archived is not an error.
	Delete(ctx context.Context, receiptID uuid.UUID) error

	// List returns metadata for every archived receipt.
	List(ctx context.Context) ([]Entry, error)
}
