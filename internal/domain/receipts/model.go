// Package receipts stores, indexes, and serves parsed receipts.
package receipts

import (
	"time"

	"github.com/google/uuid"

	"github.com/mtavares/receiptwise/internal/domain/parser"
)

// Source identifies which pipeline produced the structured data.
type Source string

const (
	// SourceOCR marks receipts parsed locally from OCR text.
	SourceOCR Source = "ocr"
	// SourceLLM marks receipts structured by the generative model.
	SourceLLM Source = "llm"
	// SourceSample marks synthetic placeholder receipts.
	SourceSample Source = "sample"
)

// StoredReceipt is a parsed receipt with its storage identity and the
// raw text it came from.
type StoredReceipt struct {
	ID        uuid.UUID      `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Source    Source         `json:"source"`
	RawText   string         `json:"raw_text,omitempty"`
	Receipt   parser.Receipt `json:"receipt"`
}

// sourceOf derives the provenance label from a receipt's flags.
func sourceOf(r parser.Receipt) Source {
	switch {
	case r.IsSampleData:
		return SourceSample
	case r.ParsedFromOCR:
		return SourceOCR
	default:
		return SourceLLM
	}
}
