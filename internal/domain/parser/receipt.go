// Package parser turns raw OCR receipt text into a structured Receipt.
//
// The entry point is Parser.Parse, which is total: it always returns a
// fully populated Receipt, for any input string, and never returns an
// error. Callers distinguish genuine extraction from synthetic fallback
// via the provenance flags on the Receipt.
package parser

import (
	"github.com/shopspring/decimal"

	"github.com/mtavares/receiptwise/internal/domain/categorization"
)

// LineItem is a single purchased item recovered from the receipt text.
// Price is the extended line total, not the unit price, whenever both
// are recoverable from the line.
type LineItem struct {
	Name     string                  `json:"name"`
	Price    decimal.Decimal         `json:"price"`
	Quantity int                     `json:"quantity"`
	Category categorization.Category `json:"category"`
}

// Receipt is the assembled parse result. It is constructed once per
// Parse call and never mutated afterwards.
type Receipt struct {
	Merchant         string          `json:"merchant"`
	Date             string          `json:"date"` // YYYY-MM-DD
	Items            []LineItem      `json:"items"`
	Total            decimal.Decimal `json:"total"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Tax              decimal.Decimal `json:"tax"`
	PaymentMethod    string          `json:"payment_method"`
	ReturnPolicyDays int             `json:"return_policy_days"`
	// ReturnDeadline is nil when the purchase date could not be
	// re-parsed at assembly time.
	ReturnDeadline *string `json:"return_deadline"`

	// Provenance flags. ParsedFromOCR marks results produced by the
	// local text parser (as opposed to an external structurer);
	// IsSampleData marks wholly synthetic placeholder content.
	ParsedFromOCR bool `json:"parsed_from_ocr"`
	IsSampleData  bool `json:"is_sample_data"`
}

// ItemCount returns the number of line items.
func (r Receipt) ItemCount() int { return len(r.Items) }
