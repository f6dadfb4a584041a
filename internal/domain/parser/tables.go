package parser

import "github.com/shopspring/decimal"

// Tables holds the tunable data the parser consults while matching.
// They are read-only after construction; a Parser built from a Tables
// value is safe for concurrent use. Tests substitute smaller fixture
// tables through WithTables.
type Tables struct {
	// StopWords mark known non-item lines (totals, tender, promo
	// boilerplate). Matching is lowercase substring containment.
	StopWords []string

	// NoiseChars are punctuation characters counted by the OCR-garble
	// filter; a line with more than NoiseMax of them is discarded.
	NoiseChars string
	NoiseMax   int

	// MinLineLen is the minimum trimmed line length considered at all.
	MinLineLen int

	// QtyTolerance bounds |quantity*unit - lineTotal| for the
	// quantity-prefixed matcher. The observed value is heuristic;
	// keep it as-is for compatibility.
	QtyTolerance decimal.Decimal

	// TaxRate is the flat rate assumed when reconciliation has to
	// derive a missing subtotal or tax figure.
	TaxRate decimal.Decimal

	// Price window for the bare-trailing-price fallback matcher.
	MinFallbackPrice decimal.Decimal
	MaxFallbackPrice decimal.Decimal

	// MaxItems caps the assembled item list; MaxNameLen truncates
	// item names.
	MaxItems   int
	MaxNameLen int
}

// DefaultTables returns the production table set.
func DefaultTables() Tables {
	return Tables{
		StopWords: []string{
			"subtotal", "total", "tax", "gst", "pst", "hst", "qst", "vat",
			"amount", "balance", "change", "tender", "payment", "cash",
			"credit", "debit", "visa", "mastercard", "amex", "card",
			"received", "refund", "discount", "coupon", "savings",
			"remaining", "due", "paid", "ref num", "cashier", "thank",
			"visit", "receipt", "transaction", "invoice", "order", "take home",
			"meatballs", "cream sauce", "pkgs", "swedish", "authentic", "recipe",
			"for only", "made from", "taste of",
		},
		NoiseChars:       `—=*~@#$%^&()[]{}|\<>`,
		NoiseMax:         3,
		MinLineLen:       3,
		QtyTolerance:     decimal.NewFromInt(1),
		TaxRate:          decimal.RequireFromString("0.10"),
		MinFallbackPrice: decimal.RequireFromString("0.10"),
		MaxFallbackPrice: decimal.NewFromInt(500),
		MaxItems:         20,
		MaxNameLen:       50,
	}
}
