package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Totals holds the three financial figures of a receipt. A zero value
// means "not found"; genuine zero-amount lines are treated as absent,
// which is what lets reconciliation fill them in.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

var (
	subtotalWords       = []string{"subtotal", "sub-total", "sub total"}
	taxWords            = []string{"tax", "gst", "pst", "hst", "qst", "vat"}
	taxExcludeWords     = []string{"total", "subtotal", "amount"}
	strongTotalKeywords = []string{"total to pay", "grand total", "total amount", "amount due", "balance due"}
)

// lastAmount returns the last money token on a line, if any.
func lastAmount(line string) (decimal.Decimal, bool) {
	amounts := findAmounts(line)
	if len(amounts) == 0 {
		return decimal.Zero, false
	}
	return amounts[len(amounts)-1].value()
}

// extractTotals scans every line for subtotal, tax, and total figures.
// This scan is independent of item extraction; a line may contribute to
// both. For each figure the first qualifying line wins and its last
// money token is taken.
//
// The total search is prioritized: explicit phrasings like "grand
// total" or "amount due" are preferred over any line that merely starts
// with "total", even when the weaker line appears earlier in the text.
func extractTotals(lines []string) Totals {
	var t Totals

	for _, line := range lines {
		lower := strings.ToLower(line)

		if t.Subtotal.IsZero() && containsAny(lower, subtotalWords) {
			if v, ok := lastAmount(line); ok {
				t.Subtotal = v
			}
		}

		// Tax lines mentioning total/subtotal/amount are ambiguous
		// ("total tax", "taxable amount") and are skipped.
		if t.Tax.IsZero() && containsAny(lower, taxWords) && !containsAny(lower, taxExcludeWords) {
			if v, ok := lastAmount(line); ok {
				t.Tax = v
			}
		}
	}

	for _, line := range lines {
		if !containsAny(strings.ToLower(line), strongTotalKeywords) {
			continue
		}
		if v, ok := lastAmount(line); ok {
			t.Total = v
			break
		}
	}
	if t.Total.IsZero() {
		for _, line := range lines {
			lower := strings.ToLower(line)
			if !strings.HasPrefix(strings.TrimSpace(lower), "total") || strings.Contains(lower, "subtotal") {
				continue
			}
			if v, ok := lastAmount(line); ok {
				t.Total = v
				break
			}
		}
	}

	return t
}

// reconcile fills in missing figures from the ones present, assuming
// the configured flat tax rate where necessary, with a final fallback
// of summing the extracted items. Every derived value is rounded to two
// decimal places at the step that produces it so later derivations see
// rounded inputs and the figures never drift apart.
func reconcile(t Totals, items []LineItem, taxRate decimal.Decimal) Totals {
	onePlusRate := decimal.NewFromInt(1).Add(taxRate)

	switch {
	case t.Total.IsPositive() && t.Subtotal.IsZero():
		if t.Tax.IsPositive() {
			t.Subtotal = t.Total.Sub(t.Tax).Round(2)
		} else {
			t.Subtotal = t.Total.Div(onePlusRate).Round(2)
			t.Tax = t.Total.Sub(t.Subtotal).Round(2)
		}
	case t.Subtotal.IsPositive() && t.Total.IsZero():
		if t.Tax.IsPositive() {
			t.Total = t.Subtotal.Add(t.Tax).Round(2)
		} else {
			t.Tax = t.Subtotal.Mul(taxRate).Round(2)
			t.Total = t.Subtotal.Add(t.Tax).Round(2)
		}
	}

	if t.Total.IsZero() && len(items) > 0 {
		sum := decimal.Zero
		for _, it := range items {
			sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		t.Total = sum
		t.Subtotal = t.Total.Div(onePlusRate).Round(2)
		t.Tax = t.Total.Sub(t.Subtotal).Round(2)
	}

	return t
}
