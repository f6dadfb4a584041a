// Package insights produces human-readable summaries of parsed
// receipts, including the natural-language form used for
// text-to-speech accessibility.
package insights

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mtavares/receiptwise/internal/domain/categorization"
	"github.com/mtavares/receiptwise/internal/domain/parser"
	"github.com/mtavares/receiptwise/pkg/money"
)

// speakableItemLimit caps how many items the spoken summary names
// before collapsing the rest into a count.
const speakableItemLimit = 5

// Speakable renders a receipt as a short natural-language summary
// suitable for text-to-speech. Sentences are kept simple and amounts
// are formatted as currency.
func Speakable(r parser.Receipt) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Receipt from %s on %s. ", r.Merchant, r.Date)
	fmt.Fprintf(&b, "Total: %s. ", money.NewFromDecimal(r.Total, money.USD).Display())

	plural := "s"
	if len(r.Items) == 1 {
		plural = ""
	}
	fmt.Fprintf(&b, "You purchased %d item%s. ", len(r.Items), plural)

	if len(r.Items) > 0 {
		b.WriteString("Items: ")
		shown := r.Items
		if len(shown) > speakableItemLimit {
			shown = shown[:speakableItemLimit]
		}
		for i, it := range shown {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s for %s", it.Name, money.NewFromDecimal(it.Price, money.USD).Display())
		}
		if len(r.Items) > speakableItemLimit {
			fmt.Fprintf(&b, ", and %d more items", len(r.Items)-speakableItemLimit)
		}
	}
	b.WriteString(".")

	if r.ReturnPolicyDays > 0 {
		fmt.Fprintf(&b, " This item can be returned within %d days.", r.ReturnPolicyDays)
	}
	return b.String()
}

// CategoryTotal is one category's share of spending across receipts.
type CategoryTotal struct {
	Category categorization.Category `json:"category"`
	Amount   decimal.Decimal         `json:"amount"`
	Items    int                     `json:"items"`
}

// SpendingSummary aggregates a set of receipts.
type SpendingSummary struct {
	Receipts   int             `json:"receipts"`
	Total      decimal.Decimal `json:"total"`
	Tax        decimal.Decimal `json:"tax"`
	Categories []CategoryTotal `json:"categories"`
	SampleData int             `json:"sample_data"`
}

// Summarize aggregates spending across receipts, grouped by category.
// Category order follows the canonical category list so output is
// stable; empty categories are omitted.
func Summarize(receipts []parser.Receipt) SpendingSummary {
	s := SpendingSummary{Total: decimal.Zero, Tax: decimal.Zero}
	byCat := make(map[categorization.Category]*CategoryTotal)

	for _, r := range receipts {
		s.Receipts++
		s.Total = s.Total.Add(r.Total)
		s.Tax = s.Tax.Add(r.Tax)
		if r.IsSampleData {
			s.SampleData++
		}
		for _, it := range r.Items {
			ct, ok := byCat[it.Category]
			if !ok {
				ct = &CategoryTotal{Category: it.Category, Amount: decimal.Zero}
				byCat[it.Category] = ct
			}
			ct.Amount = ct.Amount.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			ct.Items++
		}
	}

	for _, cat := range categorization.Categories() {
		if ct, ok := byCat[cat]; ok {
			s.Categories = append(s.Categories, *ct)
		}
	}
	return s
}
