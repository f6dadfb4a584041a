package money

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// ReceiptDataGenerator produces realistic receipt test data using
// gofakeit. A fixed seed makes output reproducible.
type ReceiptDataGenerator struct {
	faker *gofakeit.Faker
}

// NewReceiptDataGenerator creates a generator with the given seed.
func NewReceiptDataGenerator(seed int64) *ReceiptDataGenerator {
	return &ReceiptDataGenerator{faker: gofakeit.New(seed)}
}

// TestLineItem is one generated purchase line.
type TestLineItem struct {
	Name     string
	Quantity int
	Price    *Money
}

// LineItem generates one random purchase line priced between $0.50 and
// $80.00.
func (g *ReceiptDataGenerator) LineItem() TestLineItem {
	return TestLineItem{
		Name:     g.faker.ProductName(),
		Quantity: g.faker.Number(1, 4),
		Price:    New(int64(g.faker.Number(50, 8000)), USD),
	}
}

// LineItems generates n random purchase lines.
func (g *ReceiptDataGenerator) LineItems(n int) []TestLineItem {
	items := make([]TestLineItem, n)
	for i := range items {
		items[i] = g.LineItem()
	}
	return items
}

// MerchantName generates a store-like name.
func (g *ReceiptDataGenerator) MerchantName() string {
	return strings.ToUpper(g.faker.Company())
}

// ReceiptText renders n generated line items as OCR-like receipt text
// with a header, item lines, and total lines. Amounts always carry two
// decimal places, matching scanned receipts.
func (g *ReceiptDataGenerator) ReceiptText(n int) string {
	var b strings.Builder

	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	fmt.Fprintf(&b, "%s\n", g.MerchantName())
	fmt.Fprintf(&b, "%s\n\n", g.faker.DateRange(end.AddDate(-1, 0, 0), end).Format("2006-01-02"))

	subtotal := Zero(USD)
	for _, it := range g.LineItems(n) {
		line := it.Price.Multiply(int64(it.Quantity))
		fmt.Fprintf(&b, "%d %s %s %s\n",
			it.Quantity, it.Name,
			it.Price.ToDecimal().StringFixed(2),
			line.ToDecimal().StringFixed(2),
		)
		subtotal, _ = subtotal.Add(line)
	}

	total := subtotal.ToDecimal().Mul(decimal.NewFromFloat(1.10)).Round(2)
	fmt.Fprintf(&b, "\nSUBTOTAL %s\n", subtotal.ToDecimal().StringFixed(2))
	fmt.Fprintf(&b, "TOTAL TO PAY %s\n", total.StringFixed(2))
	return b.String()
}
