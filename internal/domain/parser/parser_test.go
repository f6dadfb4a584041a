package parser

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtavares/receiptwise/internal/domain/categorization"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	return New(WithClock(func() time.Time { return fixedNow }))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseSampleFallback(t *testing.T) {
	p := newTestParser(t)

	t.Run("two character input returns fixed sample receipt", func(t *testing.T) {
		r := p.Parse("hi")

		assert.True(t, r.IsSampleData)
		assert.True(t, r.ParsedFromOCR)
		assert.Equal(t, "Sample Store", r.Merchant)
		require.Len(t, r.Items, 2)
		assert.Equal(t, "Sample Item 1", r.Items[0].Name)
		assert.True(t, r.Items[0].Price.Equal(dec("5.99")))
		assert.True(t, r.Items[1].Price.Equal(dec("3.49")))
		assert.True(t, r.Total.Equal(dec("9.48")))
		assert.True(t, r.Subtotal.Equal(dec("8.62")))
		assert.True(t, r.Tax.Equal(dec("0.86")))
		assert.Equal(t, 30, r.ReturnPolicyDays)
		assert.Equal(t, "2024-03-15", r.Date)
		require.NotNil(t, r.ReturnDeadline)
		assert.Equal(t, "2024-04-14", *r.ReturnDeadline)
	})

	t.Run("empty input", func(t *testing.T) {
		r := p.Parse("")
		assert.True(t, r.IsSampleData)
		assert.Len(t, r.Items, 2)
	})

	t.Run("whitespace only input", func(t *testing.T) {
		r := p.Parse("   \n\t\n   \n")
		assert.True(t, r.IsSampleData)
	})

	t.Run("whitespace does not count toward minimum", func(t *testing.T) {
		// Nine non-whitespace characters padded with spaces.
		r := p.Parse("a b c d e f g h i")
		assert.True(t, r.IsSampleData)
	})
}

func TestParseTotality(t *testing.T) {
	p := newTestParser(t)
	gofakeit.Seed(11)

	inputs := []string{
		"",
		"   ",
		"\x00\x01\x02 garbage \xff\xfe bytes here",
		strings.Repeat("=*~@#", 50),
		"no prices anywhere on this receipt text at all",
		"1.2.3.4.5.6.7.8.9.0",
	}
	for i := 0; i < 50; i++ {
		inputs = append(inputs, gofakeit.Sentence(12))
		inputs = append(inputs, gofakeit.LetterN(40)+"\n"+gofakeit.DigitN(20))
	}

	dateRe := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	for i, in := range inputs {
		r := p.Parse(in)

		assert.NotEmpty(t, r.Merchant, "input %d", i)
		assert.Regexp(t, dateRe, r.Date, "input %d", i)
		assert.GreaterOrEqual(t, len(r.Items), 1, "input %d", i)
		assert.False(t, r.Total.IsNegative(), "input %d", i)
		assert.Equal(t, "unknown", r.PaymentMethod, "input %d", i)
		for _, it := range r.Items {
			assert.GreaterOrEqual(t, it.Quantity, 1, "input %d", i)
			assert.True(t, it.Category.Valid(), "input %d", i)
		}
	}
}

func TestParseCascadePriority(t *testing.T) {
	p := newTestParser(t)

	r := p.Parse("SOME STORE\n2 Burger 5.99 11.98\n")

	require.Len(t, r.Items, 1)
	it := r.Items[0]
	assert.Equal(t, "Burger", it.Name)
	assert.Equal(t, 2, it.Quantity)
	// Extended line total, not the unit price.
	assert.True(t, it.Price.Equal(dec("11.98")), "got %s", it.Price)
	assert.Equal(t, categorization.CategoryRestaurant, it.Category)
	assert.False(t, r.IsSampleData)
}

func TestParseStopOnTotal(t *testing.T) {
	p := newTestParser(t)

	raw := strings.Join([]string{
		"2 Coffee 4.00 8.00",
		"Total to Pay 8.00",
		"Thank you for shopping",
	}, "\n")
	r := p.Parse(raw)

	require.Len(t, r.Items, 1)
	assert.Equal(t, "Coffee", r.Items[0].Name)
	assert.Equal(t, 2, r.Items[0].Quantity)
	assert.True(t, r.Total.Equal(dec("8.00")))
	// Missing subtotal and tax are derived from the flat rate.
	assert.True(t, r.Subtotal.Equal(dec("7.27")), "got %s", r.Subtotal)
	assert.True(t, r.Tax.Equal(dec("0.73")), "got %s", r.Tax)
}

func TestParseItemCap(t *testing.T) {
	p := newTestParser(t)

	var b strings.Builder
	for i := 1; i <= 30; i++ {
		fmt.Fprintf(&b, "Widget number %d 2.00\n", i)
	}
	r := p.Parse(b.String())

	require.Len(t, r.Items, 20)
	assert.Equal(t, "Widget number 1", r.Items[0].Name)
	assert.Equal(t, "Widget number 20", r.Items[19].Name)
}

func TestParseDatePrecedence(t *testing.T) {
	p := newTestParser(t)

	raw := "STORE\nDate: 11/01/2019\nPrinted 2019-11-01\nMilk 3.99\n"
	r := p.Parse(raw)

	assert.Equal(t, "2019-11-01", r.Date)
}

func TestParseDateDefaultsToToday(t *testing.T) {
	p := newTestParser(t)

	r := p.Parse("CORNER STORE\nMilk 3.99\nBread 2.49\n")

	assert.Equal(t, "2024-03-15", r.Date)
	require.NotNil(t, r.ReturnDeadline)
	assert.Equal(t, "2024-04-14", *r.ReturnDeadline)
}

func TestParseMerchantAndPolicy(t *testing.T) {
	p := newTestParser(t)

	t.Run("known merchant drives policy and category", func(t *testing.T) {
		raw := "CVS PHARMACY #9921\nVitamins 9.99\n"
		r := p.Parse(raw)

		assert.Equal(t, "CVS", r.Merchant)
		assert.Equal(t, 60, r.ReturnPolicyDays)
		require.NotEmpty(t, r.Items)
		assert.Equal(t, categorization.CategoryPharmacy, r.Items[0].Category)
	})

	t.Run("unknown merchant gets default policy", func(t *testing.T) {
		r := p.Parse("JOE'S CORNER STORE\nMilk 3.99\n")
		assert.Equal(t, "Unknown", r.Merchant)
		assert.Equal(t, 30, r.ReturnPolicyDays)
	})
}

func TestParsePlaceholderItems(t *testing.T) {
	p := newTestParser(t)

	// Long enough to attempt extraction, but nothing parseable.
	r := p.Parse("completely unstructured text with no price lines at all")

	require.Len(t, r.Items, 2)
	assert.Equal(t, "Item 1", r.Items[0].Name)
	assert.Equal(t, "Item 2", r.Items[1].Name)
	assert.True(t, r.Items[0].Price.Equal(dec("5.00")))
	assert.True(t, r.Items[1].Price.Equal(dec("3.50")))
	// Combined item price overrides anything reconciliation produced.
	assert.True(t, r.Total.Equal(dec("8.50")), "got %s", r.Total)
	assert.True(t, r.Subtotal.Equal(dec("7.73")), "got %s", r.Subtotal)
	assert.True(t, r.Tax.Equal(dec("0.77")), "got %s", r.Tax)
	assert.True(t, r.IsSampleData)
}

func TestParseRealisticReceipt(t *testing.T) {
	p := newTestParser(t)

	raw := strings.Join([]string{
		"WALMART SUPERCENTER",
		"STORE #4821",
		"03/12/2024",
		"",
		"2 Whole Milk 3.49 6.98",
		"Bread Loaf 2.29",
		"3 x Bananas 1.77",
		"Eggs Large............4.19",
		"Subtotal 15.23",
		"Tax 1.22",
		"Total 16.45",
		"VISA  ************1234",
		"THANK YOU FOR SHOPPING",
	}, "\n")
	r := p.Parse(raw)

	assert.Equal(t, "Walmart", r.Merchant)
	assert.Equal(t, "2024-03-12", r.Date)
	assert.Equal(t, 90, r.ReturnPolicyDays)
	require.NotNil(t, r.ReturnDeadline)
	assert.Equal(t, "2024-06-10", *r.ReturnDeadline)

	require.Len(t, r.Items, 4)
	assert.Equal(t, "Whole Milk", r.Items[0].Name)
	assert.Equal(t, 2, r.Items[0].Quantity)
	assert.True(t, r.Items[0].Price.Equal(dec("6.98")))
	assert.Equal(t, "Bread Loaf", r.Items[1].Name)
	assert.Equal(t, "Bananas", r.Items[2].Name)
	assert.Equal(t, 3, r.Items[2].Quantity)
	assert.Equal(t, "Eggs Large", r.Items[3].Name)

	assert.True(t, r.Total.Equal(dec("16.45")))
	assert.True(t, r.Subtotal.Equal(dec("15.23")))
	assert.True(t, r.Tax.Equal(dec("1.22")))
	assert.True(t, r.ParsedFromOCR)
	assert.False(t, r.IsSampleData)
}

func TestParseNameTruncation(t *testing.T) {
	p := newTestParser(t)

	long := strings.Repeat("Organic Fair Trade ", 5) // 95 chars
	r := p.Parse(long + " 4.99\nFiller line for length\n")

	require.NotEmpty(t, r.Items)
	assert.LessOrEqual(t, len(r.Items[0].Name), 50)
}

func TestParseConcurrent(t *testing.T) {
	p := newTestParser(t)
	raw := "STARBUCKS\n2 Latte 4.50 9.00\nTotal 9.00\n"

	done := make(chan Receipt, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- p.Parse(raw) }()
	}
	for i := 0; i < 8; i++ {
		r := <-done
		assert.Equal(t, "Starbucks", r.Merchant)
		require.Len(t, r.Items, 1)
	}
}

func BenchmarkParse(b *testing.B) {
	p := New(WithClock(func() time.Time { return fixedNow }))
	raw := strings.Join([]string{
		"WALMART SUPERCENTER",
		"03/12/2024",
		"2 Whole Milk 3.49 6.98",
		"Bread Loaf 2.29",
		"Eggs Large............4.19",
		"Subtotal 13.46",
		"Tax 1.08",
		"Total 14.54",
	}, "\n")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Parse(raw)
	}
}
