package insights

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtavares/receiptwise/internal/domain/categorization"
	"github.com/mtavares/receiptwise/internal/domain/parser"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func receiptFixture() parser.Receipt {
	return parser.Receipt{
		Merchant: "Walmart",
		Date:     "2024-03-12",
		Items: []parser.LineItem{
			{Name: "Whole Milk", Price: dec("6.98"), Quantity: 2, Category: categorization.CategoryGroceries},
			{Name: "Bread Loaf", Price: dec("2.29"), Quantity: 1, Category: categorization.CategoryGroceries},
		},
		Total:            dec("10.17"),
		Subtotal:         dec("9.25"),
		Tax:              dec("0.92"),
		PaymentMethod:    "unknown",
		ReturnPolicyDays: 90,
	}
}

func TestSpeakable(t *testing.T) {
	t.Run("full sentence structure", func(t *testing.T) {
		got := Speakable(receiptFixture())
		want := "Receipt from Walmart on 2024-03-12. Total: $10.17. " +
			"You purchased 2 items. Items: Whole Milk for $6.98, Bread Loaf for $2.29. " +
			"This item can be returned within 90 days."
		assert.Equal(t, want, got)
	})

	t.Run("singular item", func(t *testing.T) {
		r := receiptFixture()
		r.Items = r.Items[:1]
		got := Speakable(r)
		assert.Contains(t, got, "You purchased 1 item. ")
	})

	t.Run("long receipts collapse the tail", func(t *testing.T) {
		r := receiptFixture()
		r.Items = nil
		for i := 0; i < 8; i++ {
			r.Items = append(r.Items, parser.LineItem{
				Name:     fmt.Sprintf("Item %d", i+1),
				Price:    dec("1.00"),
				Quantity: 1,
				Category: categorization.CategoryOther,
			})
		}
		got := Speakable(r)
		assert.Contains(t, got, "Item 5 for $1.00, and 3 more items.")
		assert.NotContains(t, got, "Item 6")
	})

	t.Run("no policy sentence when zero days", func(t *testing.T) {
		r := receiptFixture()
		r.ReturnPolicyDays = 0
		assert.NotContains(t, Speakable(r), "can be returned")
	})
}

func TestSummarize(t *testing.T) {
	r1 := receiptFixture()
	r2 := parser.Receipt{
		Merchant: "CVS",
		Items: []parser.LineItem{
			{Name: "Vitamins", Price: dec("9.99"), Quantity: 1, Category: categorization.CategoryPharmacy},
		},
		Total:        dec("10.99"),
		Tax:          dec("1.00"),
		IsSampleData: true,
	}

	s := Summarize([]parser.Receipt{r1, r2})

	assert.Equal(t, 2, s.Receipts)
	assert.True(t, s.Total.Equal(dec("21.16")), "got %s", s.Total)
	assert.True(t, s.Tax.Equal(dec("1.92")))
	assert.Equal(t, 1, s.SampleData)

	require.Len(t, s.Categories, 2)
	// Canonical category order: groceries before pharmacy.
	assert.Equal(t, categorization.CategoryGroceries, s.Categories[0].Category)
	// Quantity-weighted: 6.98*2 + 2.29.
	assert.True(t, s.Categories[0].Amount.Equal(dec("16.25")), "got %s", s.Categories[0].Amount)
	assert.Equal(t, 2, s.Categories[0].Items)
	assert.Equal(t, categorization.CategoryPharmacy, s.Categories[1].Category)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Receipts)
	assert.True(t, s.Total.IsZero())
	assert.Empty(t, s.Categories)
}
