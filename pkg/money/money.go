// Package money provides currency-safe financial arithmetic using integer cents
// and the Fowler Money pattern. It ensures precision for all financial calculations
// and proper handling of ISO-4217 currency codes.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	USD = "USD" // US Dollar
	EUR = "EUR" // Euro
	GBP = "GBP" // British Pound
	CAD = "CAD" // Canadian Dollar
)

// Money represents a monetary value with currency.
// It wraps go-money for safe arithmetic and shopspring/decimal for precision calculations.
type Money struct {
	m *money.Money
}

// New creates a new Money value from cents (minor units) and currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{
		m: money.New(amountCents, currencyCode),
	}
}

// NewFromFloat creates Money from a floating-point value.
// Use with caution - prefer New() with integer cents when possible.
func NewFromFloat(amount float64, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(USD)
	}

	// Convert to cents using decimal for precision
	d := decimal.NewFromFloat(amount)
	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := d.Mul(multiplier).Round(0).IntPart()

	return New(cents, currencyCode)
}

// NewFromDecimal creates Money from a decimal.Decimal value.
// This is the safest way to create Money from a non-integer value.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(USD)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()

	return New(cents, currencyCode)
}

// NewFromString parses a string amount and currency.
// Accepts formats like "100.50", "1,234.56", "$9.99"
func NewFromString(amount string, currencyCode string) (*Money, error) {
	amount = strings.TrimSpace(amount)
	amount = strings.ReplaceAll(amount, " ", "")

	// Remove currency symbols
	for _, sym := range []string{"$", "€", "£", "¥"} {
		amount = strings.ReplaceAll(amount, sym, "")
	}
	amount = strings.ReplaceAll(amount, ",", "")

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	return NewFromDecimal(d, currencyCode), nil
}

// Zero returns a zero Money value for the given currency
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the amount in minor units (cents)
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// CurrencySymbol returns the currency symbol (e.g., "$", "€")
func (m *Money) CurrencySymbol() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Grapheme
}

// IsZero returns true if the amount is zero
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// IsPositive returns true if the amount is greater than zero
func (m *Money) IsPositive() bool {
	return m != nil && m.m != nil && m.m.IsPositive()
}

// IsNegative returns true if the amount is less than zero
func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
}

// Add adds two Money values. Returns error if currencies don't match.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Subtract subtracts other from m. Returns error if currencies don't match.
func (m *Money) Subtract(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		if other == nil || other.m == nil {
			return Zero(USD), nil
		}
		return &Money{m: other.m.Negative()}, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Subtract(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Multiply multiplies by an integer factor
func (m *Money) Multiply(factor int64) *Money {
	if m == nil || m.m == nil {
		return Zero(USD)
	}
	return &Money{m: m.m.Multiply(factor)}
}

// Equals returns true if both values are equal
func (m *Money) Equals(other *Money) bool {
	if m == nil || m.m == nil {
		return other == nil || other.m == nil || other.IsZero()
	}
	if other == nil || other.m == nil {
		return m.IsZero()
	}
	eq, _ := m.m.Equals(other.m)
	return eq
}

// LessThan returns true if m < other
func (m *Money) LessThan(other *Money) bool {
	if m == nil || m.m == nil || other == nil || other.m == nil {
		return false
	}
	lt, _ := m.m.LessThan(other.m)
	return lt
}

// GreaterThan returns true if m > other
func (m *Money) GreaterThan(other *Money) bool {
	if m == nil || m.m == nil || other == nil || other.m == nil {
		return false
	}
	gt, _ := m.m.GreaterThan(other.m)
	return gt
}

// Compare returns -1 if m < other, 0 if equal, 1 if m > other
func (m *Money) Compare(other *Money) int {
	if m == nil || m.m == nil {
		if other == nil || other.m == nil || other.IsZero() {
			return 0
		}
		if other.IsPositive() {
			return -1
		}
		return 1
	}
	cmp, _ := m.m.Compare(other.m)
	return cmp
}

// Display returns a formatted string for display (e.g., "$1,234.56")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	return m.m.Display()
}

// String returns the amount as a decimal string (e.g., "1234.56")
func (m *Money) String() string {
	if m == nil || m.m == nil {
		return "0.00"
	}
	return m.ToDecimal().String()
}

// ToDecimal converts to decimal.Decimal for precise calculations
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	d := decimal.NewFromInt(m.m.Amount())
	divisor := decimal.New(1, int32(currency.Fraction))
	return d.Div(divisor)
}

// ToFloat64 converts to float64 (use with caution for display only)
func (m *Money) ToFloat64() float64 {
	return m.ToDecimal().InexactFloat64()
}

// JSON marshaling
func (m *Money) MarshalJSON() ([]byte, error) {
	if m == nil || m.m == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(map[string]interface{}{
		"amount":   m.Amount(),
		"currency": m.Currency(),
		"display":  m.Display(),
	})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.m = money.New(v.Amount, v.Currency)
	return nil
}

// SQL scanning
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		m.m = nil
		return nil
	}

	switch v := value.(type) {
	case int64:
		m.m = money.New(v, USD) // Default to USD if only amount provided
		return nil
	case float64:
		m.m = money.New(int64(v*100), USD)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
}

func (m *Money) Value() (driver.Value, error) {
	if m == nil || m.m == nil {
		return nil, nil
	}
	return m.Amount(), nil
}

// Percentage calculates a percentage of the amount.
// percent is the percentage value (e.g., 15.5 for 15.5%)
// Uses decimal arithmetic for precision.
func (m *Money) Percentage(percent float64) *Money {
	if m == nil || m.m == nil {
		return Zero(USD)
	}

	d := m.ToDecimal()
	pct := decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100))
	result := d.Mul(pct)

	return NewFromDecimal(result, m.Currency())
}

// Tax calculates the tax amount for a given tax rate.
// taxRate is the tax percentage (e.g., 10 for 10%)
func (m *Money) Tax(taxRate float64) *Money {
	return m.Percentage(taxRate)
}

// ExtractTax extracts the tax portion from a tax-inclusive amount.
// taxRate is the tax percentage (e.g., 10 for 10%)
// Returns the tax amount that was included in the total.
func (m *Money) ExtractTax(taxRate float64) *Money {
	if m == nil || m.m == nil {
		return Zero(USD)
	}

	// total = base * (1 + rate/100), so base = total / (1 + rate/100)
	// and tax = total - base
	d := m.ToDecimal()
	rate := decimal.NewFromFloat(taxRate).Div(decimal.NewFromInt(100))
	divisor := decimal.NewFromInt(1).Add(rate)
	base := d.Div(divisor)
	tax := d.Sub(base)

	return NewFromDecimal(tax, m.Currency())
}

// BaseFromTaxInclusive extracts the base amount from a tax-inclusive amount.
// taxRate is the tax percentage (e.g., 10 for 10%)
func (m *Money) BaseFromTaxInclusive(taxRate float64) *Money {
	if m == nil || m.m == nil {
		return Zero(USD)
	}

	d := m.ToDecimal()
	rate := decimal.NewFromFloat(taxRate).Div(decimal.NewFromInt(100))
	divisor := decimal.NewFromInt(1).Add(rate)
	base := d.Div(divisor)

	return NewFromDecimal(base, m.Currency())
}
