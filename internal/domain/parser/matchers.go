package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// candidate is an item recovered from a single line, before
// categorization and name truncation.
type candidate struct {
	name     string
	quantity int
	price    decimal.Decimal
}

// matcherFunc attempts one structural pattern against a line. A false
// return means "does not match this pattern"; malformed input is
// indistinguishable from a non-match and the cascade simply moves on.
type matcherFunc func(line string, t *Tables) (candidate, bool)

// namedMatcher pairs a matcher with a stable name for debug logging.
type namedMatcher struct {
	name string
	fn   matcherFunc
}

// cascade is the fixed-priority matcher sequence. Order is load-bearing:
// each line yields at most one item, from the first matcher that accepts
// it. The bare trailing-price fallback must stay last.
var cascade = []namedMatcher{
	{"qty-two-prices", matchQtyTwoPrices},
	{"at-notation", matchAtNotation},
	{"multiplier", matchMultiplier},
	{"leader-fill", matchLeaderFill},
	{"trailing-price", matchTrailingPrice},
}

var (
	qtyPrefixRe     = regexp.MustCompile(`^\s*(\d+)\s+`)
	atRe            = regexp.MustCompile(`(\d+)\s*@\s*\$?(` + amountPattern + `)`)
	eqTrailingRe    = regexp.MustCompile(`=?\s*\$?(` + amountPattern + `)\s*$`)
	multiplierRe    = regexp.MustCompile(`^\s*(\d+)\s*[xX]\s+(.+?)\s+\$?(` + amountPattern + `)\s*$`)
	leaderFillRe    = regexp.MustCompile(`^(.+?)[.\-\s]{3,}\$?(` + amountPattern + `)\s*$`)
	trailingPriceRe = regexp.MustCompile(`\$?(` + amountPattern + `)\s*$`)
	qtyNameRe       = regexp.MustCompile(`^(\d+)\s*[xX]?\s+(.+)`)
	leadingDigitsRe = regexp.MustCompile(`^\d+\s*`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	letterRunRe     = regexp.MustCompile(`[a-zA-Z]{2,}`)
)

// normalizeName collapses runs of whitespace and trims the result.
func normalizeName(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// validName requires at least one run of two letters and a minimum
// length of two characters. Anything else is OCR debris.
func validName(s string) bool {
	return len([]rune(s)) >= 2 && letterRunRe.MatchString(s)
}

func truncateName(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}

// matchQtyTwoPrices handles "QTY NAME UNIT_PRICE LINE_TOTAL" lines,
// e.g. "4 Cheese Burger 5.99 23.96". It requires a leading integer
// quantity and at least two money tokens, takes the second-to-last as
// unit price and the last as line total, and accepts only when the
// quantity math checks out within the configured tolerance. A failed
// check falls through to the later matchers rather than rejecting the
// line outright.
func matchQtyTwoPrices(line string, t *Tables) (candidate, bool) {
	amounts := findAmounts(line)
	if len(amounts) < 2 {
		return candidate{}, false
	}
	qm := qtyPrefixRe.FindStringSubmatchIndex(line)
	if qm == nil {
		return candidate{}, false
	}
	qty, err := strconv.Atoi(line[qm[2]:qm[3]])
	if err != nil {
		return candidate{}, false
	}

	name := normalizeName(line[qm[1]:amounts[0].start])
	if !validName(name) {
		return candidate{}, false
	}

	unit, ok := amounts[len(amounts)-2].value()
	if !ok {
		return candidate{}, false
	}
	lineTotal, ok := amounts[len(amounts)-1].value()
	if !ok {
		return candidate{}, false
	}

	expected := decimal.NewFromInt(int64(qty)).Mul(unit)
	if expected.Sub(lineTotal).Abs().GreaterThanOrEqual(t.QtyTolerance) {
		return candidate{}, false
	}
	return candidate{name: name, quantity: qty, price: lineTotal}, true
}

// matchAtNotation handles explicit at-sign pricing, e.g.
// "Widget 2 @ $5.99 = $11.98" or "2 @ 5.99". When the line ends in a
// money token, that token is the line total; otherwise the total is
// quantity times unit price.
func matchAtNotation(line string, t *Tables) (candidate, bool) {
	m := atRe.FindStringSubmatchIndex(line)
	if m == nil {
		return candidate{}, false
	}
	qty, err := strconv.Atoi(line[m[2]:m[3]])
	if err != nil {
		return candidate{}, false
	}
	unit, ok := parseAmount(line[m[4]:m[5]])
	if !ok {
		return candidate{}, false
	}

	var lineTotal decimal.Decimal
	if tm := eqTrailingRe.FindStringSubmatch(line); tm != nil {
		if lineTotal, ok = parseAmount(tm[1]); !ok {
			return candidate{}, false
		}
	} else {
		lineTotal = decimal.NewFromInt(int64(qty)).Mul(unit)
	}

	name := strings.TrimSpace(line[:m[0]])
	name = leadingDigitsRe.ReplaceAllString(name, "")
	name = normalizeName(name)
	if !validName(name) {
		return candidate{}, false
	}
	return candidate{name: name, quantity: qty, price: lineTotal}, true
}

// matchMultiplier handles "QTY x NAME PRICE" lines anchored at the line
// start with a single trailing amount, e.g. "4x Burger 23.96".
func matchMultiplier(line string, t *Tables) (candidate, bool) {
	m := multiplierRe.FindStringSubmatch(line)
	if m == nil {
		return candidate{}, false
	}
	qty, err := strconv.Atoi(m[1])
	if err != nil {
		return candidate{}, false
	}
	price, ok := parseAmount(m[3])
	if !ok {
		return candidate{}, false
	}
	name := normalizeName(m[2])
	if !validName(name) {
		return candidate{}, false
	}
	return candidate{name: name, quantity: qty, price: price}, true
}

// matchLeaderFill handles tabular receipts where the name is joined to
// the price by a run of three or more dots, dashes, or spaces, e.g.
// "Burger............$5.99". A leading "N " or "N x " inside the name
// portion is reinterpreted as a quantity.
func matchLeaderFill(line string, t *Tables) (candidate, bool) {
	m := leaderFillRe.FindStringSubmatch(line)
	if m == nil {
		return candidate{}, false
	}
	price, ok := parseAmount(m[2])
	if !ok {
		return candidate{}, false
	}

	name := strings.TrimSpace(m[1])
	qty := 1
	if qm := qtyNameRe.FindStringSubmatch(name); qm != nil {
		q, err := strconv.Atoi(qm[1])
		if err != nil {
			return candidate{}, false
		}
		qty = q
		name = strings.TrimSpace(qm[2])
	}
	name = normalizeName(name)
	if !validName(name) {
		return candidate{}, false
	}
	return candidate{name: name, quantity: qty, price: price}, true
}

// matchTrailingPrice is the fallback: any line ending in a money token
// within the plausible single-item price window. A leading integer
// token, optionally followed by "x", is reinterpreted as quantity.
func matchTrailingPrice(line string, t *Tables) (candidate, bool) {
	m := trailingPriceRe.FindStringSubmatchIndex(line)
	if m == nil {
		return candidate{}, false
	}
	price, ok := parseAmount(line[m[2]:m[3]])
	if !ok {
		return candidate{}, false
	}
	if price.GreaterThan(t.MaxFallbackPrice) || price.LessThan(t.MinFallbackPrice) {
		return candidate{}, false
	}

	name := strings.TrimSpace(line[:m[0]])
	qty := 1
	if qm := qtyNameRe.FindStringSubmatch(name); qm != nil {
		q, err := strconv.Atoi(qm[1])
		if err != nil {
			return candidate{}, false
		}
		qty = q
		name = strings.TrimSpace(qm[2])
	}
	name = strings.TrimSpace(strings.ReplaceAll(normalizeName(name), "$", ""))
	if !validName(name) {
		return candidate{}, false
	}
	return candidate{name: name, quantity: qty, price: price}, true
}

// totalMarkerAmountRe spots amounts with a two-or-more digit dollar
// part, used to recognize the end-of-items total line.
var totalMarkerAmountRe = regexp.MustCompile(`\d{2,}\.\d{2}`)

// isTotalMarker reports whether the line marks the end of the itemized
// section. Everything after it is receipt footer or promotional text.
func isTotalMarker(line, lower string) bool {
	if !strings.Contains(lower, "total") {
		return false
	}
	return strings.Contains(lower, "pay") ||
		strings.Contains(lower, "grand") ||
		totalMarkerAmountRe.MatchString(line)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func noiseCount(line, noiseChars string) int {
	n := 0
	for _, r := range line {
		if strings.ContainsRune(noiseChars, r) {
			n++
		}
	}
	return n
}
