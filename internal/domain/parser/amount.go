package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPattern recognizes decimal money tokens the way receipt OCR
// produces them: two decimal places, optional thousands separators.
// Currency symbols are handled by the matchers, not here.
const amountPattern = `\d{1,3}(?:,\d{3})*\.\d{2}`

var amountRe = regexp.MustCompile(amountPattern)

// amountToken is one money token found in a line, with its byte offsets
// so matchers can slice out the surrounding name text.
type amountToken struct {
	text       string
	start, end int
}

func (a amountToken) value() (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(a.text, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// findAmounts returns every money token in the line, left to right.
func findAmounts(line string) []amountToken {
	locs := amountRe.FindAllStringIndex(line, -1)
	if locs == nil {
		return nil
	}
	tokens := make([]amountToken, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, amountToken{text: line[loc[0]:loc[1]], start: loc[0], end: loc[1]})
	}
	return tokens
}

// parseAmount converts a matched money token to a decimal, dropping
// thousands separators.
func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
