package parser

import (
	"regexp"
	"time"
)

// dateLayout is the normalized output format for all receipt dates.
const dateLayout = "2006-01-02"

// datePattern pairs a capture regexp with the layout its captured text
// must parse under.
type datePattern struct {
	re     *regexp.Regexp
	layout string
}

// datePatterns is tried in order; the first capture that also parses
// wins, so the list order defines precedence (ISO beats US slash, and
// so on). A capture that fails to parse falls through to the next
// pattern rather than aborting.
var datePatterns = []datePattern{
	{regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`), "2006-01-02"},                // 2019-11-01
	{regexp.MustCompile(`(\d{2}/\d{2}/\d{4})`), "01/02/2006"},                // 11/01/2019
	{regexp.MustCompile(`(\d{2}-\d{2}-\d{4})`), "01-02-2006"},                // 11-01-2019
	{regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{2})`), "1/2/06"},                // 11/1/19
	{regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})`), "02.01.2006"},              // 01.11.2019 (European)
	{regexp.MustCompile(`(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})`), "2 Jan 2006"},    // 01 Nov 2019
}

// extractDate scans the raw text for the first recognizable purchase
// date and returns it normalized to YYYY-MM-DD. The second return is
// false when no pattern both matched and parsed.
func extractDate(rawText string) (string, bool) {
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(rawText)
		if m == nil {
			continue
		}
		d, err := time.Parse(p.layout, m[1])
		if err != nil {
			continue
		}
		return d.Format(dateLayout), true
	}
	return "", false
}
