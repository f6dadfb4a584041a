// Package merchant identifies merchants in raw OCR text and resolves their
// return policies.
package merchant

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Pattern pairs a canonical merchant name with the regexp that recognizes it
// in noisy OCR text. Patterns tolerate spacing, apostrophe, and hyphenation
// variants the OCR layer commonly produces.
type Pattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// Unknown is returned when no pattern matches.
const Unknown = "Unknown"

// Identifier matches raw text against an ordered merchant pattern table.
// Order matters: the first matching pattern wins, so the table is a slice,
// not a map.
type Identifier struct {
	patterns []Pattern
}

// NewIdentifier creates an identifier with the built-in pattern table.
func NewIdentifier() *Identifier {
	return &Identifier{patterns: defaultPatterns()}
}

// NewIdentifierWithPatterns creates an identifier with a custom table,
// primarily for tests.
func NewIdentifierWithPatterns(patterns []Pattern) *Identifier {
	return &Identifier{patterns: patterns}
}

// Identify returns the canonical name of the first merchant whose pattern
// matches anywhere in the text, or Unknown. Deterministic and order-stable
// for a fixed table.
func (id *Identifier) Identify(rawText string) string {
	for _, p := range id.patterns {
		if p.Pattern.MatchString(rawText) {
			return p.Name
		}
	}
	return Unknown
}

// Suggestion is a fuzzy-ranked merchant candidate.
type Suggestion struct {
	Name string `json:"name"`
	// Distance is the Levenshtein distance to the query; lower is closer.
	Distance int `json:"distance"`
}

// Suggest returns up to limit canonical merchant names fuzzily matching the
// query, closest first. Used by lookup surfaces, never by the parse path.
func (id *Identifier) Suggest(query string, limit int) []Suggestion {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var out []Suggestion
	for _, p := range id.patterns {
		if rank := fuzzy.RankMatchNormalizedFold(query, p.Name); rank >= 0 {
			out = append(out, Suggestion{Name: p.Name, Distance: rank})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// defaultPatterns returns the built-in merchant table. First match wins, so
// more specific brands stay above generic ones.
func defaultPatterns() []Pattern {
	return []Pattern{
		{"McDonald's", regexp.MustCompile(`(?i)mcdonald'?s?`)},
		{"Walmart", regexp.MustCompile(`(?i)wal\s*-?\s*mart`)},
		{"Target", regexp.MustCompile(`(?i)target`)},
		{"IKEA", regexp.MustCompile(`(?i)ikea`)},
		{"Starbucks", regexp.MustCompile(`(?i)starbucks?`)},
		{"Tim Hortons", regexp.MustCompile(`(?i)tim\s*horton'?s?`)},
		{"Subway", regexp.MustCompile(`(?i)subway`)},
		{"CVS", regexp.MustCompile(`(?i)cvs\s*(pharmacy)?`)},
		{"Walgreens", regexp.MustCompile(`(?i)walgreens?`)},
		{"Costco", regexp.MustCompile(`(?i)costco`)},
		{"Whole Foods", regexp.MustCompile(`(?i)whole\s*foods?`)},
		{"Safeway", regexp.MustCompile(`(?i)safeway`)},
		{"Kroger", regexp.MustCompile(`(?i)kroger`)},
		{"7-Eleven", regexp.MustCompile(`(?i)7-?eleven|7-11`)},
		{"Wendy's", regexp.MustCompile(`(?i)wendy'?s?`)},
		{"Burger King", regexp.MustCompile(`(?i)burger\s*king`)},
		{"Taco Bell", regexp.MustCompile(`(?i)taco\s*bell`)},
		{"KFC", regexp.MustCompile(`(?i)kfc|kentucky\s*fried`)},
		{"Pizza Hut", regexp.MustCompile(`(?i)pizza\s*hut`)},
		{"Chipotle", regexp.MustCompile(`(?i)chipotle`)},
		{"Panera", regexp.MustCompile(`(?i)panera`)},
		{"Home Depot", regexp.MustCompile(`(?i)home\s*depot`)},
		{"Lowe's", regexp.MustCompile(`(?i)lowe'?s?`)},
		{"Best Buy", regexp.MustCompile(`(?i)best\s*buy`)},
		{"Amazon", regexp.MustCompile(`(?i)amazon`)},
		{"Trader Joe's", regexp.MustCompile(`(?i)trader\s*joe'?s?`)},
		{"Aldi", regexp.MustCompile(`(?i)aldi`)},
		{"Publix", regexp.MustCompile(`(?i)publix`)},
		{"H-E-B", regexp.MustCompile(`(?i)h-?e-?b`)},
		{"Stop & Shop", regexp.MustCompile(`(?i)stop\s*&\s*shop`)},
		{"Food Lion", regexp.MustCompile(`(?i)food\s*lion`)},
	}
}
