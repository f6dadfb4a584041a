package categorization

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// keywordMatch carries the metadata for one keyword pattern.
type keywordMatch struct {
	Keyword  string
	Category Category
	// Rank is the keyword's position in the flattened table. Lower rank wins,
	// which makes table order the precedence rule.
	Rank int
}

// Engine is a multi-pattern keyword matcher built on the Aho-Corasick
// algorithm. All keywords are matched in a single pass through the item name,
// independent of how many keywords are loaded.
type Engine struct {
	matcher  *ahocorasick.Matcher
	metadata []keywordMatch
	mu       sync.RWMutex
}

// NewEngine creates an engine from a keyword table.
func NewEngine(table []KeywordGroup) *Engine {
	e := &Engine{}
	e.Build(table)
	return e
}

// Build constructs the Aho-Corasick matcher from the keyword table. It can be
// called again to swap the table at runtime.
func (e *Engine) Build(table []KeywordGroup) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var metadata []keywordMatch
	for _, group := range table {
		for _, kw := range group.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			metadata = append(metadata, keywordMatch{
				Keyword:  kw,
				Category: group.Category,
				Rank:     len(metadata),
			})
		}
	}

	e.metadata = metadata
	if len(metadata) == 0 {
		e.matcher = nil
		return
	}

	patterns := make([][]byte, len(metadata))
	for i, m := range metadata {
		patterns[i] = []byte(m.Keyword)
	}
	e.matcher = ahocorasick.NewMatcher(patterns)
}

// Match returns the category of the first keyword (in table order) found as a
// substring of the item name. The boolean is false when nothing matches.
func (e *Engine) Match(itemName string) (Category, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.matcher == nil || len(e.metadata) == 0 {
		return CategoryOther, false
	}

	hits := e.matcher.Match([]byte(strings.ToLower(itemName)))
	if len(hits) == 0 {
		return CategoryOther, false
	}

	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(e.metadata) {
			continue
		}
		if best == -1 || e.metadata[idx].Rank < e.metadata[best].Rank {
			best = idx
		}
	}
	if best == -1 {
		return CategoryOther, false
	}
	return e.metadata[best].Category, true
}

// PatternCount returns the number of keywords loaded in the engine.
func (e *Engine) PatternCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.metadata)
}

// IsEmpty returns true if the engine has no keywords loaded.
func (e *Engine) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matcher == nil || len(e.metadata) == 0
}
