package categorization

import "strings"

// Categorizer resolves a line item to a category. Merchant brand heuristics
// are consulted before item-name keywords, and Other is the fallback, so
// Categorize is total: it never fails and never returns an unknown category.
type Categorizer struct {
	engine *Engine
	brands []BrandGroup
}

// NewCategorizer creates a categorizer with the built-in tables.
func NewCategorizer() *Categorizer {
	return &Categorizer{
		engine: NewEngine(DefaultKeywordTable()),
		brands: DefaultBrandTable(),
	}
}

// NewCategorizerWithTables creates a categorizer with custom tables,
// primarily for tests that want small fixtures.
func NewCategorizerWithTables(keywords []KeywordGroup, brands []BrandGroup) *Categorizer {
	return &Categorizer{
		engine: NewEngine(keywords),
		brands: brands,
	}
}

// Categorize classifies an item name, optionally combined with the merchant
// it was bought from. The merchant signal dominates: "hamburger" at a
// pharmacy is still a pharmacy purchase.
func (c *Categorizer) Categorize(itemName, merchant string) Category {
	merchantLower := strings.ToLower(merchant)
	if merchantLower != "" {
		for _, group := range c.brands {
			for _, brand := range group.Brands {
				if strings.Contains(merchantLower, brand) {
					return group.Category
				}
			}
		}
	}

	if cat, ok := c.engine.Match(itemName); ok {
		return cat
	}
	return CategoryOther
}
