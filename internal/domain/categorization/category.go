// Package categorization classifies receipt line items into a closed set of
// spending categories using merchant heuristics and a keyword engine.
package categorization

// Category is the closed set of item categories. Every item resolves to
// exactly one category; Other is the exhaustive fallback.
type Category string

const (
	CategoryGroceries  Category = "groceries"
	CategoryRestaurant Category = "restaurant"
	CategoryPharmacy   Category = "pharmacy"
	CategoryRetail     Category = "retail"
	CategoryOther      Category = "other"
)

// Categories lists every valid category in table order.
func Categories() []Category {
	return []Category{
		CategoryGroceries,
		CategoryRestaurant,
		CategoryPharmacy,
		CategoryRetail,
		CategoryOther,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGroceries, CategoryRestaurant, CategoryPharmacy, CategoryRetail, CategoryOther:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }
