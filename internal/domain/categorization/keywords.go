package categorization

// KeywordGroup binds a category to the item-name keywords that imply it.
// Group order is significant: earlier groups (and earlier keywords within a
// group) win when several keywords match the same item name.
type KeywordGroup struct {
	Category Category
	Keywords []string
}

// BrandGroup binds a category to merchant-name fragments that imply it.
// Merchant signal outranks item-name keywords, so these are checked first.
type BrandGroup struct {
	Category Category
	Brands   []string
}

// DefaultKeywordTable returns the built-in item-name keyword table.
// Keywords are matched as lower-case substrings of the item name.
func DefaultKeywordTable() []KeywordGroup {
	return []KeywordGroup{
		{CategoryGroceries, []string{
			"milk", "bread", "eggs", "cheese", "butter", "yogurt", "flour", "sugar",
			"rice", "pasta", "cereal", "fruit", "vegetable", "meat", "chicken", "beef",
			"pork", "fish", "salmon", "tuna", "apple", "banana", "orange", "tomato",
			"lettuce", "carrot", "potato", "onion", "garlic", "oil", "salt", "pepper",
		}},
		{CategoryRestaurant, []string{
			"burger", "fries", "pizza", "sandwich", "taco", "burrito", "salad",
			"sundae", "ice cream", "shake", "soda", "coffee", "tea", "latte",
			"cappuccino", "espresso", "mocha", "combo", "meal", "nuggets", "wings",
			"wrap", "sub", "hot dog", "nachos", "quesadilla", "smoothie", "juice",
			"caramel", "fudge", "chocolate", "vanilla", "strawberry",
		}},
		{CategoryPharmacy, []string{
			"medicine", "prescription", "tablet", "capsule", "syrup", "cream", "ointment",
			"bandage", "vitamins", "supplement", "aspirin", "ibuprofen", "antibiotic",
			"inhaler", "drops", "lotion", "sunscreen", "sanitizer", "mask", "thermometer",
		}},
		{CategoryRetail, []string{
			"shirt", "pants", "shoes", "socks", "jacket", "dress", "hat", "bag",
			"wallet", "belt", "watch", "glasses", "towel", "pillow", "blanket",
			"lamp", "candle", "book", "toy", "game", "electronics", "phone", "charger",
			"cable", "battery", "pen", "paper", "notebook", "folder",
		}},
	}
}

// DefaultBrandTable returns the built-in merchant brand heuristics, checked
// in order before any item-name keyword.
func DefaultBrandTable() []BrandGroup {
	return []BrandGroup{
		{CategoryRestaurant, []string{
			"mcdonald", "burger", "wendy", "subway", "pizza", "starbucks",
			"coffee", "cafe", "restaurant", "taco", "kfc",
		}},
		{CategoryGroceries, []string{
			"walmart", "target", "costco", "whole foods", "trader joe", "kroger",
			"safeway", "grocery", "market", "supermarket",
		}},
		{CategoryPharmacy, []string{
			"cvs", "walgreens", "rite aid", "pharmacy", "drug",
		}},
		{CategoryRetail, []string{
			"best buy", "home depot", "lowe", "ikea", "amazon",
		}},
	}
}
