package categorization

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Match(t *testing.T) {
	engine := NewEngine([]KeywordGroup{
		{CategoryGroceries, []string{"milk", "bread"}},
		{CategoryRestaurant, []string{"burger", "coffee"}},
	})

	t.Run("matches keyword substring", func(t *testing.T) {
		cat, ok := engine.Match("WHOLE MILK 2L")
		require.True(t, ok)
		assert.Equal(t, CategoryGroceries, cat)
	})

	t.Run("case insensitive", func(t *testing.T) {
		cat, ok := engine.Match("Cheese BURGER deluxe")
		require.True(t, ok)
		assert.Equal(t, CategoryRestaurant, cat)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := engine.Match("mystery item")
		assert.False(t, ok)
	})

	t.Run("table order wins on multiple hits", func(t *testing.T) {
		// "bread" (groceries) appears before "burger" (restaurant) in the
		// table, so a name containing both resolves to groceries.
		cat, ok := engine.Match("bread burger")
		require.True(t, ok)
		assert.Equal(t, CategoryGroceries, cat)
	})
}

func TestEngine_Empty(t *testing.T) {
	engine := NewEngine(nil)
	assert.True(t, engine.IsEmpty())
	assert.Equal(t, 0, engine.PatternCount())
	_, ok := engine.Match("anything")
	assert.False(t, ok)
}

func TestEngine_Rebuild(t *testing.T) {
	engine := NewEngine(nil)
	assert.True(t, engine.IsEmpty())

	engine.Build([]KeywordGroup{{CategoryRetail, []string{"charger"}}})
	assert.False(t, engine.IsEmpty())
	assert.Equal(t, 1, engine.PatternCount())

	cat, ok := engine.Match("USB-C charger")
	require.True(t, ok)
	assert.Equal(t, CategoryRetail, cat)
}

func TestDefaultKeywordTable(t *testing.T) {
	engine := NewEngine(DefaultKeywordTable())

	cases := []struct {
		item string
		want Category
	}{
		{"2% Milk Gallon", CategoryGroceries},
		{"Dbl Cheeseburger", CategoryRestaurant},
		{"Ibuprofen 200mg", CategoryPharmacy},
		{"Phone Charger Cable", CategoryRetail},
	}
	for _, tc := range cases {
		t.Run(tc.item, func(t *testing.T) {
			cat, ok := engine.Match(tc.item)
			require.True(t, ok)
			assert.Equal(t, tc.want, cat)
		})
	}
}

func BenchmarkEngineMatch(b *testing.B) {
	// A large synthetic table plus the real defaults.
	table := DefaultKeywordTable()
	var extra []string
	for i := 0; i < 1000; i++ {
		extra = append(extra, fmt.Sprintf("keyword%d", i))
	}
	table = append(table, KeywordGroup{CategoryOther, extra})
	engine := NewEngine(table)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.Match("grilled chicken sandwich combo")
	}
}
