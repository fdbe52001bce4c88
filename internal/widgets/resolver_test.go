package widgets

import (
	"testing"

	"github.com/JBBSoftech/watter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUnknownWidgetIsEmpty(t *testing.T) {
	unit := Resolve(models.Widget{Name: "UnknownWidget"})

	assert.True(t, unit.Empty)
	assert.Equal(t, "UnknownWidget", unit.Kind)
	assert.Nil(t, unit.Props)
}

func TestResolveHeaderDefaults(t *testing.T) {
	unit := Resolve(models.Widget{Name: KindHeader})

	require.False(t, unit.Empty)
	assert.Equal(t, DefaultBackgroundColor, unit.Props["backgroundColor"])
	assert.Equal(t, DefaultTextColor, unit.Props["textColor"])
	assert.Equal(t, DefaultTitle, unit.Props["title"])
}

func TestResolveSearchBarPlaceholderDefault(t *testing.T) {
	unit := Resolve(models.Widget{Name: KindSearchBar, Props: map[string]interface{}{}})
	assert.Equal(t, DefaultSearchPlaceholder, unit.Props["placeholder"])

	unit = Resolve(models.Widget{Name: KindSearchBar, Props: map[string]interface{}{
		"placeholder": "Find shoes",
	}})
	assert.Equal(t, "Find shoes", unit.Props["placeholder"])
}

func TestResolveProductGridParsesPrices(t *testing.T) {
	unit := Resolve(models.Widget{
		Name: KindProductGrid,
		Props: map[string]interface{}{
			"title": "Featured",
			"products": []interface{}{
				map[string]interface{}{
					"id":            "p1",
					"name":          "Mug",
					"price":         "₹1,299",
					"discountPrice": "₹999",
				},
			},
		},
	})

	require.False(t, unit.Empty)
	products, ok := unit.Props["products"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, products, 1)
	assert.Equal(t, "1299", products[0]["price"])
	assert.Equal(t, "999", products[0]["discountPrice"])
	assert.Equal(t, "₹", products[0]["currency"])
}

func TestResolveSmallCardSharesProductResolver(t *testing.T) {
	unit := Resolve(models.Widget{Name: KindSmallCard})
	assert.Equal(t, KindSmallCard, unit.Kind)
	assert.NotNil(t, unit.Props["products"])
}

func TestResolveImageSlider(t *testing.T) {
	unit := Resolve(models.Widget{
		Name: KindImageSlider,
		Props: map[string]interface{}{
			"images":   []interface{}{"a.png", 42, "b.png"},
			"autoplay": false,
		},
	})

	assert.Equal(t, []string{"a.png", "b.png"}, unit.Props["images"])
	assert.Equal(t, false, unit.Props["autoplay"])
}

func TestResolvePagePreservesOrderAndDefaultsBackground(t *testing.T) {
	page := models.Page{
		ID:   "home",
		Name: "Home",
		Widgets: []models.Widget{
			{Name: KindHeader},
			{Name: "Bogus"},
			{Name: KindSearchBar},
		},
	}

	rendered := ResolvePage(page)
	require.Len(t, rendered.Units, 3)
	assert.Equal(t, KindHeader, rendered.Units[0].Kind)
	assert.True(t, rendered.Units[1].Empty)
	assert.Equal(t, KindSearchBar, rendered.Units[2].Kind)
	assert.Equal(t, DefaultBackgroundColor, rendered.BackgroundColor)

	page.BackgroundColor = "#112233"
	assert.Equal(t, "#112233", ResolvePage(page).BackgroundColor)
}
