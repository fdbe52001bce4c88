package widgets

import (
	"github.com/JBBSoftech/watter/internal/models"
)

// Widget kinds the resolver knows how to render. This is a closed set;
// anything else resolves to an empty unit.
const (
	KindHeader             = "Header"
	KindHeroBanner         = "HeroBanner"
	KindSearchBar          = "SearchBar"
	KindProductGrid        = "ProductGrid"
	KindStoreInfo          = "StoreInfo"
	KindImageSlider        = "ImageSlider"
	KindProductDescription = "ProductDescription"
	KindSmallCard          = "SmallCard"
)

// Fallbacks for absent optional properties.
const (
	DefaultBackgroundColor   = "#FFFFFF"
	DefaultTextColor         = "#000000"
	DefaultSearchPlaceholder = "Search products..."
	DefaultTitle             = ""
)

// RenderUnit is the renderable output of resolving one widget descriptor.
// The UI layer consumes these values without knowing widget internals.
type RenderUnit struct {
	Kind  string                 `json:"kind"`
	Empty bool                   `json:"empty,omitempty"`
	Props map[string]interface{} `json:"props,omitempty"`
}

// RenderedPage is a page with its widgets resolved, order preserved.
type RenderedPage struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	BackgroundColor string       `json:"backgroundColor"`
	Units           []RenderUnit `json:"units"`
}

type resolverFunc func(models.Widget) RenderUnit

var resolvers = map[string]resolverFunc{
	KindHeader:             resolveHeader,
	KindHeroBanner:         resolveHeroBanner,
	KindSearchBar:          resolveSearchBar,
	KindProductGrid:        resolveProductList,
	KindStoreInfo:          resolveStoreInfo,
	KindImageSlider:        resolveImageSlider,
	KindProductDescription: resolveProductDescription,
	KindSmallCard:          resolveProductList,
}

// Resolve maps one widget descriptor to a render unit. Unknown names produce
// an empty unit, never an error.
func Resolve(widget models.Widget) RenderUnit {
	resolver, ok := resolvers[widget.Name]
	if !ok {
		return RenderUnit{Kind: widget.Name, Empty: true}
	}
	return resolver(widget)
}

// ResolvePage resolves every widget of a page in order.
func ResolvePage(page models.Page) RenderedPage {
	units := make([]RenderUnit, 0, len(page.Widgets))
	for _, widget := range page.Widgets {
		units = append(units, Resolve(widget))
	}
	background := page.BackgroundColor
	if background == "" {
		background = DefaultBackgroundColor
	}
	return RenderedPage{
		ID:              page.ID,
		Name:            page.Name,
		BackgroundColor: background,
		Units:           units,
	}
}

func resolveHeader(widget models.Widget) RenderUnit {
	return RenderUnit{
		Kind: KindHeader,
		Props: map[string]interface{}{
			"title":           stringProp(widget, "title", DefaultTitle),
			"backgroundColor": stringProp(widget, "backgroundColor", DefaultBackgroundColor),
			"textColor":       stringProp(widget, "textColor", DefaultTextColor),
			"logoUrl":         stringProp(widget, "logoUrl", ""),
		},
	}
}

func resolveHeroBanner(widget models.Widget) RenderUnit {
	return RenderUnit{
		Kind: KindHeroBanner,
		Props: map[string]interface{}{
			"imageUrl":        stringProp(widget, "imageUrl", ""),
			"title":           stringProp(widget, "title", DefaultTitle),
			"subtitle":        stringProp(widget, "subtitle", ""),
			"backgroundColor": stringProp(widget, "backgroundColor", DefaultBackgroundColor),
		},
	}
}

func resolveSearchBar(widget models.Widget) RenderUnit {
	return RenderUnit{
		Kind: KindSearchBar,
		Props: map[string]interface{}{
			"placeholder":     stringProp(widget, "placeholder", DefaultSearchPlaceholder),
			"backgroundColor": stringProp(widget, "backgroundColor", DefaultBackgroundColor),
		},
	}
}

// resolveProductList serves both ProductGrid and SmallCard: each product's
// raw price is parsed into an amount plus currency symbol.
func resolveProductList(widget models.Widget) RenderUnit {
	cards := models.ProductCardsFromProps(widget.Props["products"])

	products := make([]map[string]interface{}, 0, len(cards))
	for _, card := range cards {
		amount, currency := models.ParsePrice(card.Price)
		discount, _ := models.ParsePrice(card.DiscountPrice)
		products = append(products, map[string]interface{}{
			"id":            card.ID,
			"name":          card.Name,
			"price":         amount.String(),
			"discountPrice": discount.String(),
			"currency":      currency,
			"imageUrl":      card.ImageURL,
			"quantity":      card.Quantity,
			"rating":        card.Rating,
		})
	}

	return RenderUnit{
		Kind: widget.Name,
		Props: map[string]interface{}{
			"title":           stringProp(widget, "title", DefaultTitle),
			"backgroundColor": stringProp(widget, "backgroundColor", DefaultBackgroundColor),
			"products":        products,
		},
	}
}

func resolveStoreInfo(widget models.Widget) RenderUnit {
	return RenderUnit{
		Kind: KindStoreInfo,
		Props: map[string]interface{}{
			"name":        stringProp(widget, "name", ""),
			"description": stringProp(widget, "description", ""),
			"email":       stringProp(widget, "email", ""),
			"phone":       stringProp(widget, "phone", ""),
			"address":     stringProp(widget, "address", ""),
		},
	}
}

func resolveImageSlider(widget models.Widget) RenderUnit {
	images := make([]string, 0)
	if list, ok := widget.Props["images"].([]interface{}); ok {
		for _, item := range list {
			if url, ok := item.(string); ok {
				images = append(images, url)
			}
		}
	}
	return RenderUnit{
		Kind: KindImageSlider,
		Props: map[string]interface{}{
			"images":   images,
			"autoplay": boolProp(widget, "autoplay", true),
		},
	}
}

func resolveProductDescription(widget models.Widget) RenderUnit {
	return RenderUnit{
		Kind: KindProductDescription,
		Props: map[string]interface{}{
			"text":      stringProp(widget, "text", ""),
			"textColor": stringProp(widget, "textColor", DefaultTextColor),
		},
	}
}

func stringProp(widget models.Widget, key, fallback string) string {
	if v, ok := widget.Props[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func boolProp(widget models.Widget, key string, fallback bool) bool {
	if v, ok := widget.Props[key].(bool); ok {
		return v
	}
	return fallback
}
