package models

import (
	"encoding/json"
	"time"
)

// ConfigDocument is the full configuration snapshot for one tenant. A newer
// fetch fully replaces the old document; there is no merging.
type ConfigDocument struct {
	Pages          []Page         `json:"pages"`
	StoreInfo      StoreInfo      `json:"storeInfo"`
	DesignSettings DesignSettings `json:"designSettings"`
	Subscription   Subscription   `json:"subscription"`
}

// Subscription carries the tenant's plan state as delivered in the document.
type Subscription struct {
	Status  string `json:"status"`
	EndDate string `json:"endDate,omitempty"`
}

// SubscriptionActive reports whether the document's tenant may serve the
// storefront. A document without subscription data is treated as active.
func (d ConfigDocument) SubscriptionActive(now time.Time) bool {
	if d.Subscription.Status == "" {
		return true
	}
	return SubscriptionActive(d.Subscription.Status, d.Subscription.EndDate, now)
}

// Page is an ordered list of widgets plus page-level properties. Widget order
// is significant and preserved from the source document.
type Page struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	BackgroundColor string   `json:"backgroundColor"`
	Widgets         []Widget `json:"widgets"`
}

// Widget is one declaratively-configured UI unit, discriminated by Name with
// an open property bag.
type Widget struct {
	Name  string                 `json:"name"`
	Props map[string]interface{} `json:"props"`
}

// StoreInfo describes the storefront owner.
type StoreInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

// DesignSettings holds tenant-wide visual defaults.
type DesignSettings struct {
	PrimaryColor    string `json:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor"`
	BackgroundColor string `json:"backgroundColor"`
	FontFamily      string `json:"fontFamily"`
	SplashImageURL  string `json:"splashImageUrl"`
}

// ProductCard is one sellable item as it appears inside widget properties.
// Price fields stay stringy at this boundary; ParsePrice turns them into
// amounts.
type ProductCard struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           string  `json:"price"`
	DiscountPrice   string  `json:"discountPrice,omitempty"`
	DiscountPercent string  `json:"discountPercent,omitempty"`
	ImageURL        string  `json:"imageUrl"`
	Quantity        int     `json:"quantity"`
	Rating          float64 `json:"rating"`
}

// ProductCardFromProps decodes a product card out of a widget property value.
// Missing or malformed entries yield a zero card rather than an error.
func ProductCardFromProps(v interface{}) ProductCard {
	var card ProductCard
	raw, err := json.Marshal(v)
	if err != nil {
		return card
	}
	_ = json.Unmarshal(raw, &card)
	return card
}

// ProductCardsFromProps decodes a list-valued widget property into cards,
// skipping entries that are not objects.
func ProductCardsFromProps(v interface{}) []ProductCard {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	cards := make([]ProductCard, 0, len(list))
	for _, item := range list {
		if _, ok := item.(map[string]interface{}); !ok {
			continue
		}
		cards = append(cards, ProductCardFromProps(item))
	}
	return cards
}
