package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JBBSoftech/watter/internal/configstore"
	"github.com/JBBSoftech/watter/internal/localstate"
	"github.com/JBBSoftech/watter/internal/models"
	"github.com/JBBSoftech/watter/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRealtime struct {
	connected  bool
	roomJoined bool
}

func (f *fakeRealtime) IsConnected() bool { return f.connected }
func (f *fakeRealtime) RoomJoined() bool  { return f.roomJoined }

type stubFetcher struct {
	doc models.ConfigDocument
}

func (s *stubFetcher) Fetch(ctx context.Context) (models.ConfigDocument, error) {
	return s.doc, nil
}

func newTestRouter(configs *configstore.Store) (*gin.Engine, *localstate.Store) {
	gin.SetMode(gin.TestMode)
	local := localstate.New(localstate.Options{MaxUnits: 10, TaxRatePercent: 18})
	coordinator := syncer.New(&stubFetcher{}, configs)
	handler := NewHandler(configs, local, coordinator, &fakeRealtime{connected: true, roomJoined: true})

	router := gin.New()
	handler.SetupRoutes(router)
	return router, local
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStorefrontUnavailableBeforeFirstLoad(t *testing.T) {
	router, _ := newTestRouter(configstore.New())

	w := doJSON(t, router, http.MethodGet, "/api/v1/storefront", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["available"])
}

func TestStorefrontRendersResolvedPages(t *testing.T) {
	configs := configstore.New()
	configs.Replace(models.ConfigDocument{
		Pages: []models.Page{{
			ID:   "home",
			Name: "Home",
			Widgets: []models.Widget{
				{Name: "Header", Props: map[string]interface{}{"title": "Welcome"}},
				{Name: "UnknownWidget"},
			},
		}},
		StoreInfo: models.StoreInfo{Name: "Test Store"},
	})
	router, _ := newTestRouter(configs)

	w := doJSON(t, router, http.MethodGet, "/api/v1/storefront", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Available bool `json:"available"`
		Pages     []struct {
			Units []struct {
				Kind  string `json:"kind"`
				Empty bool   `json:"empty"`
			} `json:"units"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Available)
	require.Len(t, resp.Pages, 1)
	require.Len(t, resp.Pages[0].Units, 2)
	assert.Equal(t, "Header", resp.Pages[0].Units[0].Kind)
	assert.True(t, resp.Pages[0].Units[1].Empty)
}

func TestStatusEndpoint(t *testing.T) {
	router, _ := newTestRouter(configstore.New())

	w := doJSON(t, router, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["isConnected"])
	assert.Equal(t, true, resp["roomJoined"])
	assert.Equal(t, float64(0), resp["coalescedRefetches"])
	assert.NotContains(t, resp, "subscriptionActive")
}

func TestStatusReportsSubscriptionState(t *testing.T) {
	configs := configstore.New()
	configs.Replace(models.ConfigDocument{
		Subscription: models.Subscription{Status: "approved"},
	})
	router, _ := newTestRouter(configs)

	w := doJSON(t, router, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["subscriptionActive"])
}

func TestStorefrontBlockedWhenSubscriptionInactive(t *testing.T) {
	configs := configstore.New()
	configs.Replace(models.ConfigDocument{
		Pages:        []models.Page{{ID: "home", Name: "Home"}},
		Subscription: models.Subscription{Status: "rejected"},
	})
	router, _ := newTestRouter(configs)

	w := doJSON(t, router, http.MethodGet, "/api/v1/storefront", nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["available"])
}

func TestCartAddAndTotals(t *testing.T) {
	router, _ := newTestRouter(configstore.New())

	w := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{
		ProductID: "p1",
		Name:      "Mug",
		Price:     "10.00",
		Quantity:  2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{
		ProductID:     "p2",
		Name:          "Shirt",
		Price:         "20.00",
		DiscountPrice: "15.00",
		Quantity:      1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Totals struct {
			Subtotal      string `json:"subtotal"`
			DiscountTotal string `json:"discountTotal"`
			Tax           string `json:"tax"`
			Total         string `json:"total"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "35", resp.Totals.Subtotal)
	assert.Equal(t, "5", resp.Totals.DiscountTotal)
	assert.Equal(t, "6.3", resp.Totals.Tax)
	assert.Equal(t, "41.3", resp.Totals.Total)
}

func TestCartCapacityConflict(t *testing.T) {
	router, _ := newTestRouter(configstore.New())

	w := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{
		ProductID: "p1", Price: "10.00", Quantity: 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{
		ProductID: "p2", Price: "5.00", Quantity: 1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCartQuantityUpdateAndRemove(t *testing.T) {
	router, local := newTestRouter(configstore.New())

	w := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{
		ProductID: "p1", Price: "10.00", Quantity: 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/v1/cart/items/p1", SetQuantityRequest{Quantity: 4})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, local.TotalUnits())

	w = doJSON(t, router, http.MethodPut, "/api/v1/cart/items/missing", SetQuantityRequest{Quantity: 2})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Removing again is still a success.
	w = doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/p1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, local.Cart())
}

func TestCheckoutClearsCartAndWishlist(t *testing.T) {
	router, local := newTestRouter(configstore.New())

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", AddCartItemRequest{
		ProductID: "p1", Price: "10.00", Quantity: 1,
	})
	doJSON(t, router, http.MethodPost, "/api/v1/wishlist/toggle", ToggleWishlistRequest{
		ProductID: "p2", Price: "₹99",
	})

	w := doJSON(t, router, http.MethodPost, "/api/v1/cart/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, local.Cart())
	assert.Empty(t, local.Wishlist())
}

func TestWishlistToggle(t *testing.T) {
	router, _ := newTestRouter(configstore.New())

	w := doJSON(t, router, http.MethodPost, "/api/v1/wishlist/toggle", ToggleWishlistRequest{
		ProductID: "p1", Name: "Mug", Price: "₹199",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Wishlisted bool `json:"wishlisted"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Wishlisted)

	w = doJSON(t, router, http.MethodPost, "/api/v1/wishlist/toggle", ToggleWishlistRequest{
		ProductID: "p1",
	})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Wishlisted)
}

func TestReadyReflectsConfigLoad(t *testing.T) {
	configs := configstore.New()
	router, _ := newTestRouter(configs)

	w := doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	configs.Replace(models.ConfigDocument{})
	w = doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
