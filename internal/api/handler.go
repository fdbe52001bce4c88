package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/JBBSoftech/watter/internal/configstore"
	"github.com/JBBSoftech/watter/internal/localstate"
	"github.com/JBBSoftech/watter/internal/models"
	"github.com/JBBSoftech/watter/internal/platform"
	"github.com/JBBSoftech/watter/internal/syncer"
	"github.com/JBBSoftech/watter/internal/util"
	"github.com/JBBSoftech/watter/internal/widgets"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Realtime is the slice of the realtime channel the API needs for status
// reporting.
type Realtime interface {
	IsConnected() bool
	RoomJoined() bool
}

// Handler contains HTTP handlers
type Handler struct {
	configs     *configstore.Store
	local       *localstate.Store
	coordinator *syncer.Coordinator
	realtime    Realtime
}

// NewHandler creates a new HTTP handler
func NewHandler(configs *configstore.Store, local *localstate.Store, coordinator *syncer.Coordinator, realtime Realtime) *Handler {
	return &Handler{
		configs:     configs,
		local:       local,
		coordinator: coordinator,
		realtime:    realtime,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/storefront", h.getStorefront)
		v1.GET("/status", h.getStatus)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PUT("/cart/items/:id", h.setCartItemQuantity)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.POST("/cart/checkout", h.checkout)

		v1.GET("/wishlist", h.getWishlist)
		v1.POST("/wishlist/toggle", h.toggleWishlist)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once a configuration document has loaded
func (h *Handler) readinessCheck(c *gin.Context) {
	if _, ok := h.configs.Get(); !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "waiting for configuration",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getStorefront returns the resolved storefront, or an explicit error state
// when no configuration has ever loaded.
func (h *Handler) getStorefront(c *gin.Context) {
	doc, ok := h.configs.Get()
	if !ok {
		resp := gin.H{"available": false}
		if err := h.configs.LastError(); err != nil {
			resp["error"] = err.Error()
		}
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	if !doc.SubscriptionActive(time.Now()) {
		c.JSON(http.StatusForbidden, gin.H{
			"available": false,
			"error":     "subscription inactive",
		})
		return
	}

	pages := make([]widgets.RenderedPage, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		pages = append(pages, widgets.ResolvePage(page))
	}

	resp := gin.H{
		"available":      true,
		"pages":          pages,
		"storeInfo":      doc.StoreInfo,
		"designSettings": doc.DesignSettings,
	}
	if err := h.configs.LastError(); err != nil {
		resp["stale"] = true
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// getStatus reports sync and connection state
func (h *Handler) getStatus(c *gin.Context) {
	resp := gin.H{
		"isConnected":        h.realtime.IsConnected(),
		"roomJoined":         h.realtime.RoomJoined(),
		"generation":         h.coordinator.Generation(),
		"inFlight":           h.coordinator.InFlight(),
		"coalescedRefetches": h.coordinator.Coalesced(),
	}
	if doc, ok := h.configs.Get(); ok {
		resp["subscriptionActive"] = doc.SubscriptionActive(time.Now())
	}
	if updatedAt := h.configs.UpdatedAt(); !updatedAt.IsZero() {
		resp["lastSyncedAt"] = updatedAt.UTC().Format(time.RFC3339)
	}
	if err := h.configs.LastError(); err != nil {
		resp["lastError"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// AddCartItemRequest is the payload for adding a product to the cart.
type AddCartItemRequest struct {
	ProductID     string `json:"productId" binding:"required"`
	Name          string `json:"name"`
	Price         string `json:"price" binding:"required"`
	DiscountPrice string `json:"discountPrice"`
	Quantity      int    `json:"quantity"`
	ImageURL      string `json:"imageUrl"`
}

// SetQuantityRequest is the payload for changing a line's quantity.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// ToggleWishlistRequest is the payload for toggling a wishlist entry.
type ToggleWishlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	ImageURL  string `json:"imageUrl"`
}

// getCart returns the current cart lines and totals
func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"lines":  h.local.Cart(),
		"totals": h.local.Totals(),
	})
}

// addCartItem adds a product to the cart
func (h *Handler) addCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	price, currency := models.ParsePrice(req.Price)
	discount, _ := models.ParsePrice(req.DiscountPrice)

	line := localstate.CartLine{
		ProductID:         req.ProductID,
		Name:              req.Name,
		UnitPrice:         price,
		UnitDiscountPrice: discount,
		Currency:          currency,
		ImageURL:          req.ImageURL,
	}

	if err := h.local.AddToCart(c.Request.Context(), line, req.Quantity); err != nil {
		if errors.Is(err, platform.ErrCapacityExceeded) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Cart capacity exceeded",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to add to cart",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"lines":  h.local.Cart(),
		"totals": h.local.Totals(),
	})
}

// setCartItemQuantity changes the quantity of one cart line
func (h *Handler) setCartItemQuantity(c *gin.Context) {
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	err := h.local.SetQuantity(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, platform.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not in cart",
			})
		case errors.Is(err, platform.ErrCapacityExceeded):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Cart capacity exceeded",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to update quantity",
				"details": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lines":  h.local.Cart(),
		"totals": h.local.Totals(),
	})
}

// removeCartItem removes a cart line; removing an absent line succeeds
func (h *Handler) removeCartItem(c *gin.Context) {
	h.local.RemoveFromCart(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"lines":  h.local.Cart(),
		"totals": h.local.Totals(),
	})
}

// checkout clears the cart and wishlist
func (h *Handler) checkout(c *gin.Context) {
	totals := h.local.Totals()
	h.local.ClearCart(c.Request.Context())
	h.local.ClearWishlist(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status": "checked out",
		"totals": totals,
	})
}

// getWishlist returns the current wishlist
func (h *Handler) getWishlist(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"entries": h.local.Wishlist(),
	})
}

// toggleWishlist adds or removes a wishlist entry
func (h *Handler) toggleWishlist(c *gin.Context) {
	var req ToggleWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	_, currency := models.ParsePrice(req.Price)
	entry := localstate.WishlistEntry{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		ImageURL:  req.ImageURL,
		Currency:  currency,
	}

	wishlisted := h.local.ToggleWishlist(c.Request.Context(), entry)
	c.JSON(http.StatusOK, gin.H{
		"wishlisted": wishlisted,
		"entries":    h.local.Wishlist(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
