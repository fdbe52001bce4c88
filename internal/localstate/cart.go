package localstate

import (
	"context"
	"sync"

	"github.com/JBBSoftech/watter/internal/platform"
	"github.com/JBBSoftech/watter/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartLine is one product in the cart. Owned by the client session; never
// part of the configuration document.
type CartLine struct {
	ProductID         string          `json:"productId"`
	Name              string          `json:"name"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	UnitDiscountPrice decimal.Decimal `json:"unitDiscountPrice"`
	Quantity          int             `json:"quantity"`
	Currency          string          `json:"currency"`
	ImageURL          string          `json:"imageUrl,omitempty"`
}

// EffectivePrice is the discounted price when a positive discount is set,
// else the unit price.
func (l CartLine) EffectivePrice() decimal.Decimal {
	if l.UnitDiscountPrice.IsPositive() {
		return l.UnitDiscountPrice
	}
	return l.UnitPrice
}

// WishlistEntry is one wishlisted product. Set semantics: a product id
// appears at most once.
type WishlistEntry struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Currency  string `json:"currency"`
}

// Totals are the derived monetary values of the current cart.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discountTotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
}

// Options configure session-local state.
type Options struct {
	MaxUnits       int
	TaxRatePercent int
	Persister      Persister
}

// Store holds session-local state: cart lines, wishlist entries and the
// derived totals. Configuration reloads never touch it. Mutations are
// serialized by a single mutex; writes to the optional persister are
// best-effort and never affect in-memory state.
type Store struct {
	opts   Options
	logger *zap.Logger

	mu        sync.Mutex
	lines     map[string]*CartLine
	lineOrder []string
	wishlist  map[string]WishlistEntry
	wishOrder []string
}

// New creates an empty local state store.
func New(opts Options) *Store {
	if opts.MaxUnits <= 0 {
		opts.MaxUnits = 10
	}
	if opts.TaxRatePercent < 0 {
		opts.TaxRatePercent = 18
	}
	s := &Store{
		opts:     opts,
		logger:   util.GetLogger(),
		lines:    make(map[string]*CartLine),
		wishlist: make(map[string]WishlistEntry),
	}
	return s
}

// Restore loads persisted cart and wishlist state, if a persister is
// configured. Errors are returned so the caller can decide to start empty.
func (s *Store) Restore(ctx context.Context) error {
	if s.opts.Persister == nil {
		return nil
	}

	lines, err := s.opts.Persister.LoadCart(ctx)
	if err != nil {
		return err
	}
	entries, err := s.opts.Persister.LoadWishlist(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make(map[string]*CartLine, len(lines))
	s.lineOrder = s.lineOrder[:0]
	for i := range lines {
		line := lines[i]
		s.lines[line.ProductID] = &line
		s.lineOrder = append(s.lineOrder, line.ProductID)
	}
	s.wishlist = make(map[string]WishlistEntry, len(entries))
	s.wishOrder = s.wishOrder[:0]
	for _, entry := range entries {
		s.wishlist[entry.ProductID] = entry
		s.wishOrder = append(s.wishOrder, entry.ProductID)
	}
	return nil
}

// AddToCart inserts a line or increments the quantity of an existing one.
// The aggregate quantity across all lines is capped; a call that would cross
// the cap fails with ErrCapacityExceeded and leaves state unchanged.
func (s *Store) AddToCart(ctx context.Context, line CartLine, qty int) error {
	if qty <= 0 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.totalUnitsLocked()+qty > s.opts.MaxUnits {
		util.CartRejectionsTotal.WithLabelValues("capacity").Inc()
		return platform.ErrCapacityExceeded
	}

	if existing, ok := s.lines[line.ProductID]; ok {
		existing.Quantity += qty
	} else {
		line.Quantity = qty
		s.lines[line.ProductID] = &line
		s.lineOrder = append(s.lineOrder, line.ProductID)
	}

	util.CartOperationsTotal.WithLabelValues("add").Inc()
	s.persistCartLocked(ctx)
	return nil
}

// RemoveFromCart removes a line. Removing an absent id is a no-op success.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[productID]; !ok {
		return
	}
	delete(s.lines, productID)
	s.lineOrder = removeID(s.lineOrder, productID)

	util.CartOperationsTotal.WithLabelValues("remove").Inc()
	s.persistCartLocked(ctx)
}

// SetQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line; a quantity that would push the aggregate over the
// cap fails with ErrCapacityExceeded. Setting quantity on an absent id fails
// with ErrNotFound.
func (s *Store) SetQuantity(ctx context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[productID]
	if !ok {
		if qty <= 0 {
			return nil
		}
		return platform.ErrNotFound
	}

	if qty <= 0 {
		delete(s.lines, productID)
		s.lineOrder = removeID(s.lineOrder, productID)
		util.CartOperationsTotal.WithLabelValues("remove").Inc()
		s.persistCartLocked(ctx)
		return nil
	}

	if s.totalUnitsLocked()-line.Quantity+qty > s.opts.MaxUnits {
		util.CartRejectionsTotal.WithLabelValues("capacity").Inc()
		return platform.ErrCapacityExceeded
	}

	line.Quantity = qty
	util.CartOperationsTotal.WithLabelValues("set_quantity").Inc()
	s.persistCartLocked(ctx)
	return nil
}

// ClearCart empties the cart, used after checkout.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make(map[string]*CartLine)
	s.lineOrder = s.lineOrder[:0]
	util.CartOperationsTotal.WithLabelValues("clear").Inc()
	s.persistCartLocked(ctx)
}

// ClearWishlist empties the wishlist.
func (s *Store) ClearWishlist(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wishlist = make(map[string]WishlistEntry)
	s.wishOrder = s.wishOrder[:0]
	s.persistWishlistLocked(ctx)
}

// ToggleWishlist adds the entry if its product id is absent and removes it if
// present. It returns true when the product is wishlisted after the call.
func (s *Store) ToggleWishlist(ctx context.Context, entry WishlistEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	util.WishlistTogglesTotal.Inc()

	if _, ok := s.wishlist[entry.ProductID]; ok {
		delete(s.wishlist, entry.ProductID)
		s.wishOrder = removeID(s.wishOrder, entry.ProductID)
		s.persistWishlistLocked(ctx)
		return false
	}

	s.wishlist[entry.ProductID] = entry
	s.wishOrder = append(s.wishOrder, entry.ProductID)
	s.persistWishlistLocked(ctx)
	return true
}

// Cart returns the cart lines in insertion order.
func (s *Store) Cart() []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked()
}

// Wishlist returns the wishlist entries in insertion order.
func (s *Store) Wishlist() []WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlistLocked()
}

// TotalUnits returns the aggregate quantity across all cart lines.
func (s *Store) TotalUnits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalUnitsLocked()
}

// Totals computes subtotal, discount, tax and total for the current cart
// using exact decimal arithmetic.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	subtotal := decimal.Zero
	discountTotal := decimal.Zero
	for _, id := range s.lineOrder {
		line := s.lines[id]
		qty := decimal.NewFromInt(int64(line.Quantity))
		effective := line.EffectivePrice()
		subtotal = subtotal.Add(effective.Mul(qty))
		discountTotal = discountTotal.Add(line.UnitPrice.Sub(effective).Mul(qty))
	}

	rate := decimal.NewFromInt(int64(s.opts.TaxRatePercent)).Div(decimal.NewFromInt(100))
	tax := subtotal.Mul(rate)

	return Totals{
		Subtotal:      subtotal,
		DiscountTotal: discountTotal,
		Tax:           tax,
		Total:         subtotal.Add(tax),
	}
}

func (s *Store) cartLocked() []CartLine {
	out := make([]CartLine, 0, len(s.lineOrder))
	for _, id := range s.lineOrder {
		out = append(out, *s.lines[id])
	}
	return out
}

func (s *Store) wishlistLocked() []WishlistEntry {
	out := make([]WishlistEntry, 0, len(s.wishOrder))
	for _, id := range s.wishOrder {
		out = append(out, s.wishlist[id])
	}
	return out
}

func (s *Store) totalUnitsLocked() int {
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

func (s *Store) persistCartLocked(ctx context.Context) {
	if s.opts.Persister == nil {
		return
	}
	if err := s.opts.Persister.SaveCart(ctx, s.cartLocked()); err != nil {
		s.logger.Warn("Failed to persist cart", zap.Error(err))
	}
}

func (s *Store) persistWishlistLocked(ctx context.Context) {
	if s.opts.Persister == nil {
		return
	}
	if err := s.opts.Persister.SaveWishlist(ctx, s.wishlistLocked()); err != nil {
		s.logger.Warn("Failed to persist wishlist", zap.Error(err))
	}
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
