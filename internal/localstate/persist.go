package localstate

import "context"

// Persister stores cart and wishlist state across process restarts. It is an
// optional collaborator: the in-memory store is always authoritative and a
// failing persister only costs durability, never correctness.
type Persister interface {
	SaveCart(ctx context.Context, lines []CartLine) error
	LoadCart(ctx context.Context) ([]CartLine, error)
	SaveWishlist(ctx context.Context, entries []WishlistEntry) error
	LoadWishlist(ctx context.Context) ([]WishlistEntry, error)
	Close() error
}
