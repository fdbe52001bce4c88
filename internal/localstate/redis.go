package localstate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisPersister keeps cart and wishlist state in Redis, keyed per instance.
// Suited to server-hosted storefront instances where the process is
// ephemeral but the session outlives it.
type RedisPersister struct {
	rdb        *redis.Client
	instanceID string
}

// NewRedisPersister connects to Redis and verifies the connection.
func NewRedisPersister(addr, password string, db int, instanceID string) (*RedisPersister, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisPersister{rdb: rdb, instanceID: instanceID}, nil
}

// Close closes the Redis connection.
func (p *RedisPersister) Close() error {
	return p.rdb.Close()
}

func (p *RedisPersister) cartKey() string {
	return fmt.Sprintf("storefront:%s:cart", p.instanceID)
}

func (p *RedisPersister) wishlistKey() string {
	return fmt.Sprintf("storefront:%s:wishlist", p.instanceID)
}

// SaveCart replaces the persisted cart.
func (p *RedisPersister) SaveCart(ctx context.Context, lines []CartLine) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	return p.rdb.Set(ctx, p.cartKey(), raw, 0).Err()
}

// LoadCart returns the persisted cart, or empty when nothing was saved.
func (p *RedisPersister) LoadCart(ctx context.Context) ([]CartLine, error) {
	raw, err := p.rdb.Get(ctx, p.cartKey()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var lines []CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return lines, nil
}

// SaveWishlist replaces the persisted wishlist.
func (p *RedisPersister) SaveWishlist(ctx context.Context, entries []WishlistEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal wishlist: %w", err)
	}
	return p.rdb.Set(ctx, p.wishlistKey(), raw, 0).Err()
}

// LoadWishlist returns the persisted wishlist, or empty when nothing was
// saved.
func (p *RedisPersister) LoadWishlist(ctx context.Context) ([]WishlistEntry, error) {
	raw, err := p.rdb.Get(ctx, p.wishlistKey()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []WishlistEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wishlist: %w", err)
	}
	return entries, nil
}
