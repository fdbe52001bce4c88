package localstate

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cart_lines (
	product_id          TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	unit_price          TEXT NOT NULL,
	unit_discount_price TEXT NOT NULL,
	quantity            INTEGER NOT NULL,
	currency            TEXT NOT NULL,
	image_url           TEXT NOT NULL DEFAULT '',
	position            INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS wishlist_entries (
	product_id TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	price      TEXT NOT NULL,
	image_url  TEXT NOT NULL DEFAULT '',
	currency   TEXT NOT NULL,
	position   INTEGER NOT NULL
);
`

type cartLineRow struct {
	ProductID         string `db:"product_id"`
	Name              string `db:"name"`
	UnitPrice         string `db:"unit_price"`
	UnitDiscountPrice string `db:"unit_discount_price"`
	Quantity          int    `db:"quantity"`
	Currency          string `db:"currency"`
	ImageURL          string `db:"image_url"`
	Position          int    `db:"position"`
}

type wishlistRow struct {
	ProductID string `db:"product_id"`
	Name      string `db:"name"`
	Price     string `db:"price"`
	ImageURL  string `db:"image_url"`
	Currency  string `db:"currency"`
	Position  int    `db:"position"`
}

// SQLitePersister keeps cart and wishlist state in a local sqlite file, the
// on-device analogue of mobile local storage. Prices are stored as decimal
// strings.
type SQLitePersister struct {
	db *sqlx.DB
}

// NewSQLitePersister opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLitePersister(path string) (*SQLitePersister, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLitePersister{db: db}, nil
}

// Close closes the database.
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}

// SaveCart replaces the persisted cart with the given lines.
func (p *SQLitePersister) SaveCart(ctx context.Context, lines []CartLine) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_lines"); err != nil {
		return fmt.Errorf("failed to clear cart lines: %w", err)
	}

	for i, line := range lines {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cart_lines (product_id, name, unit_price, unit_discount_price, quantity, currency, image_url, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ProductID, line.Name, line.UnitPrice.String(), line.UnitDiscountPrice.String(),
			line.Quantity, line.Currency, line.ImageURL, i)
		if err != nil {
			return fmt.Errorf("failed to insert cart line: %w", err)
		}
	}

	return tx.Commit()
}

// LoadCart returns the persisted cart lines in saved order.
func (p *SQLitePersister) LoadCart(ctx context.Context) ([]CartLine, error) {
	var rows []cartLineRow
	if err := p.db.SelectContext(ctx, &rows, "SELECT * FROM cart_lines ORDER BY position"); err != nil {
		return nil, err
	}

	lines := make([]CartLine, 0, len(rows))
	for _, row := range rows {
		price, err := decimal.NewFromString(row.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("corrupt unit price for %s: %w", row.ProductID, err)
		}
		discount, err := decimal.NewFromString(row.UnitDiscountPrice)
		if err != nil {
			return nil, fmt.Errorf("corrupt discount price for %s: %w", row.ProductID, err)
		}
		lines = append(lines, CartLine{
			ProductID:         row.ProductID,
			Name:              row.Name,
			UnitPrice:         price,
			UnitDiscountPrice: discount,
			Quantity:          row.Quantity,
			Currency:          row.Currency,
			ImageURL:          row.ImageURL,
		})
	}
	return lines, nil
}

// SaveWishlist replaces the persisted wishlist with the given entries.
func (p *SQLitePersister) SaveWishlist(ctx context.Context, entries []WishlistEntry) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM wishlist_entries"); err != nil {
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}

	for i, entry := range entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO wishlist_entries (product_id, name, price, image_url, currency, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			entry.ProductID, entry.Name, entry.Price, entry.ImageURL, entry.Currency, i)
		if err != nil {
			return fmt.Errorf("failed to insert wishlist entry: %w", err)
		}
	}

	return tx.Commit()
}

// LoadWishlist returns the persisted wishlist entries in saved order.
func (p *SQLitePersister) LoadWishlist(ctx context.Context) ([]WishlistEntry, error) {
	var rows []wishlistRow
	if err := p.db.SelectContext(ctx, &rows, "SELECT * FROM wishlist_entries ORDER BY position"); err != nil {
		return nil, err
	}

	entries := make([]WishlistEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, WishlistEntry{
			ProductID: row.ProductID,
			Name:      row.Name,
			Price:     row.Price,
			ImageURL:  row.ImageURL,
			Currency:  row.Currency,
		})
	}
	return entries, nil
}
