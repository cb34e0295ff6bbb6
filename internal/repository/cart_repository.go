package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *cartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// GetByUserID retrieves a user's cart.
func (r *cartRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	query := `
		SELECT id, user_id, email, total_price, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	var c model.Cart
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&c.ID, &c.UserID, &c.Email, &c.TotalPrice, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("user_id", userID.String()).Msg("cart not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	return &c, nil
}

// Create inserts a new empty cart.
func (r *cartRepository) Create(ctx context.Context, cart *model.Cart) error {
	query := `
		INSERT INTO carts (id, user_id, email, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		cart.ID, cart.UserID, cart.Email, cart.TotalPrice, cart.CreatedAt, cart.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", cart.UserID.String()).Msg("failed to create cart")
		return fmt.Errorf("failed to create cart: %w", err)
	}

	r.logger.Debug().
		Str("cart_id", cart.ID.String()).
		Str("user_id", cart.UserID.String()).
		Msg("cart created")

	return nil
}

// GetAll retrieves all carts with pagination support.
func (r *cartRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Cart, error) {
	query := `
		SELECT id, user_id, email, total_price, created_at, updated_at
		FROM carts
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query carts")
		return nil, fmt.Errorf("failed to query carts: %w", err)
	}
	defer rows.Close()

	var carts []model.Cart
	for rows.Next() {
		var c model.Cart
		err := rows.Scan(&c.ID, &c.UserID, &c.Email, &c.TotalPrice, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart: %w", err)
		}
		carts = append(carts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating carts: %w", err)
	}

	return carts, nil
}

// GetItems retrieves a cart's items.
func (r *cartRepository) GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, quantity, product_price, discount
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.ProductPrice, &item.Discount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// GetItem retrieves the cart line for a product.
func (r *cartRepository) GetItem(ctx context.Context, cartID, productID uuid.UUID) (*model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, quantity, product_price, discount
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`

	var item model.CartItem
	err := r.pool.QueryRow(ctx, query, cartID, productID).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
		&item.ProductPrice, &item.Discount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID.String()).
			Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}

	return &item, nil
}

// InsertItem inserts a new cart line.
func (r *cartRepository) InsertItem(ctx context.Context, tx pgx.Tx, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, product_price, discount)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		item.ID, item.CartID, item.ProductID, item.Quantity, item.ProductPrice, item.Discount)
	if err != nil {
		r.logger.Error().Err(err).
			Str("cart_id", item.CartID.String()).
			Str("product_id", item.ProductID.String()).
			Msg("failed to insert cart item")
		return fmt.Errorf("failed to insert cart item: %w", err)
	}

	return nil
}

// UpdateItem persists a line's quantity and refreshed price snapshot.
func (r *cartRepository) UpdateItem(ctx context.Context, tx pgx.Tx, item *model.CartItem) error {
	query := `
		UPDATE cart_items
		SET quantity = $2, product_price = $3, discount = $4
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query, item.ID, item.Quantity, item.ProductPrice, item.Discount)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", item.ID.String()).Msg("failed to update cart item")
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	return nil
}

// DeleteItem removes the cart line for a product.
func (r *cartRepository) DeleteItem(ctx context.Context, tx pgx.Tx, cartID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`

	_, err := tx.Exec(ctx, query, cartID, productID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID.String()).
			Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return nil
}

// DecrementItem subtracts quantity from the cart line for a product. Lines
// that reach zero are removed. Fully consumed lines are deleted up front so
// the decrement never drives quantity to zero, which the schema forbids.
func (r *cartRepository) DecrementItem(ctx context.Context, tx pgx.Tx, cartID, productID uuid.UUID, quantity int) error {
	_, err := tx.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2 AND quantity <= $3`,
		cartID, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID.String()).
			Msg("failed to remove consumed cart item")
		return fmt.Errorf("failed to remove consumed cart item: %w", err)
	}

	query := `
		UPDATE cart_items
		SET quantity = quantity - $3
		WHERE cart_id = $1 AND product_id = $2 AND quantity > $3
	`

	_, err = tx.Exec(ctx, query, cartID, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID.String()).
			Msg("failed to decrement cart item")
		return fmt.Errorf("failed to decrement cart item: %w", err)
	}

	return nil
}

// CartIDsWithProduct retrieves the IDs of all carts holding a line for the
// product.
func (r *cartRepository) CartIDsWithProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT cart_id FROM cart_items WHERE product_id = $1`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query carts with product")
		return nil, fmt.Errorf("failed to query carts with product: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan cart ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart IDs: %w", err)
	}

	return ids, nil
}

// UpdateSnapshotsForProduct refreshes the captured price and discount on every
// cart line referencing the product.
func (r *cartRepository) UpdateSnapshotsForProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID, price, discount float64) error {
	query := `
		UPDATE cart_items
		SET product_price = $2, discount = $3
		WHERE product_id = $1
	`

	tag, err := tx.Exec(ctx, query, productID, price, discount)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to refresh cart snapshots")
		return fmt.Errorf("failed to refresh cart snapshots: %w", err)
	}

	r.logger.Debug().
		Str("product_id", productID.String()).
		Int64("lines", tag.RowsAffected()).
		Msg("cart snapshots refreshed")

	return nil
}

// DeleteItemsByProduct removes every cart line referencing the product.
func (r *cartRepository) DeleteItemsByProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE product_id = $1`, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to delete cart items by product")
		return fmt.Errorf("failed to delete cart items by product: %w", err)
	}

	r.logger.Debug().
		Str("product_id", productID.String()).
		Int64("lines", tag.RowsAffected()).
		Msg("cart lines removed for deleted product")

	return nil
}

// RecalculateTotal resums the cart's line items and persists the result. The
// subquery recomputes the total from scratch so the stored value can never
// drift from the lines.
func (r *cartRepository) RecalculateTotal(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) (float64, error) {
	query := `
		UPDATE carts
		SET total_price = COALESCE(
			(SELECT SUM(product_price * quantity) FROM cart_items WHERE cart_id = $1), 0),
			updated_at = now()
		WHERE id = $1
		RETURNING total_price
	`

	var total float64
	err := tx.QueryRow(ctx, query, cartID).Scan(&total)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to recalculate cart total")
		return 0, fmt.Errorf("failed to recalculate cart total: %w", err)
	}

	return total, nil
}
