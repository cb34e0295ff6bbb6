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

const productColumns = `id, category_id, user_id, name, description, image_url,
	quantity, price, discount, special_price, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, category_id, user_id, name, description, image_url,
			quantity, price, discount, special_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID, product.CategoryID, product.UserID, product.Name,
		product.Description, product.ImageURL, product.Quantity, product.Price,
		product.Discount, product.SpecialPrice, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CategoryID, &p.UserID, &p.Name, &p.Description, &p.ImageURL,
		&p.Quantity, &p.Price, &p.Discount, &p.SpecialPrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY name`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetAll retrieves all products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetByCategory retrieves products in a category, cheapest first.
func (r *productRepository) GetByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products WHERE category_id = $1
		ORDER BY price ASC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, categoryID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", categoryID.String()).Msg("failed to query products by category")
		return nil, fmt.Errorf("failed to query products by category: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetByUser retrieves products created by a user.
func (r *productRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products WHERE user_id = $1
		ORDER BY name LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query products by user")
		return nil, fmt.Errorf("failed to query products by user: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// SearchByName retrieves products whose name matches the keyword.
func (r *productRepository) SearchByName(ctx context.Context, keyword string, limit, offset int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, keyword, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Str("keyword", keyword).Msg("failed to search products")
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// ExistsInCategory reports whether a product with the given name already
// exists in the category.
func (r *productRepository) ExistsInCategory(ctx context.Context, categoryID uuid.UUID, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE category_id = $1 AND name = $2)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, categoryID, name).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", categoryID.String()).Msg("failed to check product existence")
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}

	return exists, nil
}

// Update persists catalogue changes to an existing product.
func (r *productRepository) Update(ctx context.Context, tx pgx.Tx, product *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, image_url = $4, quantity = $5,
			price = $6, discount = $7, special_price = $8, updated_at = now()
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.ImageURL,
		product.Quantity, product.Price, product.Discount, product.SpecialPrice)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes a product from the catalogue. Historical order items keep
// their product reference; cart lines are cleaned up by the caller in the
// same transaction.
func (r *productRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// ReserveStock atomically decrements the product's stock inside the given
// transaction. The WHERE clause makes the decrement conditional on sufficient
// stock, so the read and write happen in one statement and concurrent
// reservations serialize on the row instead of both succeeding on stale reads.
func (r *productRepository) ReserveStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) (*model.Product, error) {
	query := `
		UPDATE products
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
		RETURNING ` + productColumns

	var p model.Product
	err := tx.QueryRow(ctx, query, productID, quantity).Scan(
		&p.ID, &p.CategoryID, &p.UserID, &p.Name, &p.Description, &p.ImageURL,
		&p.Quantity, &p.Price, &p.Discount, &p.SpecialPrice, &p.CreatedAt, &p.UpdatedAt)
	if err == nil {
		r.logger.Debug().
			Str("product_id", productID.String()).
			Int("reserved", quantity).
			Int("remaining", p.Quantity).
			Msg("stock reserved")
		return &p, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to reserve stock")
		return nil, fmt.Errorf("failed to reserve stock: %w", err)
	}

	// The decrement matched no row: either the product is gone or stock is
	// short. Classify within the same transaction.
	var name string
	var available int
	err = tx.QueryRow(ctx, `SELECT name, quantity FROM products WHERE id = $1`, productID).
		Scan(&name, &available)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewNotFound("Product", "productId", productID)
	}
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to classify reservation failure")
		return nil, fmt.Errorf("failed to reserve stock: %w", err)
	}

	r.logger.Warn().
		Str("product_id", productID.String()).
		Int("available", available).
		Int("requested", quantity).
		Msg("insufficient stock")
	return nil, model.NewInsufficientStock(name, available, quantity)
}

// scanProducts collects product rows.
func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(
			&p.ID, &p.CategoryID, &p.UserID, &p.Name, &p.Description, &p.ImageURL,
			&p.Quantity, &p.Price, &p.Discount, &p.SpecialPrice, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
