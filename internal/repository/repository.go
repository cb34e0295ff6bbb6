package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
// Methods taking a pgx.Tx participate in a caller-owned transaction; the rest
// run against the pool.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// GetByID retrieves a single product by its ID. Returns (nil, nil) when
	// the product does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByCategory retrieves products in a category, cheapest first.
	GetByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]model.Product, error)

	// GetByUser retrieves products created by a user.
	GetByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Product, error)

	// SearchByName retrieves products whose name matches the keyword,
	// case-insensitively.
	SearchByName(ctx context.Context, keyword string, limit, offset int) ([]model.Product, error)

	// ExistsInCategory reports whether a product with the given name already
	// exists in the category.
	ExistsInCategory(ctx context.Context, categoryID uuid.UUID, name string) (bool, error)

	// Update persists catalogue changes to an existing product.
	Update(ctx context.Context, tx pgx.Tx, product *model.Product) error

	// Delete removes a product from the catalogue.
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// ReserveStock atomically decrements the product's stock by quantity
	// inside the given transaction and returns the product as of after the
	// decrement. The decrement is conditional: two concurrent reservations
	// against the same product serialize on the row, and the loser fails.
	// Fails with a NOT_FOUND domain error when the product does not exist and
	// an INSUFFICIENT_STOCK domain error when quantity exceeds live stock.
	ReserveStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) (*model.Product, error)
}

// CartRepository defines the interface for cart and cart item data access.
type CartRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetByUserID retrieves a user's cart. Returns (nil, nil) when the user
	// has no cart yet.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// Create inserts a new empty cart.
	Create(ctx context.Context, cart *model.Cart) error

	// GetAll retrieves all carts with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Cart, error)

	// GetItems retrieves a cart's items.
	GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error)

	// GetItem retrieves the cart line for a product. Returns (nil, nil) when
	// no such line exists.
	GetItem(ctx context.Context, cartID, productID uuid.UUID) (*model.CartItem, error)

	// InsertItem inserts a new cart line.
	InsertItem(ctx context.Context, tx pgx.Tx, item *model.CartItem) error

	// UpdateItem persists a line's quantity and refreshed price snapshot.
	UpdateItem(ctx context.Context, tx pgx.Tx, item *model.CartItem) error

	// DeleteItem removes the cart line for a product.
	DeleteItem(ctx context.Context, tx pgx.Tx, cartID, productID uuid.UUID) error

	// DecrementItem subtracts quantity from the cart line for a product.
	DecrementItem(ctx context.Context, tx pgx.Tx, cartID, productID uuid.UUID, quantity int) error

	// CartIDsWithProduct retrieves the IDs of all carts holding a line for
	// the product.
	CartIDsWithProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)

	// UpdateSnapshotsForProduct refreshes the captured price and discount on
	// every cart line referencing the product.
	UpdateSnapshotsForProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID, price, discount float64) error

	// DeleteItemsByProduct removes every cart line referencing the product.
	DeleteItemsByProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error

	// RecalculateTotal resums the cart's line items and persists the result
	// as the cart's total price. Always a full resum, never incremental.
	RecalculateTotal(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) (float64, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items. Returns
	// (nil, nil, nil) when the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error)

	// GetItemsByOrderIDs retrieves the items of the given orders.
	GetItemsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]model.OrderItem, error)
}

// AddressRepository defines the interface for address data access operations.
type AddressRepository interface {
	// Create inserts a new address.
	Create(ctx context.Context, address *model.Address) error

	// CreateTx inserts a new address within an existing transaction.
	CreateTx(ctx context.Context, tx pgx.Tx, address *model.Address) error

	// GetByID retrieves an address by its ID. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Address, error)

	// ListByUser retrieves a user's addresses.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error)

	// Update persists changes to an existing address.
	Update(ctx context.Context, address *model.Address) error

	// Delete removes an address.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	// Create inserts a new category.
	Create(ctx context.Context, category *model.Category) error

	// GetByID retrieves a category by its ID. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)

	// GetByName retrieves a category by name. Returns (nil, nil) when absent.
	GetByName(ctx context.Context, name string) (*model.Category, error)

	// GetAll retrieves all categories with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Category, error)

	// Update persists changes to an existing category.
	Update(ctx context.Context, category *model.Category) error

	// Delete removes a category.
	Delete(ctx context.Context, id uuid.UUID) error
}
