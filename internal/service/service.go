package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// CartService defines operations on a user's shopping cart. The cart is a
// staging area: its line items carry soft price snapshots that are refreshed
// whenever a line is touched, and its total is recomputed from the lines
// after every mutation.
type CartService interface {
	// GetCart retrieves the user's cart with items and product details,
	// creating an empty cart on first use.
	GetCart(ctx context.Context, user model.User) (*model.CartResponse, error)

	// GetAllCarts retrieves every cart with items and product details.
	GetAllCarts(ctx context.Context, limit, offset int) ([]model.CartResponse, error)

	// AddOrUpdateItem stages a product in the cart. If the product is already
	// staged the call updates the existing line instead of creating a
	// duplicate.
	AddOrUpdateItem(ctx context.Context, user model.User, productID uuid.UUID, quantity int) (*model.CartItem, error)

	// UpdateItemQuantity changes a staged line's quantity. A zero or negative
	// quantity removes the line.
	UpdateItemQuantity(ctx context.Context, user model.User, productID uuid.UUID, quantity int) (*model.CartItem, error)

	// RemoveItem deletes a staged line.
	RemoveItem(ctx context.Context, user model.User, productID uuid.UUID) error
}

// OrderService defines the purchase flows. Orders are the ledger of record:
// their line prices are frozen at placement and never recomputed.
type OrderService interface {
	// PlaceOrder converts the requested lines into a persisted order,
	// decrementing stock as it goes. All line decrements and the order insert
	// happen in one transaction.
	PlaceOrder(ctx context.Context, user model.User, addressID uuid.UUID, promoCode *string, items []model.OrderItemRequest) (*model.OrderResponse, error)

	// Purchase places an order for the requested lines, cross-checking any
	// that are staged in the cart and removing the matched cart lines on
	// success.
	Purchase(ctx context.Context, user model.User, req *model.PurchaseRequest) (*model.OrderResponse, error)

	// BuySelectedFromCart purchases a selection of staged cart lines using
	// the cart's recorded quantities.
	BuySelectedFromCart(ctx context.Context, user model.User, req *model.CheckoutFromCartRequest) (*model.OrderResponse, error)

	// BuyNow purchases a single item directly, bypassing the cart.
	BuyNow(ctx context.Context, user model.User, req *model.BuyNowRequest) (*model.OrderResponse, error)

	// GetUserOrders retrieves the user's orders with items and product
	// details, newest first.
	GetUserOrders(ctx context.Context, user model.User, limit, offset int) ([]model.OrderResponse, error)

	// GetByID retrieves one of the user's orders.
	GetByID(ctx context.Context, user model.User, id uuid.UUID) (*model.OrderResponse, error)
}

// ProductService defines catalogue operations.
type ProductService interface {
	// Create adds a product to a category.
	Create(ctx context.Context, user model.User, categoryID uuid.UUID, req *model.ProductRequest) (*model.Product, error)

	// Get retrieves a single product.
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetAll retrieves products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByCategory retrieves a category's products, cheapest first.
	GetByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]model.Product, error)

	// GetUserProducts retrieves the products created by the user.
	GetUserProducts(ctx context.Context, user model.User, limit, offset int) ([]model.Product, error)

	// Search retrieves products matching a keyword.
	Search(ctx context.Context, keyword string, limit, offset int) ([]model.Product, error)

	// Update changes a product's catalogue data and propagates the new price
	// snapshot to every cart line referencing it.
	Update(ctx context.Context, user model.User, id uuid.UUID, req *model.ProductRequest) (*model.Product, error)

	// Delete removes a product and cleans up the cart lines referencing it.
	Delete(ctx context.Context, user model.User, id uuid.UUID) (*model.Product, error)
}

// CategoryService defines category management operations.
type CategoryService interface {
	Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error)
	GetAll(ctx context.Context, limit, offset int) ([]model.Category, error)
	Update(ctx context.Context, id uuid.UUID, req *model.CategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AddressService defines address book operations scoped to the owning user.
type AddressService interface {
	Create(ctx context.Context, user model.User, req *model.AddressRequest) (*model.Address, error)
	Get(ctx context.Context, user model.User, id uuid.UUID) (*model.Address, error)
	List(ctx context.Context, user model.User) ([]model.Address, error)
	Update(ctx context.Context, user model.User, id uuid.UUID, req *model.AddressRequest) (*model.Address, error)
	Delete(ctx context.Context, user model.User, id uuid.UUID) error
}
