package model

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a user's staging area for a future order. TotalPrice is derived:
// it always equals the sum of ProductPrice * Quantity over the cart's items
// and is recomputed by resumming after every item mutation, never adjusted
// incrementally.
type Cart struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"userId" db:"user_id"`
	Email      string    `json:"email" db:"email"`
	TotalPrice float64   `json:"totalPrice" db:"total_price"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// CartItem is a line in a cart. ProductPrice and Discount are soft snapshots
// of the product's special price and discount: captured when the line is
// created and refreshed whenever the line is explicitly touched or the
// catalogue entry is updated.
type CartItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	CartID       uuid.UUID `json:"-" db:"cart_id"`
	ProductID    uuid.UUID `json:"productId" db:"product_id"`
	Quantity     int       `json:"quantity" db:"quantity"`
	ProductPrice float64   `json:"productPrice" db:"product_price"`
	Discount     float64   `json:"discount" db:"discount"`
}

// AddCartItemRequest represents the payload for adding a product to the cart.
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// UpdateCartItemRequest represents the payload for changing a line's quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse represents a cart with its items and the referenced products.
type CartResponse struct {
	ID         uuid.UUID  `json:"id"`
	TotalPrice float64    `json:"totalPrice"`
	Items      []CartItem `json:"items"`
	Products   []Product  `json:"products"`
}
