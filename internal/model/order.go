package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Orders are created PENDING; transitions are owned by fulfilment, not this
// service.
const (
	OrderStatusPending OrderStatus = "PENDING"
)

// Order is the ledger of record for a purchase. TotalPrice is the sum of its
// items' frozen prices, computed once at placement. Immutable after creation
// except for status.
type Order struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	UserID     uuid.UUID   `json:"userId" db:"user_id"`
	Email      string      `json:"email" db:"email"`
	AddressID  uuid.UUID   `json:"addressId" db:"address_id"`
	PromoCode  *string     `json:"promoCode,omitempty" db:"promo_code"`
	Status     OrderStatus `json:"status" db:"status"`
	TotalPrice float64     `json:"totalPrice" db:"total_price"`
	OrderDate  time.Time   `json:"orderDate" db:"order_date"`
}

// OrderItem is a line in a placed order. Price is a hard snapshot of
// specialPrice * quantity at placement time and is never recomputed, even if
// the product's price later changes. ProductID is kept for display only.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Price     float64   `json:"price" db:"price"`
}

// OrderItemRequest represents a single requested line in a checkout.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// PurchaseRequest represents a direct purchase. The address is either an
// existing one referenced by ID or a new one supplied inline.
type PurchaseRequest struct {
	AddressID *uuid.UUID         `json:"addressId,omitempty"`
	Address   *AddressRequest    `json:"address,omitempty"`
	PromoCode *string            `json:"promoCode,omitempty"`
	Items     []OrderItemRequest `json:"items"`
}

// CheckoutFromCartRequest represents buying a selection of staged cart lines.
type CheckoutFromCartRequest struct {
	AddressID uuid.UUID          `json:"addressId"`
	PromoCode *string            `json:"promoCode,omitempty"`
	Items     []OrderItemRequest `json:"items"`
}

// BuyNowRequest represents a single-item purchase that bypasses the cart.
type BuyNowRequest struct {
	AddressID uuid.UUID        `json:"addressId"`
	PromoCode *string          `json:"promoCode,omitempty"`
	Item      OrderItemRequest `json:"item"`
}

// OrderResponse represents an order with its items and the referenced
// products.
type OrderResponse struct {
	Order    Order       `json:"order"`
	Items    []OrderItem `json:"items"`
	Products []Product   `json:"products"`
}
