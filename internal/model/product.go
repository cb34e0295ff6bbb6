package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalogue product. Quantity is the authoritative stock
// level; SpecialPrice is derived from Price and Discount and stored so cart and
// order snapshots can capture it directly.
type Product struct {
	ID           uuid.UUID `json:"id" db:"id"`
	CategoryID   uuid.UUID `json:"categoryId" db:"category_id"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	ImageURL     string    `json:"imageUrl" db:"image_url"`
	Quantity     int       `json:"quantity" db:"quantity"`
	Price        float64   `json:"price" db:"price"`
	Discount     float64   `json:"discount" db:"discount"`
	SpecialPrice float64   `json:"specialPrice" db:"special_price"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// ComputeSpecialPrice derives the discounted price from Price and Discount.
// Discount is a percentage.
func (p *Product) ComputeSpecialPrice() float64 {
	return p.Price - p.Price*p.Discount/100
}

// Category groups products in the catalogue.
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ProductRequest represents the payload for creating or updating a product.
// Zero-valued fields are left untouched on update.
type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	Quantity    *int    `json:"quantity,omitempty"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
}

// CategoryRequest represents the payload for creating or updating a category.
type CategoryRequest struct {
	Name string `json:"name"`
}
