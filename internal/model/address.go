package model

import (
	"time"

	"github.com/google/uuid"
)

// Address is a delivery address owned by a user. Orders reference addresses
// by ID without owning them.
type Address struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	BuildingName string    `json:"buildingName" db:"building_name"`
	Street       string    `json:"street" db:"street"`
	City         string    `json:"city" db:"city"`
	State        string    `json:"state" db:"state"`
	Country      string    `json:"country" db:"country"`
	Pincode      string    `json:"pincode" db:"pincode"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// AddressRequest represents the payload for creating or updating an address.
type AddressRequest struct {
	BuildingName string `json:"buildingName"`
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	Pincode      string `json:"pincode"`
}

// User is the opaque identity pair supplied by the upstream identity
// provider.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
