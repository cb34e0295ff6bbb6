package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeUnavailable        = "PRODUCT_UNAVAILABLE"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeExceedsStock       = "EXCEEDS_STOCK"
	ErrCodeInsufficientCart   = "INSUFFICIENT_CART_QUANTITY"
	ErrCodeInvalidPromoCode   = "INVALID_PROMO_CODE"
	ErrCodeInvalidPromoLength = "INVALID_PROMO_LENGTH"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a typed business failure surfaced to the caller.
// The message carries the offending entity and quantities; the code drives
// HTTP status mapping in the handler layer. Domain errors are never retried
// internally.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewNotFound reports a referenced entity that does not exist.
func NewNotFound(resource, field string, value any) *DomainError {
	return NewDomainError(ErrCodeNotFound,
		fmt.Sprintf("%s not found with %s: %v", resource, field, value))
}

// NewUnavailable reports a product with no stock on an initial cart add.
func NewUnavailable(productName string) *DomainError {
	return NewDomainError(ErrCodeUnavailable,
		fmt.Sprintf("%s is not available", productName))
}

// NewInsufficientStock reports a reservation exceeding live stock.
func NewInsufficientStock(productName string, available, requested int) *DomainError {
	return NewDomainError(ErrCodeInsufficientStock,
		fmt.Sprintf("insufficient stock for product: %s (available: %d, requested: %d)",
			productName, available, requested))
}

// NewExceedsStock reports a cart quantity update exceeding live stock.
func NewExceedsStock(productName string, available, requested int) *DomainError {
	return NewDomainError(ErrCodeExceedsStock,
		fmt.Sprintf("requested quantity exceeds available stock for product: %s (available: %d, requested: %d)",
			productName, available, requested))
}

// NewInsufficientCartQuantity reports a checkout quantity exceeding what is
// staged in the cart.
func NewInsufficientCartQuantity(productName string, staged, requested int) *DomainError {
	return NewDomainError(ErrCodeInsufficientCart,
		fmt.Sprintf("insufficient quantity in cart for product: %s (available: %d, requested: %d)",
			productName, staged, requested))
}

// NewInvalidInput reports a malformed request that passed JSON decoding.
func NewInvalidInput(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidInput, message)
}

// NewConflict reports a uniqueness violation, e.g. a duplicate name.
func NewConflict(message string) *DomainError {
	return NewDomainError(ErrCodeConflict, message)
}

// Common domain errors
var (
	ErrInvalidPromoCode   = NewDomainError(ErrCodeInvalidPromoCode, "Promo code must appear in at least two promo files")
	ErrInvalidPromoLength = NewDomainError(ErrCodeInvalidPromoLength, "Promo code must be between 8 and 10 characters")
	ErrEmptyOrder         = NewInvalidInput("order items cannot be empty")
	ErrEmptyCart          = NewInvalidInput("cart is empty")
	ErrInvalidQuantity    = NewInvalidInput("quantity must be greater than zero")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "you do not own this resource")
)
