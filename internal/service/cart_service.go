package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// getOrCreateCart returns the user's cart, lazily creating an empty one on
// first use. Idempotent: a user never has more than one cart.
func (s *cartService) getOrCreateCart(ctx context.Context, user model.User) (*model.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	now := time.Now()
	cart = &model.Cart{
		ID:         uuid.New(),
		UserID:     user.ID,
		Email:      user.Email,
		TotalPrice: 0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("cart_id", cart.ID.String()).
		Str("user_id", user.ID.String()).
		Msg("cart created for user")

	return cart, nil
}

// GetCart retrieves the user's cart with items and product details.
func (s *cartService) GetCart(ctx context.Context, user model.User) (*model.CartResponse, error) {
	cart, err := s.getOrCreateCart(ctx, user)
	if err != nil {
		return nil, err
	}

	return s.buildCartResponse(ctx, cart)
}

// GetAllCarts retrieves every cart with items and product details.
func (s *cartService) GetAllCarts(ctx context.Context, limit, offset int) ([]model.CartResponse, error) {
	carts, err := s.cartRepo.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]model.CartResponse, 0, len(carts))
	for i := range carts {
		resp, err := s.buildCartResponse(ctx, &carts[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}

	return responses, nil
}

// AddOrUpdateItem stages a product in the cart. If a line for the product
// already exists this delegates to UpdateItemQuantity, so a (cart, product)
// pair never has more than one line. New lines capture a fresh snapshot of
// the product's special price and discount.
func (s *cartService) AddOrUpdateItem(ctx context.Context, user model.User, productID uuid.UUID, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	cart, err := s.getOrCreateCart(ctx, user)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.NewNotFound("Product", "productId", productID)
	}
	if product.Quantity <= 0 {
		return nil, model.NewUnavailable(product.Name)
	}

	existing, err := s.cartRepo.GetItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.UpdateItemQuantity(ctx, user, productID, quantity)
	}

	item := &model.CartItem{
		ID:           uuid.New(),
		CartID:       cart.ID,
		ProductID:    productID,
		Quantity:     quantity,
		ProductPrice: product.SpecialPrice,
		Discount:     product.Discount,
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.cartRepo.InsertItem(ctx, tx, item); err != nil {
		return nil, err
	}

	var total float64
	if total, err = s.cartRepo.RecalculateTotal(ctx, tx, cart.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.logger.Info().
		Str("cart_id", cart.ID.String()).
		Str("product_id", productID.String()).
		Int("quantity", quantity).
		Float64("cart_total", total).
		Msg("product added to cart")

	return item, nil
}

// UpdateItemQuantity changes a staged line's quantity. Zero or negative
// quantity removes the line. On success the line's price snapshot is
// refreshed from the current product state: cart snapshots are soft, resynced
// on every explicit touch, unlike the frozen order snapshot.
func (s *cartService) UpdateItemQuantity(ctx context.Context, user model.User, productID uuid.UUID, quantity int) (*model.CartItem, error) {
	cart, err := s.getOrCreateCart(ctx, user)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.NewNotFound("Product", "productId", productID)
	}

	item, err := s.cartRepo.GetItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.NewNotFound("CartItem", "productId", productID)
	}

	if quantity <= 0 {
		if err := s.removeItemFromCart(ctx, cart, productID); err != nil {
			return nil, err
		}
		item.Quantity = 0
		return item, nil
	}

	if quantity > product.Quantity {
		return nil, model.NewExceedsStock(product.Name, product.Quantity, quantity)
	}

	item.Quantity = quantity
	item.ProductPrice = product.SpecialPrice
	item.Discount = product.Discount

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.cartRepo.UpdateItem(ctx, tx, item); err != nil {
		return nil, err
	}

	var total float64
	if total, err = s.cartRepo.RecalculateTotal(ctx, tx, cart.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	s.logger.Info().
		Str("cart_id", cart.ID.String()).
		Str("product_id", productID.String()).
		Int("quantity", quantity).
		Float64("cart_total", total).
		Msg("cart item updated")

	return item, nil
}

// RemoveItem deletes a staged line and recomputes the cart total.
func (s *cartService) RemoveItem(ctx context.Context, user model.User, productID uuid.UUID) error {
	cart, err := s.getOrCreateCart(ctx, user)
	if err != nil {
		return err
	}

	item, err := s.cartRepo.GetItem(ctx, cart.ID, productID)
	if err != nil {
		return err
	}
	if item == nil {
		return model.NewNotFound("CartItem", "productId", productID)
	}

	return s.removeItemFromCart(ctx, cart, productID)
}

// removeItemFromCart deletes the line and recomputes the total in one
// transaction. Callers have already verified the line exists.
func (s *cartService) removeItemFromCart(ctx context.Context, cart *model.Cart, productID uuid.UUID) error {
	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.cartRepo.DeleteItem(ctx, tx, cart.ID, productID); err != nil {
		return err
	}

	var total float64
	if total, err = s.cartRepo.RecalculateTotal(ctx, tx, cart.ID); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	s.logger.Info().
		Str("cart_id", cart.ID.String()).
		Str("product_id", productID.String()).
		Float64("cart_total", total).
		Msg("product removed from cart")

	return nil
}

// buildCartResponse assembles a cart view with its items and the referenced
// products.
func (s *cartService) buildCartResponse(ctx context.Context, cart *model.Cart) (*model.CartResponse, error) {
	items, err := s.cartRepo.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	return &model.CartResponse{
		ID:         cart.ID,
		TotalPrice: cart.TotalPrice,
		Items:      items,
		Products:   products,
	}, nil
}
