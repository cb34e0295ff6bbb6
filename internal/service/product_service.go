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

// productService implements ProductService. Catalogue writes that affect
// price must keep cart snapshots in sync: an update pushes the new special
// price into every cart line referencing the product, and a delete removes
// those lines, both atomically with the product write.
type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cartRepo     repository.CartRepository
	logger       zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	cartRepo repository.CartRepository,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cartRepo:     cartRepo,
		logger:       logger.With().Str("service", "product").Logger(),
	}
}

// Create adds a product to a category. Duplicate names within a category are
// rejected.
func (s *productService) Create(ctx context.Context, user model.User, categoryID uuid.UUID, req *model.ProductRequest) (*model.Product, error) {
	if req == nil || req.Name == "" {
		return nil, model.NewInvalidInput("product name is required")
	}
	if req.Price < 0 || req.Discount < 0 || req.Discount > 100 {
		return nil, model.NewInvalidInput("price must be non-negative and discount between 0 and 100")
	}

	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, model.NewNotFound("Category", "categoryId", categoryID)
	}

	exists, err := s.productRepo.ExistsInCategory(ctx, categoryID, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.NewConflict(fmt.Sprintf("product %s already exists in category %s", req.Name, category.Name))
	}

	quantity := 0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 0 {
		return nil, model.NewInvalidInput("quantity must be non-negative")
	}

	now := time.Now()
	product := &model.Product{
		ID:          uuid.New(),
		CategoryID:  categoryID,
		UserID:      user.ID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Quantity:    quantity,
		Price:       req.Price,
		Discount:    req.Discount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	product.SpecialPrice = product.ComputeSpecialPrice()

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("name", product.Name).
		Msg("product created")

	return product, nil
}

// Get retrieves a single product.
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.NewNotFound("Product", "productId", id)
	}
	return product, nil
}

// GetAll retrieves products with pagination.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	return s.productRepo.GetAll(ctx, limit, offset)
}

// GetByCategory retrieves a category's products, cheapest first.
func (s *productService) GetByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]model.Product, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, model.NewNotFound("Category", "categoryId", categoryID)
	}
	return s.productRepo.GetByCategory(ctx, categoryID, limit, offset)
}

// GetUserProducts retrieves the products created by the user.
func (s *productService) GetUserProducts(ctx context.Context, user model.User, limit, offset int) ([]model.Product, error) {
	return s.productRepo.GetByUser(ctx, user.ID, limit, offset)
}

// Search retrieves products matching a keyword.
func (s *productService) Search(ctx context.Context, keyword string, limit, offset int) ([]model.Product, error) {
	return s.productRepo.SearchByName(ctx, keyword, limit, offset)
}

// Update changes a product's catalogue data. The special price is recomputed
// and, in the same transaction, pushed into every cart line referencing the
// product; affected cart totals are resummed. Order items are untouched:
// their prices are frozen.
func (s *productService) Update(ctx context.Context, user model.User, id uuid.UUID, req *model.ProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.NewInvalidInput("product request is required")
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.NewNotFound("Product", "productId", id)
	}
	if product.UserID != user.ID {
		return nil, model.ErrForbidden
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.ImageURL != "" {
		product.ImageURL = req.ImageURL
	}
	if req.Price != 0 {
		product.Price = req.Price
	}
	if req.Discount != 0 {
		product.Discount = req.Discount
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, model.NewInvalidInput("quantity must be non-negative")
		}
		product.Quantity = *req.Quantity
	}
	product.SpecialPrice = product.ComputeSpecialPrice()

	cartIDs, err := s.cartRepo.CartIDsWithProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.productRepo.Update(ctx, tx, product); err != nil {
		return nil, err
	}

	if err = s.cartRepo.UpdateSnapshotsForProduct(ctx, tx, id, product.SpecialPrice, product.Discount); err != nil {
		return nil, err
	}

	for _, cartID := range cartIDs {
		if _, err = s.cartRepo.RecalculateTotal(ctx, tx, cartID); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Int("carts_updated", len(cartIDs)).
		Float64("special_price", product.SpecialPrice).
		Msg("product updated")

	return product, nil
}

// Delete removes a product from the catalogue. Cart lines referencing it are
// removed and the affected cart totals resummed in the same transaction.
// Historical order items keep their product reference for display.
func (s *productService) Delete(ctx context.Context, user model.User, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.NewNotFound("Product", "productId", id)
	}
	if product.UserID != user.ID {
		return nil, model.ErrForbidden
	}

	cartIDs, err := s.cartRepo.CartIDsWithProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.cartRepo.DeleteItemsByProduct(ctx, tx, id); err != nil {
		return nil, err
	}

	for _, cartID := range cartIDs {
		if _, err = s.cartRepo.RecalculateTotal(ctx, tx, cartID); err != nil {
			return nil, err
		}
	}

	if err = s.productRepo.Delete(ctx, tx, id); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Int("carts_cleaned", len(cartIDs)).
		Msg("product deleted")

	return product, nil
}
