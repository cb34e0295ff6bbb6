package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testUser() model.User {
	return model.User{ID: uuid.New(), Email: "user@example.com"}
}

func testCart(userID uuid.UUID) *model.Cart {
	return &model.Cart{
		ID:         uuid.New(),
		UserID:     userID,
		Email:      "user@example.com",
		TotalPrice: 0,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func testProduct(name string, quantity int, price, discount float64) *model.Product {
	p := &model.Product{
		ID:       uuid.New(),
		Name:     name,
		Quantity: quantity,
		Price:    price,
		Discount: discount,
	}
	p.SpecialPrice = p.ComputeSpecialPrice()
	return p
}

func TestCartService_GetCart_CreatesCartOnFirstUse(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	mockCartRepo.On("GetByUserID", ctx, user.ID).Return(nil, nil)
	mockCartRepo.On("Create", ctx, mock.AnythingOfType("*model.Cart")).Return(nil)
	mockCartRepo.On("GetItems", ctx, mock.AnythingOfType("uuid.UUID")).Return([]model.CartItem{}, nil)
	mockProductRepo.On("GetByIDs", ctx, []uuid.UUID{}).Return([]model.Product{}, nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	resp, err := service.GetCart(ctx, user)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 0.0, resp.TotalPrice)
	assert.Empty(t, resp.Items)
	mockCartRepo.AssertCalled(t, "Create", ctx, mock.AnythingOfType("*model.Cart"))
}

func TestCartService_GetCart_ReusesExistingCart(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()
	cart := testCart(user.ID)
	cart.TotalPrice = 42.50

	product := testProduct("Widget", 10, 25.0, 0)
	items := []model.CartItem{
		{ID: uuid.New(), CartID: cart.ID, ProductID: product.ID, Quantity: 2, ProductPrice: product.SpecialPrice},
	}

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	mockCartRepo.On("GetByUserID", ctx, user.ID).Return(cart, nil)
	mockCartRepo.On("GetItems", ctx, cart.ID).Return(items, nil)
	mockProductRepo.On("GetByIDs", ctx, []uuid.UUID{product.ID}).Return([]model.Product{*product}, nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	resp, err := service.GetCart(ctx, user)

	require.NoError(t, err)
	assert.Equal(t, cart.ID, resp.ID)
	assert.Equal(t, 42.50, resp.TotalPrice)
	assert.Len(t, resp.Items, 1)
	assert.Len(t, resp.Products, 1)
	mockCartRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCartService_AddOrUpdateItem_NewLine(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()
	cart := testCart(user.ID)
	product := testProduct("Widget", 10, 100.0, 25) // special price 75

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	mockTx := new(MockTx)

	mockCartRepo.On("GetByUserID", ctx, user.ID).Return(cart, nil)
	mockProductRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	mockCartRepo.On("GetItem", ctx, cart.ID, product.ID).Return(nil, nil)
	mockCartRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockCartRepo.On("InsertItem", ctx, mockTx, mock.AnythingOfType("*model.CartItem")).Return(nil)
	mockCartRepo.On("RecalculateTotal", ctx, mockTx, cart.ID).Return(150.0, nil)
	mockTx.On("Commit", ctx).Return(nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	item, err := service.AddOrUpdateItem(ctx, user, product.ID, 2)

	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 2, item.Quantity)
	// Fresh snapshot of the discounted price
	assert.Equal(t, 75.0, item.ProductPrice)
	assert.Equal(t, 25.0, item.Discount)
	assert.True(t, mockTx.committed)
}

func TestCartService_AddOrUpdateItem_InvalidQuantity(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	for _, quantity := range []int{0, -1, -100} {
		item, err := service.AddOrUpdateItem(ctx, user, uuid.New(), quantity)

		require.Error(t, err)
		assert.Nil(t, item)
		assert.Equal(t, model.ErrInvalidQuantity, err)
	}
}

func TestCartService_AddOrUpdateItem_ProductNotFound(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()
	cart := testCart(user.ID)
	productID := uuid.New()

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	mockCartRepo.On("GetByUserID", ctx, user.ID).Return(cart, nil)
	mockProductRepo.On("GetByID", ctx, productID).Return(nil, nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	item, err := service.AddOrUpdateItem(ctx, user, productID, 1)

	require.Error(t, err)
	assert.Nil(t, item)

	var domainErr *model.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, model.ErrCodeNotFound, domainErr.Code)
}

func TestCartService_AddOrUpdateItem_ProductUnavailable(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()
	cart := testCart(user.ID)
	product := testProduct("Sold Out", 0, 50.0, 0)

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	mockCartRepo.On("GetByUserID", ctx, user.ID).Return(cart, nil)
	mockProductRepo.On("GetByID", ctx, product.ID).Return(product, nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	item, err := service.AddOrUpdateItem(ctx, user, product.ID, 1)

	require.Error(t, err)
	assert.Nil(t, item)

	var domainErr *model.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, model.ErrCodeUnavailable, domainErr.Code)
}

func TestCartService_AddOrUpdateItem_ExistingLineConverges(t *testing.T) {
	// Staging the same product twice must update the one existing line,
	// never create a second one.
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()
	cart := testCart(user.ID)
	product := testProduct("Widget", 10, 100.0, 0)

	existing := &model.CartItem{
		ID:           uuid.New(),
		CartID:       cart.ID,
		ProductID:    product.ID,
		Quantity:     2,
		ProductPrice: 90.0, // stale snapshot
	}

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	mockTx := new(MockTx)

	mockCartRepo.On("GetByUserID", ctx, user.ID).Return(cart, nil)
	mockProductRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	mockCartRepo.On("GetItem", ctx, cart.ID, product.ID).Return(existing, nil)
	mockCartRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockCartRepo.On("UpdateItem", ctx, mockTx, mock.AnythingOfType("*model.CartItem")).Return(nil)
	mockCartRepo.On("RecalculateTotal", ctx, mockTx, cart.ID).Return(500.0, nil)
	mockTx.On("Commit", ctx).Return(nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	item, err := service.AddOrUpdateItem(ctx, user, product.ID, 5)

	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
	// Snapshot refreshed from the live product
	assert.Equal(t, 100.0, item.ProductPrice)
	mockCartRepo.AssertNotCalled(t, "InsertItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_UpdateItemQuantity_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()
	cart := testCart(user.ID)
	product := testProduct("Widget", 10, 80.0, 10) // special price 72

	existing := &model.CartItem{
		ID:           uuid.New(),
		CartID:       cart.ID,
		ProductID:    product.ID,
		Quantity:     1,
		ProductPrice: 60.0, // stale snapshot
		Discount:     0,
	}

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	mockTx := new(MockTx)

	mockCartRepo.On("GetByUserID", ctx, user.ID).Return(cart, nil)
	mockProductRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	mockCartRepo.On("GetItem", ctx, cart.ID, product.ID).Return(existing, nil)
	mockCartRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockCartRepo.On("UpdateItem", ctx, mockTx, mock.AnythingOfType("*model.CartItem")).Return(nil)
	mockCartRepo.On("RecalculateTotal", ctx, mockTx, cart.ID).Return(216.0, nil)
	mockTx.On("Commit", ctx).Return(nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	item, err := service.UpdateItemQuantity(ctx, user, product.ID, 3)

	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, 72.0, item.ProductPrice)
	assert.Equal(t, 10.0, item.Discount)
	assert.True(t, mockTx.committed)
}

func TestCartService_UpdateItemQuantity_ExceedsStock(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()
	cart := testCart(user.ID)
	product := testProduct("Widget", 3, 80.0, 0)

	existing := &model.CartItem{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  1,
	}

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	mockCartRepo.On("GetByUserID", ctx, user.ID).Return(cart, nil)
	mockProductRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	mockCartRepo.On("GetItem", ctx, cart.ID, product.ID).Return(existing, nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	item, err := service.UpdateItemQuantity(ctx, user, product.ID, 5)

	require.Error(t, err)
	assert.Nil(t, item)

	var domainErr *model.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, model.ErrCodeExceedsStock, domainErr.Code)
	mockCartRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestCartService_UpdateItemQuantity_ZeroRemovesLine(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()
	cart := testCart(user.ID)
	product := testProduct("Widget", 10, 80.0, 0)

	existing := &model.CartItem{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  4,
	}

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	mockTx := new(MockTx)

	mockCartRepo.On("GetByUserID", ctx, user.ID).Return(cart, nil)
	mockProductRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	mockCartRepo.On("GetItem", ctx, cart.ID, product.ID).Return(existing, nil)
	mockCartRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockCartRepo.On("DeleteItem", ctx, mockTx, cart.ID, product.ID).Return(nil)
	mockCartRepo.On("RecalculateTotal", ctx, mockTx, cart.ID).Return(0.0, nil)
	mockTx.On("Commit", ctx).Return(nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	item, err := service.UpdateItemQuantity(ctx, user, product.ID, 0)

	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 0, item.Quantity)
	mockCartRepo.AssertCalled(t, "DeleteItem", ctx, mockTx, cart.ID, product.ID)
	mockCartRepo.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_UpdateItemQuantity_ItemNotFound(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()
	cart := testCart(user.ID)
	product := testProduct("Widget", 10, 80.0, 0)

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	mockCartRepo.On("GetByUserID", ctx, user.ID).Return(cart, nil)
	mockProductRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	mockCartRepo.On("GetItem", ctx, cart.ID, product.ID).Return(nil, nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	item, err := service.UpdateItemQuantity(ctx, user, product.ID, 2)

	require.Error(t, err)
	assert.Nil(t, item)

	var domainErr *model.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, model.ErrCodeNotFound, domainErr.Code)
}

func TestCartService_RemoveItem_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()
	cart := testCart(user.ID)
	productID := uuid.New()

	existing := &model.CartItem{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  1,
	}

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	mockTx := new(MockTx)

	mockCartRepo.On("GetByUserID", ctx, user.ID).Return(cart, nil)
	mockCartRepo.On("GetItem", ctx, cart.ID, productID).Return(existing, nil)
	mockCartRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockCartRepo.On("DeleteItem", ctx, mockTx, cart.ID, productID).Return(nil)
	mockCartRepo.On("RecalculateTotal", ctx, mockTx, cart.ID).Return(0.0, nil)
	mockTx.On("Commit", ctx).Return(nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	err := service.RemoveItem(ctx, user, productID)

	require.NoError(t, err)
	assert.True(t, mockTx.committed)
}

func TestCartService_RemoveItem_NotFound(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()
	cart := testCart(user.ID)
	productID := uuid.New()

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	mockCartRepo.On("GetByUserID", ctx, user.ID).Return(cart, nil)
	mockCartRepo.On("GetItem", ctx, cart.ID, productID).Return(nil, nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	err := service.RemoveItem(ctx, user, productID)

	require.Error(t, err)

	var domainErr *model.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, model.ErrCodeNotFound, domainErr.Code)
}

func TestCartService_AddOrUpdateItem_RollbackOnInsertFailure(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	user := testUser()
	cart := testCart(user.ID)
	product := testProduct("Widget", 10, 100.0, 0)

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	mockTx := new(MockTx)

	mockCartRepo.On("GetByUserID", ctx, user.ID).Return(cart, nil)
	mockProductRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	mockCartRepo.On("GetItem", ctx, cart.ID, product.ID).Return(nil, nil)
	mockCartRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockCartRepo.On("InsertItem", ctx, mockTx, mock.AnythingOfType("*model.CartItem")).Return(errors.New("insert failed"))
	mockTx.On("Rollback", ctx).Return(nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	item, err := service.AddOrUpdateItem(ctx, user, product.ID, 1)

	require.Error(t, err)
	assert.Nil(t, item)
	assert.True(t, mockTx.rolledBack)
	assert.False(t, mockTx.committed)
}
