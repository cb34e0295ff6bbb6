package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/promo"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderService implements OrderService. It assembles orders from requested
// lines, reserving stock as it goes, and reconciles the cart afterwards so a
// checkout never leaves the cart inconsistent with what was purchased.
type orderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	cartRepo      repository.CartRepository
	addressRepo   repository.AddressRepository
	validator     promo.Validator
	removalPolicy string
	logger        zerolog.Logger
}

// NewOrderService creates a new order service. removalPolicy controls how
// purchased cart lines are reconciled (see config.RemovalPolicyLine).
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	validator promo.Validator,
	removalPolicy string,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		cartRepo:      cartRepo,
		addressRepo:   addressRepo,
		validator:     validator,
		removalPolicy: removalPolicy,
		logger:        logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder converts the requested lines into a persisted order. Stock
// decrements and the order insert happen in one transaction: if any line
// fails, nothing is observable.
func (s *orderService) PlaceOrder(ctx context.Context, user model.User, addressID uuid.UUID, promoCode *string, items []model.OrderItemRequest) (*model.OrderResponse, error) {
	if err := validateOrderItems(items); err != nil {
		return nil, err
	}
	if err := s.validatePromoCode(ctx, promoCode); err != nil {
		return nil, err
	}
	if _, err := s.resolveOwnAddress(ctx, user, addressID); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, orderItems, err := s.assembleOrder(ctx, tx, user, addressID, promoCode, items)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(orderItems)).
		Float64("total_price", order.TotalPrice).
		Msg("order placed")

	return s.buildOrderResponse(ctx, order, orderItems)
}

// Purchase places an order for the requested lines. Lines whose product is
// staged in the cart are cross-checked against the staged quantity, and the
// matched cart lines are reconciled after the order is placed, all within the
// same transaction.
func (s *orderService) Purchase(ctx context.Context, user model.User, req *model.PurchaseRequest) (*model.OrderResponse, error) {
	if req == nil {
		return nil, model.NewInvalidInput("purchase request is required")
	}
	if err := validateOrderItems(req.Items); err != nil {
		return nil, err
	}
	if err := s.validatePromoCode(ctx, req.PromoCode); err != nil {
		return nil, err
	}

	addressID, pendingAddress, err := s.resolveAddress(ctx, user, req)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	// Cross-check requested lines against the cart before touching stock. The
	// cart is single-writer per user, so these reads cannot race with another
	// mutation of the same cart.
	matched, err := s.matchCartLines(ctx, cart, req.Items)
	if err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// An inline address lives and dies with the checkout: a failed purchase
	// rolls it back along with everything else.
	if pendingAddress != nil {
		if err = s.addressRepo.CreateTx(ctx, tx, pendingAddress); err != nil {
			return nil, err
		}
	}

	order, orderItems, err := s.assembleOrder(ctx, tx, user, addressID, req.PromoCode, req.Items)
	if err != nil {
		return nil, err
	}

	if err = s.reconcileCart(ctx, tx, cart, matched); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(orderItems)).
		Int("cart_lines_reconciled", len(matched)).
		Msg("purchase completed")

	return s.buildOrderResponse(ctx, order, orderItems)
}

// BuySelectedFromCart purchases a selection of staged cart lines. The order
// is built from the cart's recorded quantities for the selected lines; the
// request quantities only bound what may be selected.
func (s *orderService) BuySelectedFromCart(ctx context.Context, user model.User, req *model.CheckoutFromCartRequest) (*model.OrderResponse, error) {
	if req == nil {
		return nil, model.NewInvalidInput("checkout request is required")
	}
	if err := validateOrderItems(req.Items); err != nil {
		return nil, err
	}
	if err := s.validatePromoCode(ctx, req.PromoCode); err != nil {
		return nil, err
	}
	if _, err := s.resolveOwnAddress(ctx, user, req.AddressID); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, model.ErrEmptyCart
	}

	staged, err := s.cartRepo.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(staged) == 0 {
		return nil, model.ErrEmptyCart
	}

	stagedByProduct := make(map[uuid.UUID]model.CartItem, len(staged))
	for _, line := range staged {
		stagedByProduct[line.ProductID] = line
	}

	orderLines := make([]model.OrderItemRequest, 0, len(req.Items))
	matched := make([]cartLineMatch, 0, len(req.Items))
	for _, sel := range req.Items {
		line, ok := stagedByProduct[sel.ProductID]
		if !ok {
			return nil, model.NewNotFound("CartItem", "productId", sel.ProductID)
		}
		if sel.Quantity > line.Quantity {
			name, err := s.productName(ctx, sel.ProductID)
			if err != nil {
				return nil, err
			}
			return nil, model.NewInsufficientCartQuantity(name, line.Quantity, sel.Quantity)
		}
		orderLines = append(orderLines, model.OrderItemRequest{
			ProductID: sel.ProductID,
			Quantity:  line.Quantity,
		})
		matched = append(matched, cartLineMatch{productID: sel.ProductID, purchased: line.Quantity})
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, orderItems, err := s.assembleOrder(ctx, tx, user, req.AddressID, req.PromoCode, orderLines)
	if err != nil {
		return nil, err
	}

	if err = s.reconcileCart(ctx, tx, cart, matched); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(orderItems)).
		Msg("cart checkout completed")

	return s.buildOrderResponse(ctx, order, orderItems)
}

// BuyNow purchases a single item directly, with no cart interaction.
func (s *orderService) BuyNow(ctx context.Context, user model.User, req *model.BuyNowRequest) (*model.OrderResponse, error) {
	if req == nil {
		return nil, model.NewInvalidInput("buy-now request is required")
	}
	return s.PlaceOrder(ctx, user, req.AddressID, req.PromoCode, []model.OrderItemRequest{req.Item})
}

// GetUserOrders retrieves the user's orders with items and product details.
func (s *orderService) GetUserOrders(ctx context.Context, user model.User, limit, offset int) ([]model.OrderResponse, error) {
	orders, err := s.orderRepo.ListByUser(ctx, user.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []model.OrderResponse{}, nil
	}

	orderIDs := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}

	items, err := s.orderRepo.GetItemsByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	itemsByOrder := make(map[uuid.UUID][]model.OrderItem)
	productIDSet := make(map[uuid.UUID]struct{})
	for _, item := range items {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
		productIDSet[item.ProductID] = struct{}{}
	}

	productIDs := make([]uuid.UUID, 0, len(productIDSet))
	for id := range productIDSet {
		productIDs = append(productIDs, id)
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productsByID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	responses := make([]model.OrderResponse, 0, len(orders))
	for _, order := range orders {
		orderItems := itemsByOrder[order.ID]
		orderProducts := make([]model.Product, 0, len(orderItems))
		for _, item := range orderItems {
			if p, ok := productsByID[item.ProductID]; ok {
				orderProducts = append(orderProducts, p)
			}
		}
		responses = append(responses, model.OrderResponse{
			Order:    order,
			Items:    orderItems,
			Products: orderProducts,
		})
	}

	return responses, nil
}

// GetByID retrieves one of the user's orders. Returns (nil, nil) when the
// order does not exist or belongs to another user.
func (s *orderService) GetByID(ctx context.Context, user model.User, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != user.ID {
		return nil, nil
	}

	return s.buildOrderResponse(ctx, order, items)
}

// cartLineMatch records a cart line consumed by a checkout.
type cartLineMatch struct {
	productID uuid.UUID
	purchased int
}

// assembleOrder reserves stock for each requested line in request order and
// persists the order with frozen per-line prices. Runs entirely inside the
// caller's transaction so any line failure rolls back every prior decrement.
func (s *orderService) assembleOrder(ctx context.Context, tx pgx.Tx, user model.User, addressID uuid.UUID, promoCode *string, items []model.OrderItemRequest) (*model.Order, []model.OrderItem, error) {
	order := &model.Order{
		ID:        uuid.New(),
		UserID:    user.ID,
		Email:     user.Email,
		AddressID: addressID,
		PromoCode: promoCode,
		Status:    model.OrderStatusPending,
		OrderDate: time.Now(),
	}

	orderItems := make([]model.OrderItem, 0, len(items))
	var totalPrice float64
	for _, line := range items {
		product, err := s.productRepo.ReserveStock(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, nil, err
		}

		// Hard snapshot: the line price is specialPrice * quantity as of
		// this moment and is never recomputed.
		price := product.SpecialPrice * float64(line.Quantity)
		orderItems = append(orderItems, model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     price,
		})
		totalPrice += price
	}

	order.TotalPrice = totalPrice

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, nil, err
	}
	if err := s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		return nil, nil, err
	}

	return order, orderItems, nil
}

// matchCartLines cross-checks requested purchase lines against the cart.
// A requested line whose product is staged must not exceed the staged
// quantity. Returns the matched lines for later reconciliation.
func (s *orderService) matchCartLines(ctx context.Context, cart *model.Cart, items []model.OrderItemRequest) ([]cartLineMatch, error) {
	if cart == nil {
		return nil, nil
	}

	var matched []cartLineMatch
	for _, line := range items {
		staged, err := s.cartRepo.GetItem(ctx, cart.ID, line.ProductID)
		if err != nil {
			return nil, err
		}
		if staged == nil {
			continue
		}
		if staged.Quantity < line.Quantity {
			name, err := s.productName(ctx, line.ProductID)
			if err != nil {
				return nil, err
			}
			return nil, model.NewInsufficientCartQuantity(name, staged.Quantity, line.Quantity)
		}
		matched = append(matched, cartLineMatch{productID: line.ProductID, purchased: line.Quantity})
	}

	return matched, nil
}

// reconcileCart removes consumed cart lines inside the checkout transaction
// and recomputes the cart total. Under the line removal policy the whole
// matched line is dropped even when only part of its quantity was purchased;
// the decrement policy subtracts only the purchased quantity.
func (s *orderService) reconcileCart(ctx context.Context, tx pgx.Tx, cart *model.Cart, matched []cartLineMatch) error {
	if cart == nil || len(matched) == 0 {
		return nil
	}

	for _, m := range matched {
		var err error
		if s.removalPolicy == config.RemovalPolicyDecrement {
			err = s.cartRepo.DecrementItem(ctx, tx, cart.ID, m.productID, m.purchased)
		} else {
			err = s.cartRepo.DeleteItem(ctx, tx, cart.ID, m.productID)
		}
		if err != nil {
			return err
		}
	}

	if _, err := s.cartRepo.RecalculateTotal(ctx, tx, cart.ID); err != nil {
		return err
	}

	return nil
}

// resolveAddress determines the delivery address for a purchase. An existing
// address referenced by ID is verified and returned with a nil pending
// address. An inline payload yields a pending address that the caller must
// insert inside the checkout transaction, so a failed purchase does not
// leave a stray address behind.
func (s *orderService) resolveAddress(ctx context.Context, user model.User, req *model.PurchaseRequest) (uuid.UUID, *model.Address, error) {
	if req.AddressID != nil {
		address, err := s.resolveOwnAddress(ctx, user, *req.AddressID)
		if err != nil {
			return uuid.Nil, nil, err
		}
		return address.ID, nil, nil
	}

	if req.Address == nil {
		return uuid.Nil, nil, model.NewInvalidInput("either addressId or address is required")
	}

	address := &model.Address{
		ID:           uuid.New(),
		UserID:       user.ID,
		BuildingName: req.Address.BuildingName,
		Street:       req.Address.Street,
		City:         req.Address.City,
		State:        req.Address.State,
		Country:      req.Address.Country,
		Pincode:      req.Address.Pincode,
		CreatedAt:    time.Now(),
	}

	return address.ID, address, nil
}

// resolveOwnAddress fetches an address and verifies it belongs to the user.
// A foreign address is indistinguishable from a missing one.
func (s *orderService) resolveOwnAddress(ctx context.Context, user model.User, addressID uuid.UUID) (*model.Address, error) {
	address, err := s.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if address == nil || address.UserID != user.ID {
		return nil, model.NewNotFound("Address", "addressId", addressID)
	}
	return address, nil
}

// validatePromoCode validates an optional promo code.
func (s *orderService) validatePromoCode(ctx context.Context, promoCode *string) error {
	if promoCode == nil || *promoCode == "" {
		return nil
	}
	if err := s.validator.Validate(ctx, *promoCode); err != nil {
		s.logger.Warn().Str("promo_code", *promoCode).Err(err).Msg("invalid promo code")
		return err
	}
	return nil
}

// productName looks up a product's name for error messages.
func (s *orderService) productName(ctx context.Context, productID uuid.UUID) (string, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return "", err
	}
	if product == nil {
		return productID.String(), nil
	}
	return product.Name, nil
}

// buildOrderResponse assembles an order view with its items and the
// referenced products.
func (s *orderService) buildOrderResponse(ctx context.Context, order *model.Order, items []model.OrderItem) (*model.OrderResponse, error) {
	productIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	return &model.OrderResponse{
		Order:    *order,
		Items:    items,
		Products: products,
	}, nil
}

// validateOrderItems rejects empty item lists and non-positive quantities.
func validateOrderItems(items []model.OrderItemRequest) error {
	if len(items) == 0 {
		return model.ErrEmptyOrder
	}
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return model.NewInvalidInput("product ID is required")
		}
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
	}
	return nil
}
