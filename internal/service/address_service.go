package service

import (
	"context"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// addressService implements AddressService. All lookups are scoped to the
// owning user; a foreign address behaves as missing.
type addressService struct {
	addressRepo repository.AddressRepository
	logger      zerolog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(addressRepo repository.AddressRepository, logger zerolog.Logger) AddressService {
	return &addressService{
		addressRepo: addressRepo,
		logger:      logger.With().Str("service", "address").Logger(),
	}
}

// Create adds an address to the user's address book.
func (s *addressService) Create(ctx context.Context, user model.User, req *model.AddressRequest) (*model.Address, error) {
	if req == nil || req.Street == "" || req.City == "" {
		return nil, model.NewInvalidInput("street and city are required")
	}

	address := &model.Address{
		ID:           uuid.New(),
		UserID:       user.ID,
		BuildingName: req.BuildingName,
		Street:       req.Street,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		Pincode:      req.Pincode,
		CreatedAt:    time.Now(),
	}
	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, err
	}

	return address, nil
}

// Get retrieves one of the user's addresses.
func (s *addressService) Get(ctx context.Context, user model.User, id uuid.UUID) (*model.Address, error) {
	return s.getOwned(ctx, user, id)
}

// List retrieves the user's addresses.
func (s *addressService) List(ctx context.Context, user model.User) ([]model.Address, error) {
	return s.addressRepo.ListByUser(ctx, user.ID)
}

// Update changes one of the user's addresses.
func (s *addressService) Update(ctx context.Context, user model.User, id uuid.UUID, req *model.AddressRequest) (*model.Address, error) {
	if req == nil {
		return nil, model.NewInvalidInput("address request is required")
	}

	address, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if req.BuildingName != "" {
		address.BuildingName = req.BuildingName
	}
	if req.Street != "" {
		address.Street = req.Street
	}
	if req.City != "" {
		address.City = req.City
	}
	if req.State != "" {
		address.State = req.State
	}
	if req.Country != "" {
		address.Country = req.Country
	}
	if req.Pincode != "" {
		address.Pincode = req.Pincode
	}

	if err := s.addressRepo.Update(ctx, address); err != nil {
		return nil, err
	}

	return address, nil
}

// Delete removes one of the user's addresses.
func (s *addressService) Delete(ctx context.Context, user model.User, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, user, id); err != nil {
		return err
	}
	return s.addressRepo.Delete(ctx, id)
}

func (s *addressService) getOwned(ctx context.Context, user model.User, id uuid.UUID) (*model.Address, error) {
	address, err := s.addressRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if address == nil || address.UserID != user.ID {
		return nil, model.NewNotFound("Address", "addressId", id)
	}
	return address, nil
}
