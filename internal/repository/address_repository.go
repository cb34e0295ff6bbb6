package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// addressRepository implements the AddressRepository interface using PostgreSQL.
type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

// Create inserts a new address.
func (r *addressRepository) Create(ctx context.Context, address *model.Address) error {
	query := `
		INSERT INTO addresses (id, user_id, building_name, street, city, state, country, pincode, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		address.ID, address.UserID, address.BuildingName, address.Street,
		address.City, address.State, address.Country, address.Pincode, address.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", address.ID.String()).Msg("failed to create address")
		return fmt.Errorf("failed to create address: %w", err)
	}

	return nil
}

// CreateTx inserts a new address within an existing transaction.
func (r *addressRepository) CreateTx(ctx context.Context, tx pgx.Tx, address *model.Address) error {
	query := `
		INSERT INTO addresses (id, user_id, building_name, street, city, state, country, pincode, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		address.ID, address.UserID, address.BuildingName, address.Street,
		address.City, address.State, address.Country, address.Pincode, address.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", address.ID.String()).Msg("failed to create address")
		return fmt.Errorf("failed to create address: %w", err)
	}

	return nil
}

// GetByID retrieves an address by its ID.
func (r *addressRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Address, error) {
	query := `
		SELECT id, user_id, building_name, street, city, state, country, pincode, created_at
		FROM addresses
		WHERE id = $1
	`

	var a model.Address
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.BuildingName, &a.Street, &a.City, &a.State,
		&a.Country, &a.Pincode, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("address_id", id.String()).Msg("address not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}

	return &a, nil
}

// ListByUser retrieves a user's addresses.
func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	query := `
		SELECT id, user_id, building_name, street, city, state, country, pincode, created_at
		FROM addresses
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query addresses")
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	var addresses []model.Address
	for rows.Next() {
		var a model.Address
		err := rows.Scan(&a.ID, &a.UserID, &a.BuildingName, &a.Street, &a.City,
			&a.State, &a.Country, &a.Pincode, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// Update persists changes to an existing address.
func (r *addressRepository) Update(ctx context.Context, address *model.Address) error {
	query := `
		UPDATE addresses
		SET building_name = $2, street = $3, city = $4, state = $5, country = $6, pincode = $7
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query,
		address.ID, address.BuildingName, address.Street, address.City,
		address.State, address.Country, address.Pincode)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", address.ID.String()).Msg("failed to update address")
		return fmt.Errorf("failed to update address: %w", err)
	}

	return nil
}

// Delete removes an address.
func (r *addressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to delete address")
		return fmt.Errorf("failed to delete address: %w", err)
	}

	return nil
}
