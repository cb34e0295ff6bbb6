package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			category_id UUID NOT NULL REFERENCES categories(id),
			user_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			price DECIMAL(10, 2) NOT NULL,
			discount DECIMAL(5, 2) NOT NULL DEFAULT 0,
			special_price DECIMAL(10, 2) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS carts (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL,
			total_price DECIMAL(10, 2) NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS cart_items (
			id UUID PRIMARY KEY,
			cart_id UUID NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
			product_id UUID NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			product_price DECIMAL(10, 2) NOT NULL,
			discount DECIMAL(5, 2) NOT NULL DEFAULT 0,
			UNIQUE (cart_id, product_id)
		);

		CREATE TABLE IF NOT EXISTS addresses (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			building_name VARCHAR(255) NOT NULL DEFAULT '',
			street VARCHAR(255) NOT NULL,
			city VARCHAR(255) NOT NULL,
			state VARCHAR(255) NOT NULL DEFAULT '',
			country VARCHAR(255) NOT NULL DEFAULT '',
			pincode VARCHAR(50) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			email VARCHAR(255) NOT NULL,
			address_id UUID NOT NULL REFERENCES addresses(id),
			promo_code VARCHAR(50),
			status VARCHAR(50) NOT NULL,
			total_price DECIMAL(10, 2) NOT NULL,
			order_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id UUID NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			price DECIMAL(10, 2) NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id);
		CREATE INDEX IF NOT EXISTS idx_cart_items_cart_id ON cart_items(cart_id);
		CREATE INDEX IF NOT EXISTS idx_cart_items_product_id ON cart_items(product_id);
		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// Catalog holds the IDs of the seeded test catalogue.
type Catalog struct {
	SellerID   uuid.UUID
	CategoryID uuid.UUID
	// Laptop: 10 in stock, 1000.00 with 10% discount (special price 900.00).
	LaptopID uuid.UUID
	// Mouse: 50 in stock, 25.00 with no discount.
	MouseID uuid.UUID
	// Keyboard: 3 in stock, 80.00 with 25% discount (special price 60.00).
	KeyboardID uuid.UUID
}

// SeedCatalog inserts a category and a small set of products.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) *Catalog {
	t.Helper()

	ctx := context.Background()

	cat := &Catalog{
		SellerID:   uuid.New(),
		CategoryID: uuid.New(),
		LaptopID:   uuid.New(),
		MouseID:    uuid.New(),
		KeyboardID: uuid.New(),
	}

	_, err := pool.Exec(ctx,
		"INSERT INTO categories (id, name) VALUES ($1, $2)",
		cat.CategoryID, "Electronics",
	)
	if err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	products := []struct {
		id       uuid.UUID
		name     string
		quantity int
		price    float64
		discount float64
	}{
		{cat.LaptopID, "Laptop", 10, 1000.00, 10},
		{cat.MouseID, "Mouse", 50, 25.00, 0},
		{cat.KeyboardID, "Keyboard", 3, 80.00, 25},
	}

	for _, p := range products {
		special := p.price - p.price*p.discount/100
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, category_id, user_id, name, quantity, price, discount, special_price)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.id, cat.CategoryID, cat.SellerID, p.name, p.quantity, p.price, p.discount, special,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.name, err)
		}
	}

	return cat
}

// SeedAddress inserts an address for the given user and returns its ID.
func SeedAddress(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO addresses (id, user_id, street, city, state, country, pincode)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, userID, "12 High Street", "Sydney", "NSW", "Australia", "2000",
	)
	if err != nil {
		t.Fatalf("failed to seed address: %v", err)
	}

	return id
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "cart_items", "carts", "addresses", "products", "categories"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
