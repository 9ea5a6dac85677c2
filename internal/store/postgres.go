package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pricing-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresCatalog is a Catalog backed by Postgres, for deployments
// where the catalog must outlive the process.
type PostgresCatalog struct {
	db *sqlx.DB
}

var _ Catalog = (*PostgresCatalog)(nil)

// NewPostgresCatalog connects to the database and verifies the
// connection.
func NewPostgresCatalog(databaseURL string) (*PostgresCatalog, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresCatalog{db: db}, nil
}

// Close closes the database connection.
func (c *PostgresCatalog) Close() error {
	return c.db.Close()
}

// Get retrieves a product by ID.
func (c *PostgresCatalog) Get(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := c.db.GetContext(ctx, &p, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetBySKU retrieves a product by SKU.
func (c *PostgresCatalog) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var p models.Product
	err := c.db.GetContext(ctx, &p, "SELECT * FROM products WHERE sku = $1", sku)
	if err == sql.ErrNoRows {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List retrieves all products ordered by ID.
func (c *PostgresCatalog) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := c.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// Insert stores a new product and fills in the assigned ID.
func (c *PostgresCatalog) Insert(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (
			name, sku, category, stock, min_stock, is_active,
			price, purchase_price, previous_price,
			discount_type, discount_value, discount_start_date, discount_end_date, discount_priority,
			profit_margin, min_selling_price
		) VALUES (
			:name, :sku, :category, :stock, :min_stock, :is_active,
			:price, :purchase_price, :previous_price,
			:discount_type, :discount_value, :discount_start_date, :discount_end_date, :discount_priority,
			:profit_margin, :min_selling_price
		) RETURNING id, created_at, updated_at`

	rows, err := c.db.NamedQueryContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Update replaces an existing product record.
func (c *PostgresCatalog) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products SET
			name = :name, sku = :sku, category = :category,
			stock = :stock, min_stock = :min_stock, is_active = :is_active,
			price = :price, purchase_price = :purchase_price, previous_price = :previous_price,
			discount_type = :discount_type, discount_value = :discount_value,
			discount_start_date = :discount_start_date, discount_end_date = :discount_end_date,
			discount_priority = :discount_priority,
			profit_margin = :profit_margin, min_selling_price = :min_selling_price,
			updated_at = NOW()
		WHERE id = :id`

	res, err := c.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrProductNotFound
	}
	return nil
}

// Delete removes a product.
func (c *PostgresCatalog) Delete(ctx context.Context, id int64) error {
	res, err := c.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrProductNotFound
	}
	return nil
}
