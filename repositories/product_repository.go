package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resto-supply/models"
	"resto-supply/services"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

var _ services.ProductCatalog = (*ProductRepository)(nil)

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Lookup reads a product's current price and supplier contact straight from
// the database. Never cached: new order lines must snapshot the live price.
func (r *ProductRepository) Lookup(ctx context.Context, productID int) (*models.CatalogEntry, error) {
	var entry models.CatalogEntry
	err := r.pool.QueryRow(ctx, `
		SELECT p.price, s.id, s.email
		FROM products p
		JOIN suppliers s ON s.id = p.supplier_id
		WHERE p.id = $1`,
		productID).Scan(&entry.UnitPrice, &entry.SupplierID, &entry.SupplierEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "product", ID: productID}
		}
		return nil, fmt.Errorf("failed to look up product %d: %w", productID, err)
	}
	return &entry, nil
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, price, image_url, supplier_id, created_at, updated_at
		FROM products
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
			&p.SupplierID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, price, image_url, supplier_id, created_at, updated_at
		FROM products WHERE id = $1`,
		id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
		&p.SupplierID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "product", ID: id}
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, image_url, supplier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.Price, p.ImageURL, p.SupplierID, now, now,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, image_url = $4, supplier_id = $5, updated_at = $6
		WHERE id = $7`,
		p.Name, p.Description, p.Price, p.ImageURL, p.SupplierID, time.Now(), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ID, err)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &models.NotFoundError{Resource: "product", ID: id}
	}
	return nil
}

func (r *ProductRepository) Visibility(ctx context.Context, productID int) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT restaurant_id FROM product_visibility WHERE product_id = $1 ORDER BY restaurant_id`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visibility for product %d: %w", productID, err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ProductRepository) AddVisibility(ctx context.Context, productID, restaurantID int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO product_visibility (restaurant_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		restaurantID, productID)
	if err != nil {
		return fmt.Errorf("failed to add visibility: %w", err)
	}
	return nil
}

func (r *ProductRepository) RemoveVisibility(ctx context.Context, productID, restaurantID int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM product_visibility WHERE restaurant_id = $1 AND product_id = $2`,
		restaurantID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove visibility: %w", err)
	}
	return nil
}
