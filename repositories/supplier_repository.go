package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resto-supply/models"
)

type SupplierRepository struct {
	pool *pgxpool.Pool
}

func NewSupplierRepository(pool *pgxpool.Pool) *SupplierRepository {
	return &SupplierRepository{pool: pool}
}

func (r *SupplierRepository) Create(ctx context.Context, s *models.Supplier) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO suppliers (name, email) VALUES ($1, $2) RETURNING id`,
		s.Name, s.Email).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to create supplier: %w", err)
	}
	return nil
}

func (r *SupplierRepository) GetAll(ctx context.Context) ([]models.Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := []models.Supplier{}
	for rows.Next() {
		var s models.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Email); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *SupplierRepository) GetByID(ctx context.Context, id int) (*models.Supplier, error) {
	var s models.Supplier
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email FROM suppliers WHERE id = $1`, id).Scan(&s.ID, &s.Name, &s.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "supplier", ID: id}
		}
		return nil, fmt.Errorf("failed to get supplier %d: %w", id, err)
	}
	return &s, nil
}
