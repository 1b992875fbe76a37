package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resto-supply/models"
	"resto-supply/services"
)

type RestaurantRepository struct {
	pool *pgxpool.Pool
}

var _ services.MembershipStore = (*RestaurantRepository)(nil)

func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

func (r *RestaurantRepository) Create(ctx context.Context, rest *models.Restaurant) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO restaurants (name, active) VALUES ($1, $2) RETURNING id`,
		rest.Name, rest.Active).Scan(&rest.ID)
	if err != nil {
		return fmt.Errorf("failed to create restaurant: %w", err)
	}
	return nil
}

func (r *RestaurantRepository) GetAll(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, active FROM restaurants ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := []models.Restaurant{}
	for rows.Next() {
		var rest models.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.Active); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, rest)
	}
	return restaurants, rows.Err()
}

func (r *RestaurantRepository) GetByID(ctx context.Context, id int) (*models.Restaurant, error) {
	var rest models.Restaurant
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, active FROM restaurants WHERE id = $1`, id).Scan(&rest.ID, &rest.Name, &rest.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "restaurant", ID: id}
		}
		return nil, fmt.Errorf("failed to get restaurant %d: %w", id, err)
	}
	return &rest, nil
}

// Delete removes a restaurant, detaching its members and deactivating any
// user left with no restaurant. Returns how many users were deactivated.
func (r *RestaurantRepository) Delete(ctx context.Context, id int) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE users SET is_active = FALSE
		WHERE id IN (SELECT user_id FROM user_restaurants WHERE restaurant_id = $1)`,
		id)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate members: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM user_restaurants WHERE restaurant_id = $1`, id); err != nil {
		return 0, fmt.Errorf("failed to detach members: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM product_visibility WHERE restaurant_id = $1`, id); err != nil {
		return 0, fmt.Errorf("failed to clear product visibility: %w", err)
	}

	res, err := tx.Exec(ctx, `DELETE FROM restaurants WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete restaurant %d: %w", id, err)
	}
	if res.RowsAffected() == 0 {
		return 0, &models.NotFoundError{Resource: "restaurant", ID: id}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *RestaurantRepository) IsMember(ctx context.Context, userID, restaurantID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_restaurants WHERE user_id = $1 AND restaurant_id = $2
		)`,
		userID, restaurantID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

func (r *RestaurantRepository) RestaurantsOf(ctx context.Context, userID int) ([]models.Restaurant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.name, r.active
		FROM restaurants r
		JOIN user_restaurants ur ON ur.restaurant_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := []models.Restaurant{}
	for rows.Next() {
		var rest models.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.Active); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, rest)
	}
	return restaurants, rows.Err()
}

func (r *RestaurantRepository) AddMember(ctx context.Context, userID, restaurantID int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_restaurants (user_id, restaurant_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		userID, restaurantID)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}
