package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"tavolo/internal/db"
	"tavolo/internal/entities"
)

type RestaurantRepository struct {
	DB *sql.DB
}

func NewRestaurantRepository(database *sql.DB) *RestaurantRepository {
	return &RestaurantRepository{DB: database}
}

// List returns browsable restaurant summaries, optionally narrowed by city
// and/or cuisine. Best-rated first.
func (r *RestaurantRepository) List(city, cuisine string) ([]entities.RestaurantSummary, error) {
	query := `
		SELECT id, slug, name, cuisine, city, rating_avg, rating_count
		FROM restaurants
		WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if city != "" {
		query += " AND LOWER(city) = LOWER($" + strconv.Itoa(idx) + ")"
		args = append(args, city)
		idx++
	}
	if cuisine != "" {
		query += " AND LOWER(cuisine) = LOWER($" + strconv.Itoa(idx) + ")"
		args = append(args, cuisine)
		idx++
	}
	query += " ORDER BY rating_avg DESC, rating_count DESC, name"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing restaurants: %w", err)
	}
	defer rows.Close()

	var out []entities.RestaurantSummary
	for rows.Next() {
		var s entities.RestaurantSummary
		err := rows.Scan(&s.ID, &s.Slug, &s.Name, &s.Cuisine, &s.City, &s.RatingAvg, &s.RatingCount)
		if err != nil {
			return nil, fmt.Errorf("error scanning restaurant row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const restaurantColumns = `id, slug, name, description, cuisine, city, address, phone,
	timezone, open_time, close_time, slot_minutes, dining_minutes,
	rating_avg, rating_count, COALESCE(owner_id, 0), created_at`

func scanRestaurant(row *sql.Row) (*db.Restaurant, error) {
	var rt db.Restaurant
	err := row.Scan(
		&rt.ID, &rt.Slug, &rt.Name, &rt.Description, &rt.Cuisine, &rt.City, &rt.Address, &rt.Phone,
		&rt.Timezone, &rt.OpenTime, &rt.CloseTime, &rt.SlotMinutes, &rt.DiningMinutes,
		&rt.RatingAvg, &rt.RatingCount, &rt.OwnerID, &rt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *RestaurantRepository) GetByID(id int) (*db.Restaurant, error) {
	rt, err := scanRestaurant(r.DB.QueryRow(
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("restaurant %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("error querying restaurant: %w", err)
	}
	return rt, nil
}

func (r *RestaurantRepository) GetBySlug(slug string) (*db.Restaurant, error) {
	rt, err := scanRestaurant(r.DB.QueryRow(
		`SELECT `+restaurantColumns+` FROM restaurants WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("restaurant '%s' not found: %w", slug, err)
		}
		return nil, fmt.Errorf("error querying restaurant: %w", err)
	}
	return rt, nil
}

// GetByIDForOwner fetches a restaurant only if it belongs to the given owner.
func (r *RestaurantRepository) GetByIDForOwner(id, ownerID int) (*db.Restaurant, error) {
	rt, err := scanRestaurant(r.DB.QueryRow(
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1 AND owner_id = $2`, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("restaurant %d not found for owner: %w", id, err)
		}
		return nil, fmt.Errorf("error querying restaurant: %w", err)
	}
	return rt, nil
}

func (r *RestaurantRepository) ListByOwner(ownerID int) ([]entities.RestaurantSummary, error) {
	rows, err := r.DB.Query(`
		SELECT id, slug, name, cuisine, city, rating_avg, rating_count
		FROM restaurants WHERE owner_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing owner restaurants: %w", err)
	}
	defer rows.Close()

	var out []entities.RestaurantSummary
	for rows.Next() {
		var s entities.RestaurantSummary
		err := rows.Scan(&s.ID, &s.Slug, &s.Name, &s.Cuisine, &s.City, &s.RatingAvg, &s.RatingCount)
		if err != nil {
			return nil, fmt.Errorf("error scanning restaurant row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *RestaurantRepository) Create(ownerID int, req *entities.RestaurantRequest) (int, error) {
	var id int
	err := r.DB.QueryRow(`
		INSERT INTO restaurants
		(slug, name, description, cuisine, city, address, phone, timezone,
		 open_time, close_time, slot_minutes, dining_minutes, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		req.Slug, req.Name, req.Description, req.Cuisine, req.City, req.Address, req.Phone, req.Timezone,
		req.OpenTime, req.CloseTime, req.SlotMinutes, req.DiningMinutes, ownerID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error creating restaurant: %w", err)
	}
	return id, nil
}

func (r *RestaurantRepository) Update(id int, req *entities.RestaurantRequest) error {
	result, err := r.DB.Exec(`
		UPDATE restaurants
		SET name = $1, description = $2, cuisine = $3, city = $4, address = $5, phone = $6,
		    timezone = $7, open_time = $8, close_time = $9, slot_minutes = $10, dining_minutes = $11
		WHERE id = $12`,
		req.Name, req.Description, req.Cuisine, req.City, req.Address, req.Phone,
		req.Timezone, req.OpenTime, req.CloseTime, req.SlotMinutes, req.DiningMinutes, id)
	if err != nil {
		return fmt.Errorf("error updating restaurant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("restaurant %d not found", id)
	}
	return nil
}

func (r *RestaurantRepository) ListTables(restaurantID int) ([]db.Table, error) {
	rows, err := r.DB.Query(`
		SELECT id, restaurant_id, label, seats
		FROM tables WHERE restaurant_id = $1 ORDER BY seats, label`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("error listing tables: %w", err)
	}
	defer rows.Close()

	var tables []db.Table
	for rows.Next() {
		var t db.Table
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.Label, &t.Seats); err != nil {
			return nil, fmt.Errorf("error scanning table row: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// ReplaceTables swaps the whole floor plan in one transaction. Reservations
// pointing at removed tables keep their history with table_id set to NULL.
func (r *RestaurantRepository) ReplaceTables(restaurantID int, tables []entities.TableRequest) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting table update: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tables WHERE restaurant_id = $1`, restaurantID); err != nil {
		return fmt.Errorf("error clearing tables: %w", err)
	}
	for _, t := range tables {
		_, err := tx.Exec(
			`INSERT INTO tables (restaurant_id, label, seats) VALUES ($1, $2, $3)`,
			restaurantID, t.Label, t.Seats)
		if err != nil {
			return fmt.Errorf("error inserting table '%s': %w", t.Label, err)
		}
	}
	return tx.Commit()
}

func (r *RestaurantRepository) ListMenu(restaurantID int) ([]db.MenuItem, error) {
	rows, err := r.DB.Query(`
		SELECT id, restaurant_id, name, description, category, price_cents, available
		FROM menu_items WHERE restaurant_id = $1 ORDER BY category, name`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("error listing menu: %w", err)
	}
	defer rows.Close()

	var items []db.MenuItem
	for rows.Next() {
		var m db.MenuItem
		err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Category, &m.PriceCents, &m.Available)
		if err != nil {
			return nil, fmt.Errorf("error scanning menu item: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *RestaurantRepository) AddMenuItem(restaurantID int, req *entities.MenuItemRequest) (int, error) {
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	var id int
	err := r.DB.QueryRow(`
		INSERT INTO menu_items (restaurant_id, name, description, category, price_cents, available)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		restaurantID, req.Name, req.Description, req.Category, req.PriceCents, available,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error adding menu item: %w", err)
	}
	return id, nil
}
