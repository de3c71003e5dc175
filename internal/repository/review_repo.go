package repository

import (
	"database/sql"
	"fmt"

	"tavolo/internal/entities"
)

type ReviewRepository struct {
	DB *sql.DB
}

func NewReviewRepository(database *sql.DB) *ReviewRepository {
	return &ReviewRepository{DB: database}
}

// ListByRestaurant returns one page of reviews plus the total count, newest
// first.
func (r *ReviewRepository) ListByRestaurant(restaurantID, limit, offset int) ([]entities.ReviewResponse, int, error) {
	var total int
	err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM reviews WHERE restaurant_id = $1`, restaurantID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting reviews: %w", err)
	}

	rows, err := r.DB.Query(`
		SELECT id, author_name, rating, comment, created_at
		FROM reviews
		WHERE restaurant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		restaurantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing reviews: %w", err)
	}
	defer rows.Close()

	var reviews []entities.ReviewResponse
	for rows.Next() {
		var rv entities.ReviewResponse
		if err := rows.Scan(&rv.ID, &rv.AuthorName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error after iterating reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *ReviewRepository) Create(restaurantID int, req *entities.ReviewRequest) (int, error) {
	var id int
	err := r.DB.QueryRow(`
		INSERT INTO reviews (restaurant_id, author_name, author_email, rating, comment)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		restaurantID, req.AuthorName, req.AuthorEmail, req.Rating, req.Comment,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error creating review: %w", err)
	}
	return id, nil
}

// RefreshRestaurantRating updates the cached rating columns for one restaurant
// from its reviews.
func (r *ReviewRepository) RefreshRestaurantRating(restaurantID int) error {
	_, err := r.DB.Exec(`
		UPDATE restaurants
		SET rating_avg = COALESCE((SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews WHERE restaurant_id = $1), 0),
		    rating_count = (SELECT COUNT(*) FROM reviews WHERE restaurant_id = $1)
		WHERE id = $1`, restaurantID)
	if err != nil {
		return fmt.Errorf("error refreshing restaurant rating: %w", err)
	}
	return nil
}

// RatingSummary computes the live average and count for one restaurant.
func (r *ReviewRepository) RatingSummary(restaurantID int) (*entities.RatingSummary, error) {
	var s entities.RatingSummary
	err := r.DB.QueryRow(`
		SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0), COUNT(*)
		FROM reviews WHERE restaurant_id = $1`,
		restaurantID).Scan(&s.Average, &s.Count)
	if err != nil {
		return nil, fmt.Errorf("error computing rating summary: %w", err)
	}
	return &s, nil
}

// HasDinedBefore reports whether the email has a completed reservation at the
// restaurant. Reviews are restricted to past diners.
func (r *ReviewRepository) HasDinedBefore(restaurantID int, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE restaurant_id = $1 AND email = $2 AND status = 'completed'
		)`,
		restaurantID, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking dining history: %w", err)
	}
	return exists, nil
}
