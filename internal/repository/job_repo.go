package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// ReminderTarget carries what the reminder email needs for one reservation.
type ReminderTarget struct {
	ReservationID   int
	Code            string
	RestaurantName  string
	Timezone        string
	GuestName       string
	Email           string
	Phone           string
	ReservationTime time.Time
	PartySize       int
}

// GetReservationsNeedingReminder returns active reservations starting within
// the next 24 hours that have not been reminded yet.
func (r *JobRepository) GetReservationsNeedingReminder() ([]ReminderTarget, error) {
	query := `
		SELECT r.id, r.code, rt.name, rt.timezone,
		       r.first_name || ' ' || r.last_name, r.email, r.phone,
		       r.reservation_time, r.party_size
		FROM reservations r
		JOIN restaurants rt ON r.restaurant_id = rt.id
		WHERE r.status IN ('pending', 'confirmed')
		  AND r.reminder_sent_at IS NULL
		  AND r.reservation_time > NOW()
		  AND r.reservation_time < NOW() + INTERVAL '24 hours'`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying reservations needing reminder: %w", err)
	}
	defer rows.Close()

	var targets []ReminderTarget
	for rows.Next() {
		var t ReminderTarget
		err := rows.Scan(&t.ReservationID, &t.Code, &t.RestaurantName, &t.Timezone,
			&t.GuestName, &t.Email, &t.Phone, &t.ReservationTime, &t.PartySize)
		if err != nil {
			return nil, fmt.Errorf("error scanning reminder target: %w", err)
		}
		targets = append(targets, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return targets, nil
}

// MarkRemindersSent stamps reminder_sent_at for a batch of reservations.
func (r *JobRepository) MarkRemindersSent(ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE reservations SET reminder_sent_at = NOW() WHERE id = ANY($1)`
	result, err := r.DB.Exec(query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error marking reminders sent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Marked %d reservations as reminded", rowsAffected)
	}
	return nil
}

// RefreshRatings recomputes each restaurant's cached review average and count.
func (r *JobRepository) RefreshRatings() error {
	query := `
		UPDATE restaurants rt
		SET rating_avg = COALESCE(agg.avg_rating, 0),
		    rating_count = COALESCE(agg.review_count, 0)
		FROM (
			SELECT restaurant_id, ROUND(AVG(rating)::numeric, 2) AS avg_rating, COUNT(*) AS review_count
			FROM reviews
			GROUP BY restaurant_id
		) agg
		WHERE rt.id = agg.restaurant_id`
	result, err := r.DB.Exec(query)
	if err != nil {
		return fmt.Errorf("error refreshing ratings: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Refreshed ratings for %d restaurants", rowsAffected)
	}
	return nil
}
