package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"tavolo/internal/db"
	"tavolo/internal/entities"
	"tavolo/internal/utils"

	"github.com/lib/pq"
)

// ErrNoTableFree is returned when no table that fits the party is free for the
// requested time. Callers surface it as a slot conflict.
var ErrNoTableFree = errors.New("no table available for the requested time")

// BookedSlot is one occupied (table, start time) pair used by availability math.
type BookedSlot struct {
	TableID int
	Time    time.Time
}

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

// CreateWithTable books the smallest free table that fits the party and inserts
// the reservation in one transaction. Bookings for a restaurant serialize on the
// restaurant row so the free-table check and the insert are atomic; without that
// lock two concurrent bookers could both see the last table as free.
func (r *ReservationRepository) CreateWithTable(res *db.Reservation, diningMinutes int) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting booking transaction: %w", err)
	}
	defer tx.Rollback()

	var restaurantID int
	err = tx.QueryRow(`SELECT id FROM restaurants WHERE id = $1 FOR UPDATE`, res.RestaurantID).Scan(&restaurantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("restaurant %d not found", res.RestaurantID)
		}
		return fmt.Errorf("error locking restaurant row: %w", err)
	}

	var tableID int
	err = tx.QueryRow(`
		SELECT t.id
		FROM tables t
		WHERE t.restaurant_id = $1
		  AND t.seats >= $2
		  AND NOT EXISTS (
			SELECT 1 FROM reservations x
			WHERE x.table_id = t.id
			  AND x.status IN ('pending', 'confirmed')
			  AND x.reservation_time > $3::timestamptz - make_interval(mins => $4)
			  AND x.reservation_time < $3::timestamptz + make_interval(mins => $4)
		  )
		ORDER BY t.seats, t.id
		LIMIT 1`,
		res.RestaurantID, res.PartySize, res.ReservationTime, diningMinutes,
	).Scan(&tableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoTableFree
		}
		return fmt.Errorf("error finding a free table: %w", err)
	}
	res.TableID = &tableID

	err = tx.QueryRow(`
		INSERT INTO reservations
		(code, restaurant_id, table_id, reservation_time, party_size, first_name, last_name, email, phone,
		 occasion_type, special_requests, dietary_restrictions, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`,
		res.Code,
		res.RestaurantID,
		tableID,
		res.ReservationTime,
		res.PartySize,
		res.FirstName,
		res.LastName,
		res.Email,
		res.Phone,
		res.OccasionType,
		res.SpecialRequests,
		pq.Array(res.DietaryRestrictions),
		res.Status,
		res.CreatedAt,
		res.UpdatedAt,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting reservation: %w", err)
	}

	return tx.Commit()
}

// GetDayBookings returns the occupied (table, time) pairs for a restaurant in
// [from, to). Cancelled and completed reservations do not block tables.
func (r *ReservationRepository) GetDayBookings(restaurantID int, from, to time.Time) ([]BookedSlot, error) {
	rows, err := r.DB.Query(`
		SELECT table_id, reservation_time
		FROM reservations
		WHERE restaurant_id = $1
		  AND table_id IS NOT NULL
		  AND status IN ('pending', 'confirmed')
		  AND reservation_time >= $2
		  AND reservation_time < $3
		ORDER BY reservation_time`,
		restaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying day bookings: %w", err)
	}
	defer rows.Close()

	var booked []BookedSlot
	for rows.Next() {
		var b BookedSlot
		if err := rows.Scan(&b.TableID, &b.Time); err != nil {
			return nil, fmt.Errorf("error scanning booked slot: %w", err)
		}
		booked = append(booked, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booked slots: %w", err)
	}
	return booked, nil
}

func (r *ReservationRepository) GetByCode(code, email string) (*entities.ReservationResponse, error) {
	var res entities.ReservationResponse
	var dietary pq.StringArray
	var tableLabel sql.NullString

	query := `
		SELECT r.id, r.code, r.restaurant_id, rt.name, t.label,
		       r.reservation_time, r.party_size,
		       r.first_name, r.last_name, r.email, r.phone,
		       r.occasion_type, r.special_requests, r.dietary_restrictions,
		       r.status, r.created_at, r.updated_at
		FROM reservations r
		JOIN restaurants rt ON r.restaurant_id = rt.id
		LEFT JOIN tables t ON r.table_id = t.id
		WHERE r.code = $1 AND r.email = $2`

	err := r.DB.QueryRow(query, code, email).Scan(
		&res.ID, &res.Code, &res.RestaurantID, &res.RestaurantName, &tableLabel,
		&res.ReservationTime, &res.PartySize,
		&res.FirstName, &res.LastName, &res.Email, &res.Phone,
		&res.OccasionType, &res.SpecialRequests, &dietary,
		&res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reservation with code '%s' not found: %w", code, err)
		}
		return nil, fmt.Errorf("error querying reservation: %w", err)
	}
	res.Dietary = dietary
	res.TableLabel = tableLabel.String
	return &res, nil
}

func (r *ReservationRepository) GetByCodeOnly(code string) (*db.Reservation, error) {
	var res db.Reservation
	var dietary pq.StringArray
	query := `
		SELECT id, code, restaurant_id, table_id, reservation_time, party_size,
		       first_name, last_name, email, phone, occasion_type, special_requests,
		       dietary_restrictions, status, reminder_sent_at, created_at, updated_at
		FROM reservations WHERE code = $1`
	err := r.DB.QueryRow(query, code).Scan(
		&res.ID, &res.Code, &res.RestaurantID, &res.TableID, &res.ReservationTime, &res.PartySize,
		&res.FirstName, &res.LastName, &res.Email, &res.Phone, &res.OccasionType, &res.SpecialRequests,
		&dietary, &res.Status, &res.ReminderSentAt, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reservation with code '%s' not found: %w", code, err)
		}
		return nil, fmt.Errorf("error querying reservation: %w", err)
	}
	res.DietaryRestrictions = dietary
	return &res, nil
}

func (r *ReservationRepository) GetByID(id int) (*db.Reservation, error) {
	var res db.Reservation
	var dietary pq.StringArray
	query := `
		SELECT id, code, restaurant_id, table_id, reservation_time, party_size,
		       first_name, last_name, email, phone, occasion_type, special_requests,
		       dietary_restrictions, status, reminder_sent_at, created_at, updated_at
		FROM reservations WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&res.ID, &res.Code, &res.RestaurantID, &res.TableID, &res.ReservationTime, &res.PartySize,
		&res.FirstName, &res.LastName, &res.Email, &res.Phone, &res.OccasionType, &res.SpecialRequests,
		&dietary, &res.Status, &res.ReminderSentAt, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reservation %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("error querying reservation: %w", err)
	}
	res.DietaryRestrictions = dietary
	return &res, nil
}

// ListByEmail returns a diner's reservations narrowed by filter
// (all | today | upcoming | pending), newest reservation time first.
func (r *ReservationRepository) ListByEmail(email, filter string) ([]entities.ReservationResponse, error) {
	query := `
		SELECT r.id, r.code, r.restaurant_id, rt.name, COALESCE(t.label, ''),
		       r.reservation_time, r.party_size,
		       r.first_name, r.last_name, r.email, r.phone,
		       r.occasion_type, r.special_requests, r.dietary_restrictions,
		       r.status, r.created_at, r.updated_at
		FROM reservations r
		JOIN restaurants rt ON r.restaurant_id = rt.id
		LEFT JOIN tables t ON r.table_id = t.id
		WHERE r.email = $1`

	switch filter {
	case utils.FilterToday:
		query += ` AND r.reservation_time::date = CURRENT_DATE`
	case utils.FilterUpcoming:
		query += ` AND r.reservation_time > NOW() AND r.status IN ('pending', 'confirmed')`
	case utils.FilterPending:
		query += ` AND r.status = 'pending'`
	}
	query += ` ORDER BY r.reservation_time DESC`

	rows, err := r.DB.Query(query, email)
	if err != nil {
		return nil, fmt.Errorf("error listing reservations: %w", err)
	}
	defer rows.Close()

	return scanReservationRows(rows)
}

// ListByRestaurant is the owner view, optionally narrowed by civil date and status.
func (r *ReservationRepository) ListByRestaurant(restaurantID int, date, status string) ([]entities.ReservationResponse, error) {
	query := `
		SELECT r.id, r.code, r.restaurant_id, rt.name, COALESCE(t.label, ''),
		       r.reservation_time, r.party_size,
		       r.first_name, r.last_name, r.email, r.phone,
		       r.occasion_type, r.special_requests, r.dietary_restrictions,
		       r.status, r.created_at, r.updated_at
		FROM reservations r
		JOIN restaurants rt ON r.restaurant_id = rt.id
		LEFT JOIN tables t ON r.table_id = t.id
		WHERE r.restaurant_id = $1`
	args := []interface{}{restaurantID}
	idx := 2

	if date != "" {
		query += fmt.Sprintf(" AND r.reservation_time::date = $%d::date", idx)
		args = append(args, date)
		idx++
	}
	if status != "" {
		query += fmt.Sprintf(" AND r.status = $%d", idx)
		args = append(args, status)
		idx++
	}
	query += " ORDER BY r.reservation_time"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing restaurant reservations: %w", err)
	}
	defer rows.Close()

	return scanReservationRows(rows)
}

func scanReservationRows(rows *sql.Rows) ([]entities.ReservationResponse, error) {
	var out []entities.ReservationResponse
	for rows.Next() {
		var res entities.ReservationResponse
		var dietary pq.StringArray
		err := rows.Scan(
			&res.ID, &res.Code, &res.RestaurantID, &res.RestaurantName, &res.TableLabel,
			&res.ReservationTime, &res.PartySize,
			&res.FirstName, &res.LastName, &res.Email, &res.Phone,
			&res.OccasionType, &res.SpecialRequests, &dietary,
			&res.Status, &res.CreatedAt, &res.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning reservation row: %w", err)
		}
		res.Dietary = dietary
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating reservations: %w", err)
	}
	return out, nil
}

func (r *ReservationRepository) UpdateStatus(id int, status string) error {
	result, err := r.DB.Exec(
		`UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		log.Printf("Error updating reservation %d status: %v", id, err)
		return err
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("reservation %d not found", id)
	}
	return nil
}

// HasActiveDuplicate reports whether the email already holds an active
// reservation at the restaurant for the exact same time. Catches double
// submissions that slip past the wizard.
func (r *ReservationRepository) HasActiveDuplicate(restaurantID int, email string, at time.Time) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE restaurant_id = $1
			  AND LOWER(email) = LOWER($2)
			  AND reservation_time = $3
			  AND status IN ('pending', 'confirmed')
		)`,
		restaurantID, email, at).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking duplicate reservation: %w", err)
	}
	return exists, nil
}

// HasTableConflict reports whether another active reservation occupies tableID
// around the given time. Used when an owner re-confirms a cancelled reservation.
func (r *ReservationRepository) HasTableConflict(tableID int, at time.Time, diningMinutes, excludeID int) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE table_id = $1
			  AND id <> $2
			  AND status IN ('pending', 'confirmed')
			  AND reservation_time > $3::timestamptz - make_interval(mins => $4)
			  AND reservation_time < $3::timestamptz + make_interval(mins => $4)
		)`,
		tableID, excludeID, at, diningMinutes).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking table conflict: %w", err)
	}
	return exists, nil
}
