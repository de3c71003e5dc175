package db

import "database/sql"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS owners (
	id SERIAL PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS restaurants (
	id SERIAL PRIMARY KEY,
	slug TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	cuisine TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	timezone TEXT NOT NULL DEFAULT 'UTC',
	open_time TEXT NOT NULL DEFAULT '11:00',
	close_time TEXT NOT NULL DEFAULT '22:00',
	slot_minutes INT NOT NULL DEFAULT 30,
	dining_minutes INT NOT NULL DEFAULT 90,
	rating_avg DOUBLE PRECISION NOT NULL DEFAULT 0,
	rating_count INT NOT NULL DEFAULT 0,
	owner_id INT REFERENCES owners(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tables (
	id SERIAL PRIMARY KEY,
	restaurant_id INT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	label TEXT NOT NULL,
	seats INT NOT NULL,
	UNIQUE (restaurant_id, label)
);

CREATE TABLE IF NOT EXISTS reservations (
	id SERIAL PRIMARY KEY,
	code TEXT UNIQUE NOT NULL,
	restaurant_id INT NOT NULL REFERENCES restaurants(id),
	table_id INT REFERENCES tables(id) ON DELETE SET NULL,
	reservation_time TIMESTAMPTZ NOT NULL,
	party_size INT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL,
	occasion_type TEXT NOT NULL DEFAULT '',
	special_requests TEXT NOT NULL DEFAULT '',
	dietary_restrictions TEXT[] NOT NULL DEFAULT '{}',
	status TEXT NOT NULL DEFAULT 'pending',
	reminder_sent_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reservations_table_time ON reservations(table_id, reservation_time);
CREATE INDEX IF NOT EXISTS idx_reservations_email ON reservations(email);
CREATE INDEX IF NOT EXISTS idx_reservations_restaurant_time ON reservations(restaurant_id, reservation_time);

CREATE TABLE IF NOT EXISTS reviews (
	id SERIAL PRIMARY KEY,
	restaurant_id INT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	author_name TEXT NOT NULL,
	author_email TEXT NOT NULL,
	rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reviews_restaurant ON reviews(restaurant_id, created_at DESC);

CREATE TABLE IF NOT EXISTS menu_items (
	id SERIAL PRIMARY KEY,
	restaurant_id INT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	price_cents INT NOT NULL DEFAULT 0,
	available BOOLEAN NOT NULL DEFAULT TRUE
);
`

// Migrate applies the schema. Statements are idempotent so it runs on every
// startup.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}
