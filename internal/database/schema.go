package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Table DDL per dialect.  Dates are DATE columns, list and object columns
// are JSON text so the same model scans on every backend.
var schemas = map[string][]string{
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS villas (
			id CHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			short_description VARCHAR(512) NOT NULL,
			location VARCHAR(255) NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			bedrooms INT NOT NULL,
			bathrooms INT NOT NULL,
			max_guests INT NOT NULL,
			images TEXT NOT NULL,
			amenities TEXT NOT NULL,
			created_at DATETIME(6) NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id CHAR(36) NOT NULL PRIMARY KEY,
			villa_id CHAR(36) NOT NULL,
			check_in DATE NOT NULL,
			check_out DATE NOT NULL,
			guests INT NOT NULL,
			first_name VARCHAR(255) NOT NULL,
			last_name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(64) NOT NULL,
			special_requests TEXT NOT NULL,
			total_amount DECIMAL(12,2) NOT NULL,
			payment_id VARCHAR(128) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			KEY idx_bookings_villa_status (villa_id, status),
			KEY idx_bookings_email (email),
			UNIQUE KEY uq_bookings_payment (payment_id),
			CONSTRAINT fk_bookings_villa FOREIGN KEY (villa_id) REFERENCES villas(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id CHAR(36) NOT NULL PRIMARY KEY,
			booking_id CHAR(36) NULL,
			payment_id VARCHAR(128) NOT NULL,
			amount DECIMAL(12,2) NOT NULL,
			currency VARCHAR(8) NOT NULL DEFAULT 'INR',
			status VARCHAR(16) NOT NULL,
			payment_method VARCHAR(64) NOT NULL,
			payment_details TEXT NOT NULL,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			UNIQUE KEY uq_transactions_payment (payment_id, status),
			KEY idx_transactions_booking (booking_id),
			CONSTRAINT fk_transactions_booking FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE SET NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS villas (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			short_description TEXT NOT NULL,
			location TEXT NOT NULL,
			price NUMERIC(12,2) NOT NULL,
			bedrooms INTEGER NOT NULL,
			bathrooms INTEGER NOT NULL,
			max_guests INTEGER NOT NULL,
			images TEXT NOT NULL,
			amenities TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			villa_id TEXT NOT NULL REFERENCES villas(id) ON DELETE CASCADE,
			check_in DATE NOT NULL,
			check_out DATE NOT NULL,
			guests INTEGER NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			special_requests TEXT NOT NULL DEFAULT '',
			total_amount NUMERIC(12,2) NOT NULL,
			payment_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'confirmed', 'cancelled')),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_villa_status ON bookings (villa_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_email ON bookings (email)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_bookings_payment ON bookings (payment_id)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			booking_id TEXT REFERENCES bookings(id) ON DELETE SET NULL,
			payment_id TEXT NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			currency TEXT NOT NULL DEFAULT 'INR',
			status TEXT NOT NULL CHECK (status IN ('pending', 'completed', 'failed', 'refunded')),
			payment_method TEXT NOT NULL,
			payment_details TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (payment_id, status)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_booking ON transactions (booking_id)`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS villas (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			short_description TEXT NOT NULL,
			location TEXT NOT NULL,
			price REAL NOT NULL,
			bedrooms INTEGER NOT NULL,
			bathrooms INTEGER NOT NULL,
			max_guests INTEGER NOT NULL,
			images TEXT NOT NULL,
			amenities TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			villa_id TEXT NOT NULL REFERENCES villas(id) ON DELETE CASCADE,
			check_in DATE NOT NULL,
			check_out DATE NOT NULL,
			guests INTEGER NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			special_requests TEXT NOT NULL DEFAULT '',
			total_amount REAL NOT NULL,
			payment_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_villa_status ON bookings (villa_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_email ON bookings (email)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_bookings_payment ON bookings (payment_id)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			booking_id TEXT REFERENCES bookings(id) ON DELETE SET NULL,
			payment_id TEXT NOT NULL,
			amount REAL NOT NULL,
			currency TEXT NOT NULL DEFAULT 'INR',
			status TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			payment_details TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE (payment_id, status)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_booking ON transactions (booking_id)`,
	},
}

// Migrate creates the villas, bookings and transactions tables when they
// do not exist yet.  It is safe to run on every start.
func Migrate(ctx context.Context, db *sqlx.DB, driver string) error {
	stmts, ok := schemas[driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", driver)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", driver, err)
		}
	}
	return nil
}
