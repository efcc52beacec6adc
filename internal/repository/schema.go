package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS hotels (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		stars INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id BIGSERIAL PRIMARY KEY,
		hotel_id BIGINT NOT NULL REFERENCES hotels(id),
		room_number TEXT NOT NULL,
		capacity INTEGER NOT NULL DEFAULT 1,
		price NUMERIC(12, 2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'available'
	)`,
	`CREATE TABLE IF NOT EXISTS room_reservations (
		id BIGSERIAL PRIMARY KEY,
		reference UUID NOT NULL UNIQUE,
		hotel_id BIGINT NOT NULL REFERENCES hotels(id),
		room_id BIGINT NOT NULL REFERENCES rooms(id),
		guest_id BIGINT NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT room_reservations_range_check CHECK (start_date <= end_date)
	)`,
	`CREATE INDEX IF NOT EXISTS room_reservations_room_end_idx ON room_reservations (room_id, end_date)`,
	`CREATE TABLE IF NOT EXISTS flights (
		id BIGSERIAL PRIMARY KEY,
		from_airport TEXT NOT NULL,
		to_airport TEXT NOT NULL,
		departure_time TIMESTAMPTZ NOT NULL,
		capacity INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT flights_capacity_check CHECK (capacity >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS flight_reservations (
		id BIGSERIAL PRIMARY KEY,
		reference UUID NOT NULL UNIQUE,
		flight_id BIGINT NOT NULL REFERENCES flights(id),
		guest_id BIGINT NOT NULL,
		id_number TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// InitSchema creates the tables the repositories rely on if they are missing.
func InitSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
