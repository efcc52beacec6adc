package repository

import (
	"errors"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgCheckViolation = "23514"

// mapPgError turns constraint violations that mirror validation rules into
// the matching domain error so that they reach clients as 400s.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgCheckViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "room_reservations_range_check":
		return domain.ErrInvalidRange
	case "flights_capacity_check":
		return domain.ErrNoCapacity
	}
	return err
}
