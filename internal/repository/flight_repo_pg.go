package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FlightTx is the view of the database available while a flight row is locked.
type FlightTx interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	TakeSeat(ctx context.Context, flightID int64) error
	InsertReservation(ctx context.Context, reservation *domain.FlightReservation) error
}

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	// WithFlightLock runs fn in a transaction that holds a row lock on the
	// flight and commits when fn returns nil.
	WithFlightLock(ctx context.Context, flightID int64, fn func(ctx context.Context, tx FlightTx) error) error
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, from_airport, to_airport, departure_time, capacity, created_at, updated_at`

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return getFlight(ctx, r.db, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
}

func (r *PGFlightRepository) WithFlightLock(ctx context.Context, flightID int64, fn func(ctx context.Context, tx FlightTx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgFlightTx{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgFlightTx struct {
	q querier
}

// GetByID reads and locks the flight row until the transaction ends.
func (t *pgFlightTx) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return getFlight(ctx, t.q, `SELECT `+flightColumns+` FROM flights WHERE id=$1 FOR UPDATE`, id)
}

func (t *pgFlightTx) TakeSeat(ctx context.Context, flightID int64) error {
	res, err := t.q.Exec(ctx, `UPDATE flights SET capacity = capacity - 1, updated_at = now() WHERE id=$1 AND capacity > 0`, flightID)
	if err != nil {
		return mapPgError(err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNoCapacity
	}
	return nil
}

func (t *pgFlightTx) InsertReservation(ctx context.Context, res *domain.FlightReservation) error {
	return t.q.QueryRow(ctx, `INSERT INTO flight_reservations (reference, flight_id, guest_id, id_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, res.Reference, res.FlightID, res.GuestID, res.IDNumber).
		Scan(&res.ID, &res.CreatedAt)
}

func getFlight(ctx context.Context, q querier, sql string, id int64) (*domain.Flight, error) {
	f, err := scanFlight(q.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, fmt.Errorf("select flight %d: %w", id, err)
	}
	return f, nil
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FromAirport, &f.ToAirport, &f.DepartureTime, &f.Capacity, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
var _ FlightTx = (*pgFlightTx)(nil)
