package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RoomTx is the view of the database available while a room row is locked.
type RoomTx interface {
	ActiveForRoom(ctx context.Context, roomID int64, now time.Time) ([]domain.RoomReservation, error)
	Insert(ctx context.Context, reservation *domain.RoomReservation) error
	MarkOccupied(ctx context.Context, roomID int64) error
}

type RoomReservationRepository interface {
	ActiveForRoom(ctx context.Context, roomID int64, now time.Time) ([]domain.RoomReservation, error)
	// WithRoomLock runs fn in a transaction holding a row lock on the room and
	// commits when fn returns nil. Unknown rooms yield domain.ErrRoomNotFound.
	WithRoomLock(ctx context.Context, roomID int64, fn func(ctx context.Context, room domain.Room, tx RoomTx) error) error
	// ReleaseIdleRooms flips occupied rooms without an active reservation back to available.
	ReleaseIdleRooms(ctx context.Context, now time.Time) ([]domain.Room, error)
}

type PGRoomReservationRepository struct {
	db *pgxpool.Pool
}

func NewRoomReservationRepository(db *pgxpool.Pool) RoomReservationRepository {
	return &PGRoomReservationRepository{db: db}
}

// Dates are stored as DATE; they are compared as UTC midnights against now.
const endNotBefore = `(end_date::timestamp AT TIME ZONE 'UTC') >= $2`

func (r *PGRoomReservationRepository) ActiveForRoom(ctx context.Context, roomID int64, now time.Time) ([]domain.RoomReservation, error) {
	return activeForRoom(ctx, r.db, roomID, now)
}

func (r *PGRoomReservationRepository) WithRoomLock(ctx context.Context, roomID int64, fn func(ctx context.Context, room domain.Room, tx RoomTx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	room, err := scanRoom(tx.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id=$1 FOR UPDATE`, roomID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRoomNotFound
		}
		return fmt.Errorf("lock room %d: %w", roomID, err)
	}

	if err := fn(ctx, *room, &pgRoomTx{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReleaseIdleRooms locks the occupied rooms before checking their
// reservations. The check runs as a separate statement so that, under READ
// COMMITTED, it sees reservations committed by bookings that held a room
// lock while the sweep waited for it.
func (r *PGRoomReservationRepository) ReleaseIdleRooms(ctx context.Context, now time.Time) ([]domain.Room, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT id FROM rooms WHERE status=$1 ORDER BY id FOR UPDATE`, domain.RoomStatusOccupied)
	if err != nil {
		return nil, fmt.Errorf("lock occupied rooms: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("lock occupied rooms: %w", err)
	}
	if len(ids) == 0 {
		return nil, tx.Commit(ctx)
	}

	rows, err = tx.Query(ctx, `UPDATE rooms SET status=$1
		WHERE id = ANY($3) AND NOT EXISTS (
			SELECT 1 FROM room_reservations
			WHERE room_reservations.room_id = rooms.id AND `+endNotBefore+`
		)
		RETURNING `+roomColumns, domain.RoomStatusAvailable, now, ids)
	if err != nil {
		return nil, fmt.Errorf("release idle rooms: %w", err)
	}

	var released []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		released = append(released, *room)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("release idle rooms: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit release: %w", err)
	}
	return released, nil
}

type pgRoomTx struct {
	q querier
}

func (t *pgRoomTx) ActiveForRoom(ctx context.Context, roomID int64, now time.Time) ([]domain.RoomReservation, error) {
	return activeForRoom(ctx, t.q, roomID, now)
}

func (t *pgRoomTx) Insert(ctx context.Context, res *domain.RoomReservation) error {
	err := t.q.QueryRow(ctx, `INSERT INTO room_reservations (reference, hotel_id, room_id, guest_id, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`, res.Reference, res.HotelID, res.RoomID, res.GuestID, res.StartDate, res.EndDate).
		Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (t *pgRoomTx) MarkOccupied(ctx context.Context, roomID int64) error {
	_, err := t.q.Exec(ctx, `UPDATE rooms SET status=$1 WHERE id=$2`, domain.RoomStatusOccupied, roomID)
	return err
}

func activeForRoom(ctx context.Context, q querier, roomID int64, now time.Time) ([]domain.RoomReservation, error) {
	rows, err := q.Query(ctx, `SELECT id, reference, hotel_id, room_id, guest_id, start_date, end_date, created_at
		FROM room_reservations WHERE room_id=$1 AND `+endNotBefore+` ORDER BY start_date`, roomID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.RoomReservation, 0)
	for rows.Next() {
		var res domain.RoomReservation
		if err := rows.Scan(&res.ID, &res.Reference, &res.HotelID, &res.RoomID, &res.GuestID, &res.StartDate, &res.EndDate, &res.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

var _ RoomReservationRepository = (*PGRoomReservationRepository)(nil)
var _ RoomTx = (*pgRoomTx)(nil)
