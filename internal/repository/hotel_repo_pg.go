package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HotelRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Hotel, error)
}

type PGHotelRepository struct {
	db *pgxpool.Pool
}

func NewHotelRepository(db *pgxpool.Pool) HotelRepository {
	return &PGHotelRepository{db: db}
}

const roomColumns = `id, hotel_id, room_number, capacity, price, status`

func (r *PGHotelRepository) GetByID(ctx context.Context, id int64) (*domain.Hotel, error) {
	var h domain.Hotel
	err := r.db.QueryRow(ctx, `SELECT id, name, city, address, stars, created_at FROM hotels WHERE id=$1`, id).
		Scan(&h.ID, &h.Name, &h.City, &h.Address, &h.Stars, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHotelNotFound
		}
		return nil, fmt.Errorf("select hotel %d: %w", id, err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+roomColumns+` FROM rooms WHERE hotel_id=$1 ORDER BY room_number`, id)
	if err != nil {
		return nil, fmt.Errorf("select rooms of hotel %d: %w", id, err)
	}
	defer rows.Close()

	h.Rooms = make([]domain.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		h.Rooms = append(h.Rooms, *room)
	}
	return &h, rows.Err()
}

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var room domain.Room
	var status string
	if err := row.Scan(&room.ID, &room.HotelID, &room.RoomNumber, &room.Capacity, &room.Price, &status); err != nil {
		return nil, err
	}
	room.Status = domain.RoomStatus(status)
	return &room, nil
}

var _ HotelRepository = (*PGHotelRepository)(nil)
