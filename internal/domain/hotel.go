package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoomStatus string

const (
	RoomStatusAvailable RoomStatus = "available"
	RoomStatusOccupied  RoomStatus = "occupied"
)

type Hotel struct {
	ID        int64
	Name      string
	City      string
	Address   string
	Stars     int
	Rooms     []Room
	CreatedAt time.Time
}

type Room struct {
	ID         int64
	HotelID    int64
	RoomNumber string
	Capacity   int
	Price      decimal.Decimal
	Status     RoomStatus
}

// RoomReservation is one booked [StartDate, EndDate] interval of a room.
// Dates are calendar days at UTC midnight.
type RoomReservation struct {
	ID        int64
	Reference string
	HotelID   int64
	RoomID    int64
	GuestID   int64
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
}

// Active reports whether the reservation still blocks its room at now.
func (r RoomReservation) Active(now time.Time) bool {
	return !r.EndDate.Before(now)
}

// Overlaps reports whether both closed intervals share at least one instant.
func (r RoomReservation) Overlaps(start, end time.Time) bool {
	return !r.StartDate.After(end) && !start.After(r.EndDate)
}
