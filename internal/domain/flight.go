package domain

import "time"

type Flight struct {
	ID            int64
	FromAirport   string
	ToAirport     string
	DepartureTime time.Time
	// Capacity is the number of seats still unallocated.
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type FlightReservation struct {
	ID        int64
	Reference string
	FlightID  int64
	GuestID   int64
	IDNumber  string
	CreatedAt time.Time
}
