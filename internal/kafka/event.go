package kafka

import "time"

const (
	EventRoomBooked           = "room_booked"
	EventRoomReleased         = "room_released"
	EventFlightTicketReserved = "flight_ticket_reserved"
)

// BookingEvent is the payload written to the booking events and notifications topics.
type BookingEvent struct {
	Type       string    `json:"type"`
	Reference  string    `json:"reference,omitempty"`
	GuestID    int64     `json:"guest_id,omitempty"`
	HotelID    int64     `json:"hotel_id,omitempty"`
	RoomID     int64     `json:"room_id,omitempty"`
	StartDate  string    `json:"start_date,omitempty"`
	EndDate    string    `json:"end_date,omitempty"`
	FlightID   int64     `json:"flight_id,omitempty"`
	IDNumber   string    `json:"id_number,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
