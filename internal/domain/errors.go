package domain

import "errors"

var (
	ErrHotelNotFound  = errors.New("hotel not found")
	ErrRoomNotFound   = errors.New("room not found")
	ErrFlightNotFound = errors.New("flight not found")
)

// ValidationError is a user-facing rejection tied to one request field.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	ErrRoomConflict = &ValidationError{
		Code:    "ROOM_CONFLICT",
		Field:   "room_status",
		Message: "room is full at this time",
	}
	ErrInvalidRange = &ValidationError{
		Code:    "INVALID_RANGE",
		Field:   "end_date",
		Message: "finish must occur after start",
	}
	ErrNoCapacity = &ValidationError{
		Code:    "NO_CAPACITY",
		Field:   "capacity_status",
		Message: "no more tickets available",
	}
)
