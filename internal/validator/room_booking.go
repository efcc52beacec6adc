package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/tripbooking/internal/domain"
)

// ReservationFinder returns reservations of a room that have not ended before now.
type ReservationFinder interface {
	ActiveForRoom(ctx context.Context, roomID int64, now time.Time) ([]domain.RoomReservation, error)
}

type RoomCandidate struct {
	RoomID    int64
	StartDate time.Time
	EndDate   time.Time
}

type RoomBookingValidator struct {
	reservations ReservationFinder
}

func NewRoomBookingValidator(reservations ReservationFinder) *RoomBookingValidator {
	return &RoomBookingValidator{reservations: reservations}
}

// Validate rejects a candidate whose range is inverted or which overlaps an
// existing reservation of the same room that is still active at now.
func (v *RoomBookingValidator) Validate(ctx context.Context, c RoomCandidate, now time.Time) error {
	if c.StartDate.After(c.EndDate) {
		return domain.ErrInvalidRange
	}

	existing, err := v.reservations.ActiveForRoom(ctx, c.RoomID, now)
	if err != nil {
		return fmt.Errorf("fetch reservations for room %d: %w", c.RoomID, err)
	}
	return CheckRoomAvailability(c, existing, now)
}

// CheckRoomAvailability is the pure part of Validate.
func CheckRoomAvailability(c RoomCandidate, existing []domain.RoomReservation, now time.Time) error {
	if c.StartDate.After(c.EndDate) {
		return domain.ErrInvalidRange
	}
	for _, r := range existing {
		if r.RoomID != c.RoomID || !r.Active(now) {
			continue
		}
		if r.Overlaps(c.StartDate, c.EndDate) {
			return domain.ErrRoomConflict
		}
	}
	return nil
}
