package validator

import (
	"context"

	"github.com/Domenick1991/tripbooking/internal/domain"
)

type FlightFinder interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type TicketCandidate struct {
	FlightID int64
}

type TicketValidator struct {
	flights FlightFinder
}

func NewTicketValidator(flights FlightFinder) *TicketValidator {
	return &TicketValidator{flights: flights}
}

func (v *TicketValidator) Validate(ctx context.Context, c TicketCandidate) error {
	flight, err := v.flights.GetByID(ctx, c.FlightID)
	if err != nil {
		return err
	}
	return CheckCapacity(*flight)
}

func CheckCapacity(f domain.Flight) error {
	if f.Capacity <= 0 {
		return domain.ErrNoCapacity
	}
	return nil
}
