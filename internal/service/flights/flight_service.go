package flights

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/Domenick1991/tripbooking/internal/kafka"
	"github.com/Domenick1991/tripbooking/internal/repository"
	"github.com/Domenick1991/tripbooking/internal/validator"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultPublishTimeout = 3 * time.Second

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	ReserveTicket(ctx context.Context, guestID int64, input ReserveTicketInput) (*domain.FlightReservation, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ReserveTicketInput struct {
	FlightID int64
	IDNumber string
}

type FlightService struct {
	repo               repository.FlightRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	publishTimeout     time.Duration
	now                func() time.Time
	log                logrus.FieldLogger
}

type FlightServiceOption func(*FlightService)

func WithEvents(producer Producer, bookingTopic, notificationsTopic string) FlightServiceOption {
	return func(s *FlightService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
		s.notificationsTopic = notificationsTopic
	}
}

func WithPublishTimeout(timeout time.Duration) FlightServiceOption {
	return func(s *FlightService) {
		s.publishTimeout = timeout
	}
}

func WithLogger(log logrus.FieldLogger) FlightServiceOption {
	return func(s *FlightService) {
		s.log = log
	}
}

func NewFlightService(repo repository.FlightRepository, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		repo:           repo,
		publishTimeout: defaultPublishTimeout,
		now:            time.Now,
		log:            logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	return s.repo.List(ctx)
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

// ReserveTicket checks capacity and takes one seat in the same transaction,
// so a flight with one seat left accepts exactly one more reservation.
func (s *FlightService) ReserveTicket(ctx context.Context, guestID int64, input ReserveTicketInput) (*domain.FlightReservation, error) {
	reservation := &domain.FlightReservation{
		Reference: uuid.NewString(),
		FlightID:  input.FlightID,
		GuestID:   guestID,
		IDNumber:  input.IDNumber,
	}

	err := s.repo.WithFlightLock(ctx, input.FlightID, func(ctx context.Context, tx repository.FlightTx) error {
		if err := validator.NewTicketValidator(tx).Validate(ctx, validator.TicketCandidate{FlightID: input.FlightID}); err != nil {
			return err
		}
		if err := tx.TakeSeat(ctx, input.FlightID); err != nil {
			return err
		}
		if err := tx.InsertReservation(ctx, reservation); err != nil {
			return fmt.Errorf("insert flight reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.publish(ctx, kafka.BookingEvent{
		Type:       kafka.EventFlightTicketReserved,
		Reference:  reservation.Reference,
		GuestID:    guestID,
		FlightID:   reservation.FlightID,
		IDNumber:   reservation.IDNumber,
		OccurredAt: s.now(),
	}); err != nil {
		s.log.WithError(err).WithField("reference", reservation.Reference).Warn("failed to publish flight_ticket_reserved event")
	}
	return reservation, nil
}

func (s *FlightService) publish(ctx context.Context, event kafka.BookingEvent) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	if err := s.producer.Publish(ctx, s.bookingTopic, event.Reference, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, event.Reference, event)
	}
	return nil
}

var _ FlightUseCase = (*FlightService)(nil)
