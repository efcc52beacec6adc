package booking

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

const DateLayout = "2006-01-02"

// Events are published after commit; a slow broker must not hold the response.
const defaultPublishTimeout = 3 * time.Second

type BookingUseCase interface {
	BookRoom(ctx context.Context, guestID, hotelID int64, input BookRoomInput) (*domain.RoomReservation, error)
	ReleaseIdleRooms(ctx context.Context) ([]domain.Room, error)
}

type HotelCache interface {
	InvalidateHotel(ctx context.Context, id int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookRoomInput struct {
	RoomID    int64
	StartDate time.Time
	EndDate   time.Time
}

type BookingService struct {
	reservations       repository.RoomReservationRepository
	cache              HotelCache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	publishTimeout     time.Duration
	now                func() time.Time
	log                logrus.FieldLogger
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithPublishTimeout(timeout time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.publishTimeout = timeout
	}
}

func WithLogger(log logrus.FieldLogger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(
	reservations repository.RoomReservationRepository,
	cache HotelCache,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		reservations:   reservations,
		cache:          cache,
		producer:       producer,
		bookingTopic:   bookingTopic,
		publishTimeout: defaultPublishTimeout,
		now:            time.Now,
		log:            logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// BookRoom validates and stores a reservation while holding the room's row
// lock, so concurrent requests for the same room are checked one at a time.
func (s *BookingService) BookRoom(ctx context.Context, guestID, hotelID int64, input BookRoomInput) (*domain.RoomReservation, error) {
	now := s.now()
	reservation := &domain.RoomReservation{
		Reference: uuid.NewString(),
		HotelID:   hotelID,
		RoomID:    input.RoomID,
		GuestID:   guestID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}

	err := s.reservations.WithRoomLock(ctx, input.RoomID, func(ctx context.Context, room domain.Room, tx repository.RoomTx) error {
		if room.HotelID != hotelID {
			return domain.ErrRoomNotFound
		}

		candidate := validator.RoomCandidate{RoomID: room.ID, StartDate: input.StartDate, EndDate: input.EndDate}
		if err := validator.NewRoomBookingValidator(tx).Validate(ctx, candidate, now); err != nil {
			return err
		}

		if err := tx.Insert(ctx, reservation); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		if err := tx.MarkOccupied(ctx, room.ID); err != nil {
			return fmt.Errorf("mark room %d occupied: %w", room.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, hotelID)
	if err := s.publish(ctx, kafka.BookingEvent{
		Type:       kafka.EventRoomBooked,
		Reference:  reservation.Reference,
		GuestID:    guestID,
		HotelID:    hotelID,
		RoomID:     reservation.RoomID,
		StartDate:  reservation.StartDate.Format(DateLayout),
		EndDate:    reservation.EndDate.Format(DateLayout),
		OccurredAt: now,
	}); err != nil {
		s.log.WithError(err).WithField("reference", reservation.Reference).Warn("failed to publish room_booked event")
	}
	return reservation, nil
}

// ReleaseIdleRooms marks every occupied room that has no active reservation
// left as available again. It keeps the room status flag in line with the
// reservation set.
func (s *BookingService) ReleaseIdleRooms(ctx context.Context) ([]domain.Room, error) {
	now := s.now()
	released, err := s.reservations.ReleaseIdleRooms(ctx, now)
	if err != nil {
		return nil, err
	}
	for _, room := range released {
		s.invalidate(ctx, room.HotelID)
		if err := s.publish(ctx, kafka.BookingEvent{
			Type:       kafka.EventRoomReleased,
			HotelID:    room.HotelID,
			RoomID:     room.ID,
			OccurredAt: now,
		}); err != nil {
			s.log.WithError(err).WithField("room_id", room.ID).Warn("failed to publish room_released event")
		}
	}
	return released, nil
}

func (s *BookingService) invalidate(ctx context.Context, hotelID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateHotel(ctx, hotelID); err != nil {
		s.log.WithError(err).WithField("hotel_id", hotelID).Warn("failed to invalidate hotel cache")
	}
}

func (s *BookingService) publish(ctx context.Context, event kafka.BookingEvent) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	key := event.Reference
	if key == "" {
		key = fmt.Sprintf("room-%d", event.RoomID)
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, key, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
