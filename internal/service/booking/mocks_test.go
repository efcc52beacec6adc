package booking

import (
	"context"
	"time"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/Domenick1991/tripbooking/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockRoomReservationRepository runs the WithRoomLock callback against Tx
// using the room returned by the expectation.
type MockRoomReservationRepository struct {
	mock.Mock
	Tx *MockRoomTx
}

func (m *MockRoomReservationRepository) ActiveForRoom(ctx context.Context, roomID int64, now time.Time) ([]domain.RoomReservation, error) {
	args := m.Called(ctx, roomID, now)
	return args.Get(0).([]domain.RoomReservation), args.Error(1)
}

func (m *MockRoomReservationRepository) WithRoomLock(ctx context.Context, roomID int64, fn func(ctx context.Context, room domain.Room, tx repository.RoomTx) error) error {
	args := m.Called(ctx, roomID)
	if err := args.Error(1); err != nil {
		return err
	}
	return fn(ctx, *args.Get(0).(*domain.Room), m.Tx)
}

func (m *MockRoomReservationRepository) ReleaseIdleRooms(ctx context.Context, now time.Time) ([]domain.Room, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Room), args.Error(1)
}

type MockRoomTx struct {
	mock.Mock
}

func (m *MockRoomTx) ActiveForRoom(ctx context.Context, roomID int64, now time.Time) ([]domain.RoomReservation, error) {
	args := m.Called(ctx, roomID, now)
	return args.Get(0).([]domain.RoomReservation), args.Error(1)
}

func (m *MockRoomTx) Insert(ctx context.Context, reservation *domain.RoomReservation) error {
	args := m.Called(ctx, reservation)
	if args.Error(0) == nil {
		reservation.ID = 100
	}
	return args.Error(0)
}

func (m *MockRoomTx) MarkOccupied(ctx context.Context, roomID int64) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

type MockHotelCache struct {
	mock.Mock
}

func (m *MockHotelCache) InvalidateHotel(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}
