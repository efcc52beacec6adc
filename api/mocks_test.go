package api

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/tripbooking/internal/auth"
	"github.com/Domenick1991/tripbooking/internal/cache"
	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/Domenick1991/tripbooking/internal/service/booking"
	"github.com/Domenick1991/tripbooking/internal/service/flights"
	"github.com/stretchr/testify/mock"
)

type MockHotelUseCase struct {
	mock.Mock
}

func (m *MockHotelUseCase) GetByID(ctx context.Context, id int64) (*domain.Hotel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hotel), args.Error(1)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) BookRoom(ctx context.Context, guestID, hotelID int64, input booking.BookRoomInput) (*domain.RoomReservation, error) {
	args := m.Called(ctx, guestID, hotelID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoomReservation), args.Error(1)
}

func (m *MockBookingUseCase) ReleaseIdleRooms(ctx context.Context) ([]domain.Room, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Room), args.Error(1)
}

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) ReserveTicket(ctx context.Context, guestID int64, input flights.ReserveTicketInput) (*domain.FlightReservation, error) {
	args := m.Called(ctx, guestID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightReservation), args.Error(1)
}

// staticVerifier accepts only the token "valid", as guest 7.
type staticVerifier struct{}

func (staticVerifier) GuestID(token string) (int64, error) {
	if token == "valid" {
		return 7, nil
	}
	return 0, auth.ErrInvalidToken
}

type memoryStore struct {
	mu    sync.Mutex
	items map[string]cache.StoredResponse
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: map[string]cache.StoredResponse{}}
}

func (s *memoryStore) GetResponse(_ context.Context, key string) (*cache.StoredResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (s *memoryStore) ClaimResponse(_ context.Context, key, bodyHash string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return false, nil
	}
	s.items[key] = cache.StoredResponse{BodyHash: bodyHash, InFlight: true}
	return true, nil
}

func (s *memoryStore) SaveResponse(_ context.Context, key string, resp cache.StoredResponse, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = resp
	return nil
}

func (s *memoryStore) ReleaseResponse(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *memoryStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
