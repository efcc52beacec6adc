package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/Domenick1991/tripbooking/internal/kafka"
	"github.com/Domenick1991/tripbooking/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	require.NoError(t, err)
	return d
}

type fixture struct {
	repo     *MockRoomReservationRepository
	tx       *MockRoomTx
	cache    *MockHotelCache
	producer *MockProducer
	service  *BookingService
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	logger, _ := test.NewNullLogger()
	f := &fixture{
		tx:       &MockRoomTx{},
		cache:    &MockHotelCache{},
		producer: &MockProducer{},
		now:      mustDate(t, "2024-01-01").Add(9 * time.Hour),
	}
	f.repo = &MockRoomReservationRepository{Tx: f.tx}
	f.service = NewBookingService(f.repo, f.cache, f.producer, "booking_topic",
		WithNotificationsTopic("notifications_topic"),
		WithClock(func() time.Time { return f.now }),
		WithLogger(logger),
	)
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.tx.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.producer.AssertExpectations(t)
}

func room5Reservations(t *testing.T) []domain.RoomReservation {
	return []domain.RoomReservation{
		{ID: 1, RoomID: 5, HotelID: 1, StartDate: mustDate(t, "2024-01-10"), EndDate: mustDate(t, "2024-01-15")},
	}
}

func TestBookingService_BookRoom_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.On("WithRoomLock", ctx, int64(5)).Return(&domain.Room{ID: 5, HotelID: 1}, nil).Once()
	f.tx.On("ActiveForRoom", ctx, int64(5), f.now).Return(room5Reservations(t), nil).Once()
	f.tx.On("Insert", ctx, mock.AnythingOfType("*domain.RoomReservation")).Return(nil).Once()
	f.tx.On("MarkOccupied", ctx, int64(5)).Return(nil).Once()
	f.cache.On("InvalidateHotel", ctx, int64(1)).Return(nil).Once()
	f.producer.On("Publish", mock.Anything, "booking_topic", mock.Anything, mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventRoomBooked && e.RoomID == 5 && e.StartDate == "2024-01-16" && e.GuestID == 7
	})).Return(nil).Once()
	f.producer.On("Publish", mock.Anything, "notifications_topic", mock.Anything, mock.Anything).Return(nil).Once()

	res, err := f.service.BookRoom(ctx, 7, 1, BookRoomInput{
		RoomID:    5,
		StartDate: mustDate(t, "2024-01-16"),
		EndDate:   mustDate(t, "2024-01-20"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(100), res.ID)
	assert.Equal(t, int64(7), res.GuestID)
	assert.Equal(t, int64(1), res.HotelID)
	assert.NotEmpty(t, res.Reference)
	f.assertExpectations(t)
}

func TestBookingService_BookRoom_SharedBoundaryConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.On("WithRoomLock", ctx, int64(5)).Return(&domain.Room{ID: 5, HotelID: 1}, nil).Once()
	f.tx.On("ActiveForRoom", ctx, int64(5), f.now).Return(room5Reservations(t), nil).Once()

	res, err := f.service.BookRoom(ctx, 7, 1, BookRoomInput{
		RoomID:    5,
		StartDate: mustDate(t, "2024-01-15"),
		EndDate:   mustDate(t, "2024-01-20"),
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrRoomConflict)
	f.tx.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	f.tx.AssertNotCalled(t, "MarkOccupied", mock.Anything, mock.Anything)
	f.producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestBookingService_BookRoom_InvalidRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.On("WithRoomLock", ctx, int64(5)).Return(&domain.Room{ID: 5, HotelID: 1}, nil).Once()

	_, err := f.service.BookRoom(ctx, 7, 1, BookRoomInput{
		RoomID:    5,
		StartDate: mustDate(t, "2024-01-20"),
		EndDate:   mustDate(t, "2024-01-16"),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidRange)
	f.tx.AssertNotCalled(t, "ActiveForRoom", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestBookingService_BookRoom_RoomOfAnotherHotel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.On("WithRoomLock", ctx, int64(5)).Return(&domain.Room{ID: 5, HotelID: 2}, nil).Once()

	_, err := f.service.BookRoom(ctx, 7, 1, BookRoomInput{
		RoomID:    5,
		StartDate: mustDate(t, "2024-01-16"),
		EndDate:   mustDate(t, "2024-01-20"),
	})

	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	f.assertExpectations(t)
}

func TestBookingService_BookRoom_UnknownRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.On("WithRoomLock", ctx, int64(99)).Return(nil, domain.ErrRoomNotFound).Once()

	_, err := f.service.BookRoom(ctx, 7, 1, BookRoomInput{
		RoomID:    99,
		StartDate: mustDate(t, "2024-01-16"),
		EndDate:   mustDate(t, "2024-01-20"),
	})

	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	f.assertExpectations(t)
}

func TestBookingService_BookRoom_InsertError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbErr := errors.New("database error")

	f.repo.On("WithRoomLock", ctx, int64(5)).Return(&domain.Room{ID: 5, HotelID: 1}, nil).Once()
	f.tx.On("ActiveForRoom", ctx, int64(5), f.now).Return([]domain.RoomReservation{}, nil).Once()
	f.tx.On("Insert", ctx, mock.Anything).Return(dbErr).Once()

	_, err := f.service.BookRoom(ctx, 7, 1, BookRoomInput{
		RoomID:    5,
		StartDate: mustDate(t, "2024-01-16"),
		EndDate:   mustDate(t, "2024-01-20"),
	})

	assert.ErrorIs(t, err, dbErr)
	f.tx.AssertNotCalled(t, "MarkOccupied", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestBookingService_BookRoom_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.On("WithRoomLock", ctx, int64(5)).Return(&domain.Room{ID: 5, HotelID: 1}, nil).Once()
	f.tx.On("ActiveForRoom", ctx, int64(5), f.now).Return([]domain.RoomReservation{}, nil).Once()
	f.tx.On("Insert", ctx, mock.Anything).Return(nil).Once()
	f.tx.On("MarkOccupied", ctx, int64(5)).Return(nil).Once()
	f.cache.On("InvalidateHotel", ctx, int64(1)).Return(errors.New("redis down")).Once()
	f.producer.On("Publish", mock.Anything, "booking_topic", mock.Anything, mock.Anything).Return(errors.New("kafka down")).Once()

	res, err := f.service.BookRoom(ctx, 7, 1, BookRoomInput{
		RoomID:    5,
		StartDate: mustDate(t, "2024-01-16"),
		EndDate:   mustDate(t, "2024-01-20"),
	})

	assert.NoError(t, err)
	assert.NotNil(t, res)
	f.assertExpectations(t)
}

func TestBookingService_ReleaseIdleRooms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.On("ReleaseIdleRooms", ctx, f.now).Return([]domain.Room{
		{ID: 5, HotelID: 1, Status: domain.RoomStatusAvailable},
		{ID: 8, HotelID: 2, Status: domain.RoomStatusAvailable},
	}, nil).Once()
	f.cache.On("InvalidateHotel", ctx, int64(1)).Return(nil).Once()
	f.cache.On("InvalidateHotel", ctx, int64(2)).Return(nil).Once()
	f.producer.On("Publish", mock.Anything, "booking_topic", "room-5", mock.Anything).Return(nil).Once()
	f.producer.On("Publish", mock.Anything, "notifications_topic", "room-5", mock.Anything).Return(nil).Once()
	f.producer.On("Publish", mock.Anything, "booking_topic", "room-8", mock.Anything).Return(nil).Once()
	f.producer.On("Publish", mock.Anything, "notifications_topic", "room-8", mock.Anything).Return(nil).Once()

	released, err := f.service.ReleaseIdleRooms(ctx)

	require.NoError(t, err)
	assert.Len(t, released, 2)
	f.assertExpectations(t)
}

func TestBookingService_ReleaseIdleRooms_LogsPublishFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	repo := &MockRoomReservationRepository{}
	producer := &MockProducer{}
	now := mustDate(t, "2024-01-01")
	service := NewBookingService(repo, nil, producer, "booking_topic",
		WithClock(func() time.Time { return now }),
		WithLogger(logger),
	)
	ctx := context.Background()

	repo.On("ReleaseIdleRooms", ctx, now).Return([]domain.Room{{ID: 5, HotelID: 1}}, nil).Once()
	producer.On("Publish", mock.Anything, "booking_topic", "room-5", mock.Anything).Return(errors.New("kafka down")).Once()

	released, err := service.ReleaseIdleRooms(ctx)

	require.NoError(t, err)
	assert.Len(t, released, 1)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, int64(5), hook.LastEntry().Data["room_id"])
}

func TestBookingService_BookRoom_SlowBrokerDoesNotHoldResponse(t *testing.T) {
	logger, _ := test.NewNullLogger()
	tx := &MockRoomTx{}
	repo := &MockRoomReservationRepository{Tx: tx}
	producer := &MockProducer{}
	now := mustDate(t, "2024-01-01")
	service := NewBookingService(repo, nil, producer, "booking_topic",
		WithClock(func() time.Time { return now }),
		WithLogger(logger),
		WithPublishTimeout(20*time.Millisecond),
	)
	ctx := context.Background()

	repo.On("WithRoomLock", ctx, int64(5)).Return(&domain.Room{ID: 5, HotelID: 1}, nil).Once()
	tx.On("ActiveForRoom", ctx, int64(5), now).Return([]domain.RoomReservation{}, nil).Once()
	tx.On("Insert", ctx, mock.Anything).Return(nil).Once()
	tx.On("MarkOccupied", ctx, int64(5)).Return(nil).Once()
	producer.On("Publish", mock.Anything, "booking_topic", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.DeadlineExceeded).Once()

	start := time.Now()
	res, err := service.BookRoom(ctx, 7, 1, BookRoomInput{
		RoomID:    5,
		StartDate: mustDate(t, "2024-01-16"),
		EndDate:   mustDate(t, "2024-01-20"),
	})

	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Less(t, time.Since(start), time.Second)
	producer.AssertExpectations(t)
}

func TestBookingService_ReleaseIdleRooms_Error(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbErr := errors.New("database error")

	f.repo.On("ReleaseIdleRooms", ctx, f.now).Return(nil, dbErr).Once()

	_, err := f.service.ReleaseIdleRooms(ctx)

	assert.ErrorIs(t, err, dbErr)
	f.cache.AssertNotCalled(t, "InvalidateHotel", mock.Anything, mock.Anything)
}

// lockingRepo is an in-memory stand-in for the row lock: one mutex per
// repository, reservations kept in a slice.
type lockingRepo struct {
	mu       sync.Mutex
	rooms    map[int64]domain.Room
	reserved []domain.RoomReservation
}

func (r *lockingRepo) ActiveForRoom(_ context.Context, roomID int64, now time.Time) ([]domain.RoomReservation, error) {
	var out []domain.RoomReservation
	for _, res := range r.reserved {
		if res.RoomID == roomID && res.Active(now) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *lockingRepo) WithRoomLock(ctx context.Context, roomID int64, fn func(context.Context, domain.Room, repository.RoomTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	return fn(ctx, room, r)
}

func (r *lockingRepo) ReleaseIdleRooms(context.Context, time.Time) ([]domain.Room, error) {
	return nil, nil
}

func (r *lockingRepo) Insert(_ context.Context, res *domain.RoomReservation) error {
	res.ID = int64(len(r.reserved) + 1)
	r.reserved = append(r.reserved, *res)
	return nil
}

func (r *lockingRepo) MarkOccupied(_ context.Context, roomID int64) error {
	room := r.rooms[roomID]
	room.Status = domain.RoomStatusOccupied
	r.rooms[roomID] = room
	return nil
}

func TestBookingService_BookRoom_ConcurrentRequestsForSameDates(t *testing.T) {
	repo := &lockingRepo{rooms: map[int64]domain.Room{5: {ID: 5, HotelID: 1, Status: domain.RoomStatusAvailable}}}
	now := mustDate(t, "2024-01-01")
	service := NewBookingService(repo, nil, nil, "", WithClock(func() time.Time { return now }))

	start, end := mustDate(t, "2024-01-10"), mustDate(t, "2024-01-15")

	const requests = 8
	var wg sync.WaitGroup
	errs := make([]error, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.BookRoom(context.Background(), int64(i+1), 1, BookRoomInput{
				RoomID:    5,
				StartDate: start,
				EndDate:   end,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrRoomConflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, repo.reserved, 1)
	assert.Equal(t, domain.RoomStatusOccupied, repo.rooms[5].Status)
}
