package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/tripbooking/config"
	"github.com/Domenick1991/tripbooking/internal/auth"
	"github.com/Domenick1991/tripbooking/internal/bootstrap"
	"github.com/Domenick1991/tripbooking/internal/cache"
	"github.com/Domenick1991/tripbooking/internal/kafka"
	"github.com/Domenick1991/tripbooking/internal/logging"
	"github.com/Domenick1991/tripbooking/internal/repository"
	"github.com/Domenick1991/tripbooking/internal/service/booking"
	"github.com/Domenick1991/tripbooking/internal/service/flights"
	"github.com/Domenick1991/tripbooking/internal/service/hotels"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if err := cfg.Auth.RequireSecret(); err != nil {
		logrus.WithError(err).Fatal("invalid config")
	}
	log := logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	if err := repository.InitSchema(ctx, pool); err != nil {
		log.WithError(err).Fatal("init schema")
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.HotelsCacheDuration())
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		log.WithError(err).Warn("kafka is not reachable, booking events will be dropped until it is")
	}

	hotelService := hotels.NewHotelService(repository.NewHotelRepository(pool), redisCache, log)
	bookingService := booking.NewBookingService(
		repository.NewRoomReservationRepository(pool),
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLogger(log),
	)
	flightService := flights.NewFlightService(
		repository.NewFlightRepository(pool),
		flights.WithEvents(producer, cfg.Kafka.BookingEventsTopic, cfg.Kafka.NotificationsTopic),
		flights.WithLogger(log),
	)

	srv := bootstrap.NewServer(cfg, bootstrap.Services{
		Hotels:    hotelService,
		Bookings:  bookingService,
		Flights:   flightService,
		Verifier:  auth.NewVerifier(cfg.Auth.JWTSecret),
		Responses: redisCache,
	}, log)

	if err := bootstrap.Run(ctx, srv, log); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
