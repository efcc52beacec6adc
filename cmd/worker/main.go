package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/tripbooking/config"
	"github.com/Domenick1991/tripbooking/internal/cache"
	"github.com/Domenick1991/tripbooking/internal/email"
	"github.com/Domenick1991/tripbooking/internal/kafka"
	"github.com/Domenick1991/tripbooking/internal/logging"
	"github.com/Domenick1991/tripbooking/internal/repository"
	"github.com/Domenick1991/tripbooking/internal/service/booking"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.HotelsCacheDuration())
	defer redisCache.Close()

	bookingService := booking.NewBookingService(
		repository.NewRoomReservationRepository(pool),
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLogger(log),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()
	sender := email.NewSender(log)

	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("topic", cfg.Kafka.NotificationsTopic).Info("consuming notifications")
		err := consumer.Consume(runCtx, kafka.EventHandler(sender.Send))
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.Worker.SweepInterval())
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return nil
			case <-ticker.C:
				released, err := bookingService.ReleaseIdleRooms(runCtx)
				if err != nil {
					log.WithError(err).Error("release idle rooms")
					continue
				}
				if len(released) > 0 {
					log.WithField("count", len(released)).Info("released idle rooms")
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("worker stopped")
		return
	}
	log.Info("worker stopped")
}
