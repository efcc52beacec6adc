package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/tripbooking/api"
	"github.com/Domenick1991/tripbooking/config"
	"github.com/Domenick1991/tripbooking/internal/service/booking"
	"github.com/Domenick1991/tripbooking/internal/service/flights"
	"github.com/Domenick1991/tripbooking/internal/service/hotels"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type Services struct {
	Hotels    hotels.HotelUseCase
	Bookings  booking.BookingUseCase
	Flights   flights.FlightUseCase
	Verifier  api.TokenVerifier
	Responses api.ResponseStore
}

func NewServer(cfg *config.Config, svc Services, log logrus.FieldLogger) *http.Server {
	router := api.NewRouter(api.RouterDeps{
		Hotels:         svc.Hotels,
		Bookings:       svc.Bookings,
		Flights:        svc.Flights,
		Verifier:       svc.Verifier,
		Responses:      svc.Responses,
		IdempotencyTTL: cfg.Booking.IdempotencyDuration(),
		SwaggerDir:     cfg.HTTP.SwaggerDir,
		Log:            log,
	})

	return &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run serves HTTP until ctx is canceled or the server fails, then shuts down
// gracefully.
func Run(ctx context.Context, srv *http.Server, log logrus.FieldLogger) error {
	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info("shutting down HTTP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
