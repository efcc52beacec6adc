package api

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/Domenick1991/tripbooking/internal/service/booking"
	"github.com/Domenick1991/tripbooking/internal/service/flights"
	"github.com/Domenick1991/tripbooking/internal/service/hotels"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RouterDeps struct {
	Hotels         hotels.HotelUseCase
	Bookings       booking.BookingUseCase
	Flights        flights.FlightUseCase
	Verifier       TokenVerifier
	Responses      ResponseStore
	IdempotencyTTL time.Duration
	SwaggerDir     string
	Log            logrus.FieldLogger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	registerValidators()
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}

	router := gin.New()
	router.Use(RequestID(), Logger(deps.Log), Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.SwaggerDir != "" {
		router.StaticFile("/openapi.json", filepath.Join(deps.SwaggerDir, "openapi.json"))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/openapi.json"))))
	}

	public := router.Group("/")
	protected := router.Group("/", Auth(deps.Verifier), Idempotency(deps.Responses, deps.IdempotencyTTL))

	NewHotelHandler(deps.Hotels).Register(public)
	NewBookingHandler(deps.Bookings).Register(protected)
	NewFlightHandler(deps.Flights).Register(public, protected)

	return router
}
