package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/Domenick1991/tripbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type flightResponse struct {
	ID            int64  `json:"id"`
	FromAirport   string `json:"from_airport"`
	ToAirport     string `json:"to_airport"`
	DepartureTime string `json:"departure_time"`
	Capacity      int    `json:"capacity"`
}

type reserveTicketRequest struct {
	FlightID int64  `json:"flight_id" binding:"required,gt=0"`
	IDNumber string `json:"id_number" binding:"required,max=64"`
}

type ticketReservationResponse struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
	Flight    int64  `json:"flight"`
	IDNumber  string `json:"id_number"`
	Passenger int64  `json:"passenger"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(public, protected *gin.RouterGroup) {
	public.GET("/flights", h.list)
	public.GET("/flights/:flight_id", h.get)
	protected.POST("/flight-reservations", h.reserve)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(list, func(f domain.Flight, _ int) flightResponse {
		return toFlightResponse(f)
	}))
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := pathID(c, "flight_id")
	if !ok {
		return
	}

	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight))
}

func (h *FlightHandler) reserve(c *gin.Context) {
	var req reserveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	reservation, err := h.service.ReserveTicket(c.Request.Context(), guestID(c), flights.ReserveTicketInput{
		FlightID: req.FlightID,
		IDNumber: req.IDNumber,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ticketReservationResponse{
		ID:        reservation.ID,
		Reference: reservation.Reference,
		Flight:    reservation.FlightID,
		IDNumber:  reservation.IDNumber,
		Passenger: reservation.GuestID,
	})
}

func toFlightResponse(f domain.Flight) flightResponse {
	return flightResponse{
		ID:            f.ID,
		FromAirport:   f.FromAirport,
		ToAirport:     f.ToAirport,
		DepartureTime: f.DepartureTime.Format(time.RFC3339),
		Capacity:      f.Capacity,
	}
}
