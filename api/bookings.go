package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/tripbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createRoomBookingRequest struct {
	StartDate string `json:"start_date" binding:"required,bookingdate"`
	EndDate   string `json:"end_date" binding:"required,bookingdate"`
	RoomID    int64  `json:"room_id" binding:"required,gt=0"`
}

type roomBookingResponse struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
	Hotel     int64  `json:"hotel"`
	Room      int64  `json:"room"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Passenger int64  `json:"passenger"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/hotels/:hotel_id/bookings", h.create)
}

func (h *BookingHandler) create(c *gin.Context) {
	hotelID, ok := pathID(c, "hotel_id")
	if !ok {
		return
	}

	var req createRoomBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	// Formats were checked by the bookingdate rule.
	start, _ := time.Parse(booking.DateLayout, req.StartDate)
	end, _ := time.Parse(booking.DateLayout, req.EndDate)

	reservation, err := h.service.BookRoom(c.Request.Context(), guestID(c), hotelID, booking.BookRoomInput{
		RoomID:    req.RoomID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, roomBookingResponse{
		ID:        reservation.ID,
		Reference: reservation.Reference,
		Hotel:     reservation.HotelID,
		Room:      reservation.RoomID,
		StartDate: reservation.StartDate.Format(booking.DateLayout),
		EndDate:   reservation.EndDate.Format(booking.DateLayout),
		Passenger: reservation.GuestID,
	})
}
