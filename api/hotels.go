package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/Domenick1991/tripbooking/internal/service/hotels"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type HotelHandler struct {
	service hotels.HotelUseCase
}

type roomResponse struct {
	ID         int64           `json:"id"`
	RoomNumber string          `json:"room_number"`
	Capacity   int             `json:"capacity"`
	Price      decimal.Decimal `json:"price"`
	Status     string          `json:"status"`
}

type hotelResponse struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	City    string         `json:"city"`
	Address string         `json:"address"`
	Stars   int            `json:"stars"`
	Rooms   []roomResponse `json:"rooms"`
}

func NewHotelHandler(service hotels.HotelUseCase) *HotelHandler {
	return &HotelHandler{service: service}
}

func (h *HotelHandler) Register(router *gin.RouterGroup) {
	router.GET("/hotels/:hotel_id", h.get)
}

func (h *HotelHandler) get(c *gin.Context) {
	id, ok := pathID(c, "hotel_id")
	if !ok {
		return
	}

	hotel, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, hotelResponse{
		ID:      hotel.ID,
		Name:    hotel.Name,
		City:    hotel.City,
		Address: hotel.Address,
		Stars:   hotel.Stars,
		Rooms: lo.Map(hotel.Rooms, func(r domain.Room, _ int) roomResponse {
			return roomResponse{
				ID:         r.ID,
				RoomNumber: r.RoomNumber,
				Capacity:   r.Capacity,
				Price:      r.Price,
				Status:     string(r.Status),
			}
		}),
	})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:  "invalid " + name,
			Code:   codeInvalidRequest,
			Fields: map[string]string{name: "must be a positive integer"},
		})
		return 0, false
	}
	return id, true
}
