package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
	tokens  *auth.TokenManager
}

type createBookingRequest struct {
	FlightID   int64  `json:"flightId"`
	SeatNumber string `json:"seatNumber"`
}

func NewBookingHandler(service booking.BookingUseCase, tokens *auth.TokenManager) *BookingHandler {
	return &BookingHandler{service: service, tokens: tokens}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/flight/:flightId/stats", h.stats)

	authed := router.Group("", Authenticated(h.tokens))
	authed.POST("", h.create)
	authed.GET("", h.list)
	authed.GET("/:id", h.get)
	authed.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	detail, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UserID:     currentUser(c).UserID,
		FlightID:   req.FlightID,
		SeatNumber: req.SeatNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, okBody("Booking created successfully", detail))
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListUserBookings(c.Request.Context(), currentUser(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listBody("Bookings retrieved successfully", bookings, len(bookings)))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorBody("invalid booking id"))
		return
	}
	detail, err := h.service.GetBooking(c.Request.Context(), id, currentUser(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, okBody("Booking retrieved successfully", detail))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorBody("invalid booking id"))
		return
	}
	if err := h.service.CancelBooking(c.Request.Context(), id, currentUser(c).UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, okBody("Booking cancelled successfully", nil))
}

func (h *BookingHandler) stats(c *gin.Context) {
	flightID, err := strconv.ParseInt(c.Param("flightId"), 10, 64)
	if err != nil || flightID <= 0 {
		c.JSON(http.StatusBadRequest, errorBody("invalid flight id"))
		return
	}
	stats, err := h.service.FlightStats(c.Request.Context(), flightID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, okBody("Booking statistics retrieved", stats))
}
