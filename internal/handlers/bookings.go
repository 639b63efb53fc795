package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"beautybook/internal/calendar"
	"beautybook/internal/middleware"
	"beautybook/internal/models"
	"beautybook/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateBooking - POST /api/bookings
// Создать бронирование; гостям нужны email, имя и телефон
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	var ownerID *int64
	if id, ok := middleware.UserIDFromContext(ctx); ok {
		ownerID = &id
	}

	booking, err := h.services.Bookings.CreateBooking(ctx, &req, ownerID)
	if err != nil {
		respondError(c, err, "create booking")
		return
	}

	h.invalidateAvailability(ctx)
	h.publish(ctx, models.EventBookingCreated, models.BookingCreatedEvent{
		BookingID:  booking.ID,
		Reference:  booking.Reference,
		UserID:     booking.UserID,
		GuestEmail: booking.Guest.Email,
		Date:       booking.Date.Format(calendar.DateLayout),
		TimeSlot:   booking.TimeSlot,
		Total:      booking.Total.StringFixed(2),
		Deposit:    booking.Deposit.StringFixed(2),
		Timestamp:  time.Now(),
	})

	c.JSON(http.StatusCreated, models.NewBookingResponse(booking))
}

// ListBookings - GET /api/bookings
// Получить список бронирований текущего пользователя
func (h *Handlers) ListBookings(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.services.Bookings.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "list bookings")
		return
	}

	c.JSON(http.StatusOK, toResponses(bookings))
}

// CancelBooking - PATCH /api/bookings/:id/cancel
// Отменить свое бронирование (не позже чем за 24 часа)
func (h *Handlers) CancelBooking(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	h.cancel(c, service.Actor{UserID: userID})
}

func (h *Handlers) cancel(c *gin.Context, actor service.Actor) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	booking, err := h.services.Bookings.CancelBooking(ctx, id, actor, req.Reason)
	if err != nil {
		respondError(c, err, "cancel booking")
		return
	}

	h.invalidateAvailability(ctx)
	h.publish(ctx, models.EventBookingCancelled, models.BookingCancelledEvent{
		BookingID:  booking.ID,
		Reference:  booking.Reference,
		ByOperator: actor.Operator,
		Reason:     req.Reason,
		Timestamp:  time.Now(),
	})

	c.JSON(http.StatusOK, models.NewBookingResponse(booking))
}
