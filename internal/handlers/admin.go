package handlers

import (
	"net/http"
	"time"

	"beautybook/internal/calendar"
	"beautybook/internal/models"
	"beautybook/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateBooking - PATCH /api/admin/bookings/:id
// Изменить бронирование (оператор)
func (h *Handlers) UpdateBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	booking, err := h.services.Bookings.UpdateBooking(ctx, id, &req)
	if err != nil {
		respondError(c, err, "update booking")
		return
	}

	h.invalidateAvailability(ctx)
	h.publish(ctx, models.EventBookingUpdated, models.BookingUpdatedEvent{
		BookingID: booking.ID,
		Reference: booking.Reference,
		Status:    booking.Status,
		Date:      booking.Date.Format(calendar.DateLayout),
		TimeSlot:  booking.TimeSlot,
		Total:     booking.Total.StringFixed(2),
		Timestamp: time.Now(),
	})

	c.JSON(http.StatusOK, models.NewBookingResponse(booking))
}

// AdminCancelBooking - PATCH /api/admin/bookings/:id/cancel
// Отмена оператором: без проверки владельца и 24-часового окна
func (h *Handlers) AdminCancelBooking(c *gin.Context) {
	h.cancel(c, service.Actor{Operator: true})
}

// MarkDeposit - PATCH /api/admin/bookings/:id/deposit
// Отметить получение депозита
func (h *Handlers) MarkDeposit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	booking, err := h.services.Bookings.MarkDepositPaid(ctx, id, req.Paid.Bool(), req.Note)
	if err != nil {
		respondError(c, err, "update deposit")
		return
	}

	h.invalidateAvailability(ctx)
	h.publish(ctx, models.EventBookingDepositPaid, models.DepositUpdatedEvent{
		BookingID: booking.ID,
		Reference: booking.Reference,
		Paid:      booking.DepositPaid,
		Status:    booking.Status,
		Timestamp: time.Now(),
	})

	c.JSON(http.StatusOK, models.NewBookingResponse(booking))
}

// ListBlocks - GET /api/admin/blocks?start=&end=
func (h *Handlers) ListBlocks(c *gin.Context) {
	today := calendar.Today(h.services.Clock)
	start, end, ok := parseRange(c, today)
	if !ok {
		return
	}

	blocks, err := h.services.Blocks.List(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err, "list calendar blocks")
		return
	}

	out := make([]models.BlockResponse, len(blocks))
	for i := range blocks {
		out[i] = models.NewBlockResponse(&blocks[i])
	}
	c.JSON(http.StatusOK, out)
}

// CreateBlock - POST /api/admin/blocks
// Закрыть слот
func (h *Handlers) CreateBlock(c *gin.Context) {
	var req models.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	block, err := h.services.Blocks.Create(ctx, &req)
	if err != nil {
		respondError(c, err, "create calendar block")
		return
	}

	h.invalidateAvailability(ctx)
	c.JSON(http.StatusCreated, models.NewBlockResponse(block))
}

// DeleteBlock - DELETE /api/admin/blocks/:id
// Открыть слот
func (h *Handlers) DeleteBlock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.services.Blocks.Delete(ctx, id); err != nil {
		respondError(c, err, "delete calendar block")
		return
	}

	h.invalidateAvailability(ctx)
	c.Status(http.StatusNoContent)
}
