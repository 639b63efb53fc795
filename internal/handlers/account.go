package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"beautybook/internal/middleware"
	"beautybook/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterUser - POST /api/users
// Регистрация; гостевые записи привязываются при первом входе
func (h *Handlers) RegisterUser(c *gin.Context) {
	var req models.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.services.Users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "register user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// LinkGuestRecords - POST /api/account/link-guest-records
// Привязать гостевые заказы и бронирования к аккаунту
func (h *Handlers) LinkGuestRecords(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.LinkGuestRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}
	if req.Email == "" {
		req.Email = c.GetString(middleware.KeyUserEmail)
	}

	result, err := h.services.Reconciliation.LinkGuestRecords(ctx, userID, req.Email)
	if err != nil {
		respondError(c, err, "link guest records")
		return
	}

	if result.OrdersLinked > 0 || result.BookingsLinked > 0 {
		h.publish(ctx, models.EventGuestRecordsLinked, models.GuestRecordsLinkedEvent{
			UserID:         userID,
			Email:          req.Email,
			OrdersLinked:   result.OrdersLinked,
			BookingsLinked: result.BookingsLinked,
			Timestamp:      time.Now(),
		})
	}

	c.JSON(http.StatusOK, result)
}
