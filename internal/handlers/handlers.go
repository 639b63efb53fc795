package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"beautybook/internal/cache"
	apperrors "beautybook/internal/errors"
	"beautybook/internal/logger"
	"beautybook/internal/messaging"
	"beautybook/internal/models"
	"beautybook/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services     *service.Services
	publisher    messaging.Publisher
	availability *cache.AvailabilityCache
}

// NewHandlers wires the HTTP layer. publisher and availabilityCache may be nil.
func NewHandlers(services *service.Services, publisher messaging.Publisher, availabilityCache *cache.AvailabilityCache) *Handlers {
	return &Handlers{
		services:     services,
		publisher:    publisher,
		availability: availabilityCache,
	}
}

var kindStatus = map[apperrors.Kind]int{
	apperrors.KindNotFound:           http.StatusNotFound,
	apperrors.KindInactive:           http.StatusUnprocessableEntity,
	apperrors.KindOutOfRange:         http.StatusUnprocessableEntity,
	apperrors.KindPolicyViolation:    http.StatusUnprocessableEntity,
	apperrors.KindSlotUnavailable:    http.StatusConflict,
	apperrors.KindInvalidTransition:  http.StatusConflict,
	apperrors.KindConflict:           http.StatusConflict,
	apperrors.KindMissingContactInfo: http.StatusBadRequest,
	apperrors.KindForbidden:          http.StatusForbidden,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperrors.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusBadRequest
}

// respondError renders business errors with their stable message and
// reason. Anything else is logged and reported as a 500.
func respondError(c *gin.Context, err error, action string) {
	if appErr, ok := apperrors.As(err); ok {
		c.JSON(StatusFor(appErr.Kind), models.ErrorResponse{
			Error:   string(appErr.Kind),
			Message: appErr.Message,
			Reason:  appErr.Reason,
		})
		return
	}

	if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger.WithContext(c.Request.Context()).Error("Failed to "+action, "error", err)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "Failed to " + action,
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "bad_request", Message: message})
}

// publish hands an event to the notification pipeline. Failures are logged,
// the request has already succeeded.
func (h *Handlers) publish(ctx context.Context, subject string, event interface{}) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(subject, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}

func (h *Handlers) invalidateAvailability(ctx context.Context) {
	h.availability.Invalidate(ctx)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func toResponses(bookings []models.Booking) []models.BookingResponse {
	out := make([]models.BookingResponse, len(bookings))
	for i := range bookings {
		out[i] = models.NewBookingResponse(&bookings[i])
	}
	return out
}
