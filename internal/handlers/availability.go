package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"beautybook/internal/calendar"
	"beautybook/internal/models"

	"github.com/gin-gonic/gin"
)

// GetAvailability - GET /api/availability?start=YYYY-MM-DD&end=YYYY-MM-DD|days=N
// Свободные слоты по дням; без start - с сегодняшнего дня
func (h *Handlers) GetAvailability(c *gin.Context) {
	ctx := c.Request.Context()
	today := calendar.Today(h.services.Clock)

	start, end, ok := parseRange(c, today)
	if !ok {
		return
	}

	data, cacheKey, hit := h.availability.GetRange(ctx, today, start, end)
	if hit {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	days, err := h.services.Availability.Availability(ctx, start, end)
	if err != nil {
		respondError(c, err, "get availability")
		return
	}

	data, err = json.Marshal(days)
	if err != nil {
		respondError(c, err, "get availability")
		return
	}

	h.availability.SetRange(ctx, cacheKey, data)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func parseRange(c *gin.Context, today time.Time) (time.Time, time.Time, bool) {
	start := today
	if raw := c.Query("start"); raw != "" {
		d, err := calendar.ParseDate(raw)
		if err != nil {
			badRequest(c, "start must be a date in YYYY-MM-DD format")
			return time.Time{}, time.Time{}, false
		}
		start = d
	}

	if raw := c.Query("end"); raw != "" {
		end, err := calendar.ParseDate(raw)
		if err != nil {
			badRequest(c, "end must be a date in YYYY-MM-DD format")
			return time.Time{}, time.Time{}, false
		}
		if end.Before(start) {
			badRequest(c, "end must not be before start")
			return time.Time{}, time.Time{}, false
		}
		return start, end, true
	}

	days := calendar.DefaultRangeDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > calendar.MaxRangeDays {
			badRequest(c, "days must be between 1 and 30")
			return time.Time{}, time.Time{}, false
		}
		days = n
	}

	return start, calendar.EndForDays(start, days), true
}

// CheckSlot - GET /api/availability/slot?date=YYYY-MM-DD&time=HH:MM
// Проверить один слот
func (h *Handlers) CheckSlot(c *gin.Context) {
	date, err := calendar.ParseDate(c.Query("date"))
	if err != nil {
		badRequest(c, "date must be a date in YYYY-MM-DD format")
		return
	}

	slot := c.Query("time")
	if !calendar.IsValidSlot(slot) {
		badRequest(c, "time must be one of the daily slots 08:00-17:00")
		return
	}

	free, reason, err := h.services.Availability.IsSlotFree(c.Request.Context(), date, slot)
	if err != nil {
		respondError(c, err, "check slot")
		return
	}

	c.JSON(http.StatusOK, models.SlotCheckResponse{
		Date:      date.Format(calendar.DateLayout),
		Time:      slot,
		Available: free,
		Reason:    reason,
	})
}
