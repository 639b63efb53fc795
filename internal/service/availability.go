package service

import (
	"context"
	"fmt"
	"time"

	"beautybook/internal/calendar"
	apperrors "beautybook/internal/errors"
	"beautybook/internal/models"
)

// AvailabilityService answers which slots can still be booked. It only
// reads; occupancy itself is enforced by the bookings store.
type AvailabilityService struct {
	blocks      BlockStore
	bookings    BookingStore
	clock       calendar.Clock
	horizonDays int
}

// NewAvailabilityService uses calendar.HorizonDays when horizonDays is not positive.
func NewAvailabilityService(blocks BlockStore, bookings BookingStore, clock calendar.Clock, horizonDays int) *AvailabilityService {
	if horizonDays <= 0 {
		horizonDays = calendar.HorizonDays
	}
	return &AvailabilityService{
		blocks:      blocks,
		bookings:    bookings,
		clock:       clock,
		horizonDays: horizonDays,
	}
}

// evaluate is the single slot rule shared by point and range queries.
// Past dates win over blocks, blocks win over bookings.
func evaluate(date, today time.Time, block *models.CalendarBlock, occupied bool) (bool, string) {
	if calendar.DateOf(date).Before(today) {
		return false, apperrors.ReasonPastDate
	}
	if block != nil {
		if block.Reason != nil && *block.Reason != "" {
			return false, *block.Reason
		}
		return false, apperrors.ReasonUnavailable
	}
	if occupied {
		return false, apperrors.ReasonBooked
	}
	return true, ""
}

// IsSlotFree reports whether (date, timeSlot) can be booked, and why not.
func (s *AvailabilityService) IsSlotFree(ctx context.Context, date time.Time, timeSlot string) (bool, string, error) {
	return s.isSlotFree(ctx, date, timeSlot, 0)
}

// isSlotFree ignores the booking excludeID so a booking never blocks itself.
func (s *AvailabilityService) isSlotFree(ctx context.Context, date time.Time, timeSlot string, excludeID int64) (bool, string, error) {
	today := calendar.Today(s.clock)
	if calendar.DateOf(date).Before(today) {
		return false, apperrors.ReasonPastDate, nil
	}

	block, err := s.blocks.Get(ctx, date, timeSlot)
	if err != nil {
		return false, "", fmt.Errorf("failed to get calendar block: %w", err)
	}
	if block != nil {
		free, reason := evaluate(date, today, block, false)
		return free, reason, nil
	}

	occupied, err := s.bookings.IsSlotOccupied(ctx, date, timeSlot, excludeID)
	if err != nil {
		return false, "", fmt.Errorf("failed to check slot occupancy: %w", err)
	}

	free, reason := evaluate(date, today, nil, occupied)
	return free, reason, nil
}

// Availability evaluates every grid slot of every date in [start, end].
// end is clamped to today plus the booking horizon; a range entirely past
// the horizon is empty.
func (s *AvailabilityService) Availability(ctx context.Context, start, end time.Time) ([]models.DayAvailability, error) {
	today := calendar.Today(s.clock)
	start = calendar.DateOf(start)
	end = calendar.ClampToHorizon(end, today, s.horizonDays)

	days := []models.DayAvailability{}
	if end.Before(start) {
		return days, nil
	}

	blocks, err := s.blocks.ListInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar blocks: %w", err)
	}
	blocked := make(map[models.SlotKey]*models.CalendarBlock, len(blocks))
	for i := range blocks {
		blocked[models.SlotKey{Date: blocks[i].Date, TimeSlot: blocks[i].TimeSlot}] = &blocks[i]
	}

	occupiedSlots, err := s.bookings.ListOccupiedSlots(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list occupied slots: %w", err)
	}
	occupied := make(map[models.SlotKey]bool, len(occupiedSlots))
	for _, key := range occupiedSlots {
		occupied[key] = true
	}

	grid := calendar.DailySlots()
	for _, date := range calendar.DateRange(start, end) {
		day := models.DayAvailability{
			Date:  date.Format(calendar.DateLayout),
			Slots: make([]models.SlotAvailability, 0, len(grid)),
		}
		for _, slot := range grid {
			key := models.SlotKey{Date: date, TimeSlot: slot}
			free, reason := evaluate(date, today, blocked[key], occupied[key])
			day.Slots = append(day.Slots, models.SlotAvailability{Time: slot, Available: free, Reason: reason})
			day.Available = day.Available || free
		}
		days = append(days, day)
	}

	return days, nil
}
