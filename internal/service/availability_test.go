package service

import (
	"context"
	"testing"

	"beautybook/internal/calendar"
	"beautybook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSlotFree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.AddBlock(date("2025-06-03"), "09:00", strp("Staff training"))
	f.store.AddBlock(date("2025-06-03"), "10:00", nil)
	f.addBooking("2025-06-03", "11:00", models.StatusPending, nil)
	f.addBooking("2025-06-03", "12:00", models.StatusCancelled, nil)
	f.addBooking("2025-06-03", "13:00", models.StatusCompleted, nil)
	f.addBooking("2025-06-03", "14:00", models.StatusDepositReceived, nil)

	tests := []struct {
		name   string
		day    string
		slot   string
		free   bool
		reason string
	}{
		{"open slot", "2025-06-03", "08:00", true, ""},
		{"today is not past", "2025-06-01", "08:00", true, ""},
		{"past date", "2025-05-31", "08:00", false, "past date"},
		{"block with reason", "2025-06-03", "09:00", false, "Staff training"},
		{"block without reason", "2025-06-03", "10:00", false, "unavailable"},
		{"pending booking", "2025-06-03", "11:00", false, "booked"},
		{"cancelled booking frees slot", "2025-06-03", "12:00", true, ""},
		{"completed booking frees slot", "2025-06-03", "13:00", true, ""},
		{"deposit received booking", "2025-06-03", "14:00", false, "booked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			free, reason, err := f.services.Availability.IsSlotFree(ctx, date(tt.day), tt.slot)
			require.NoError(t, err)
			assert.Equal(t, tt.free, free)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestIsSlotFree_PastDateWinsOverEverything(t *testing.T) {
	f := newFixture(t)

	f.store.AddBlock(date("2025-05-20"), "09:00", strp("Holiday"))
	f.addBooking("2025-05-20", "09:00", models.StatusConfirmed, nil)

	free, reason, err := f.services.Availability.IsSlotFree(context.Background(), date("2025-05-20"), "09:00")
	require.NoError(t, err)
	assert.False(t, free)
	assert.Equal(t, "past date", reason)
}

func TestIsSlotFree_BlockWinsOverBooking(t *testing.T) {
	f := newFixture(t)

	f.store.AddBlock(date("2025-06-05"), "15:00", strp("Closed"))
	f.addBooking("2025-06-05", "15:00", models.StatusConfirmed, nil)

	free, reason, err := f.services.Availability.IsSlotFree(context.Background(), date("2025-06-05"), "15:00")
	require.NoError(t, err)
	assert.False(t, free)
	assert.Equal(t, "Closed", reason)
}

func TestAvailability_Range(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, slot := range calendar.DailySlots() {
		f.store.AddBlock(date("2025-06-02"), slot, strp("Day off"))
	}
	f.addBooking("2025-06-03", "08:00", models.StatusConfirmed, nil)

	days, err := f.services.Availability.Availability(ctx, date("2025-05-31"), date("2025-06-03"))
	require.NoError(t, err)
	require.Len(t, days, 4)

	assert.Equal(t, "2025-05-31", days[0].Date)
	assert.False(t, days[0].Available)
	assert.Equal(t, "past date", days[0].Slots[0].Reason)

	assert.Equal(t, "2025-06-01", days[1].Date)
	assert.True(t, days[1].Available)
	assert.Len(t, days[1].Slots, 10)

	assert.False(t, days[2].Available)
	for _, slot := range days[2].Slots {
		assert.Equal(t, "Day off", slot.Reason)
	}

	assert.True(t, days[3].Available)
	assert.Equal(t, models.SlotAvailability{Time: "08:00", Available: false, Reason: "booked"}, days[3].Slots[0])
	assert.Equal(t, models.SlotAvailability{Time: "09:00", Available: true}, days[3].Slots[1])
}

func TestAvailability_MatchesIsSlotFree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.AddBlock(date("2025-06-04"), "16:00", nil)
	f.addBooking("2025-06-04", "10:00", models.StatusPending, nil)
	f.addBooking("2025-06-04", "11:00", models.StatusCancelled, nil)

	days, err := f.services.Availability.Availability(ctx, date("2025-05-30"), date("2025-06-05"))
	require.NoError(t, err)

	for _, day := range days {
		for _, slot := range day.Slots {
			free, reason, err := f.services.Availability.IsSlotFree(ctx, date(day.Date), slot.Time)
			require.NoError(t, err)
			assert.Equal(t, free, slot.Available, "%s %s", day.Date, slot.Time)
			assert.Equal(t, reason, slot.Reason, "%s %s", day.Date, slot.Time)
		}
	}
}

func TestAvailability_ClampsToHorizon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	days, err := f.services.Availability.Availability(ctx, date("2025-06-01"), date("2026-01-01"))
	require.NoError(t, err)
	require.Len(t, days, 91)
	assert.Equal(t, "2025-08-30", days[len(days)-1].Date)

	days, err = f.services.Availability.Availability(ctx, date("2025-12-01"), date("2025-12-07"))
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestAvailability_PropagatesStoreErrors(t *testing.T) {
	f := newFixture(t)
	f.store.FailWith(assert.AnError)

	_, err := f.services.Availability.Availability(context.Background(), date("2025-06-01"), date("2025-06-02"))
	assert.ErrorIs(t, err, assert.AnError)

	_, _, err = f.services.Availability.IsSlotFree(context.Background(), date("2025-06-02"), "08:00")
	assert.ErrorIs(t, err, assert.AnError)
}
