package service

import (
	"testing"
	"time"

	"beautybook/internal/calendar"
	"beautybook/internal/config"
	"beautybook/internal/models"
	"beautybook/internal/service/servicetest"

	"github.com/shopspring/decimal"
)

// 2025-06-01 10:00, naive.
var now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func date(s string) time.Time {
	d, err := calendar.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func intp(v int) *int              { return &v }
func int64p(v int64) *int64        { return &v }
func strp(s string) *string        { return &s }
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func price(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

type fixture struct {
	store    *servicetest.Store
	services *Services
	pkgID    int64
	locID    int64
}

func newFixture(t *testing.T) *fixture {
	return newFixtureAt(t, now)
}

func newFixtureAt(t *testing.T, at time.Time) *fixture {
	t.Helper()

	store := servicetest.NewStore()
	pkgID := store.AddPackage(models.ServicePackage{
		Name:       "Bridal Full",
		BridePrice: price("15000"),
		MaidPrice:  price("5000"),
		MaxBrides:  intp(1),
		IsActive:   true,
	})
	locID := store.AddLocation(models.Location{
		Name:          "City Centre",
		TransportCost: dec("800"),
		IsActive:      true,
	})

	services := NewServices(Stores{
		Catalog:      store.Catalog(),
		Blocks:       store.Blocks(),
		Bookings:     store.Bookings(),
		GuestRecords: store.GuestRecords(),
		Users:        store.Users(),
	}, calendar.FixedClock{T: at}, config.BookingPolicy{
		HorizonDays:       90,
		CancelWindow:      24 * time.Hour,
		MaxReferenceTries: 5,
	})

	return &fixture{store: store, services: services, pkgID: pkgID, locID: locID}
}

func (f *fixture) guestRequest(day, slot string) *models.CreateBookingRequest {
	return &models.CreateBookingRequest{
		Date:       day,
		TimeSlot:   slot,
		PackageID:  f.pkgID,
		LocationID: f.locID,
		NumBrides:  1,
		GuestEmail: strp("guest@example.com"),
		GuestName:  strp("Guest Person"),
		GuestPhone: strp("+10000000000"),
	}
}

// addBooking stores an existing booking on the slot.
func (f *fixture) addBooking(day, slot string, status models.BookingStatus, owner *int64) int64 {
	return f.store.AddBooking(models.Booking{
		Reference:  "BK20250101" + slot[:2] + "00",
		UserID:     owner,
		Date:       date(day),
		TimeSlot:   slot,
		PackageID:  f.pkgID,
		LocationID: f.locID,
		Attendees:  models.Attendees{Brides: 1},
		Subtotal:   dec("15000"),
		Total:      dec("15800"),
		Deposit:    dec("7900"),
		Status:     status,
	})
}
