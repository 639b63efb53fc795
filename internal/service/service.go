package service

import (
	"context"
	"time"

	"beautybook/internal/calendar"
	"beautybook/internal/config"
	"beautybook/internal/models"
	"beautybook/internal/repository"
)

// CatalogStore looks up packages and locations. Missing rows are (nil, nil).
type CatalogStore interface {
	GetPackage(ctx context.Context, id int64) (*models.ServicePackage, error)
	GetLocation(ctx context.Context, id int64) (*models.Location, error)
}

// BlockStore reads and manages calendar blocks.
type BlockStore interface {
	Get(ctx context.Context, date time.Time, timeSlot string) (*models.CalendarBlock, error)
	ListInRange(ctx context.Context, start, end time.Time) ([]models.CalendarBlock, error)
	Create(ctx context.Context, block *models.CalendarBlock) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// BookingStore persists bookings. Create and Update must return
// repository.ErrSlotTaken when the active-slot constraint rejects the write.
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	ListByUser(ctx context.Context, userID int64) ([]models.Booking, error)
	IsSlotOccupied(ctx context.Context, date time.Time, timeSlot string, excludeID int64) (bool, error)
	ListOccupiedSlots(ctx context.Context, start, end time.Time) ([]models.SlotKey, error)
	CountReferences(ctx context.Context, prefix string) (int, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)
}

// GuestRecordStore re-parents guest orders and bookings.
type GuestRecordStore interface {
	LinkByEmail(ctx context.Context, userID int64, email string) (models.LinkResult, error)
}

// UserStore persists accounts.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, id int64) error
}

// Stores groups the persistence dependencies of the services.
type Stores struct {
	Catalog      CatalogStore
	Blocks       BlockStore
	Bookings     BookingStore
	GuestRecords GuestRecordStore
	Users        UserStore
}

func StoresFrom(repos *repository.Repositories) Stores {
	return Stores{
		Catalog:      repos.Catalog,
		Blocks:       repos.Blocks,
		Bookings:     repos.Bookings,
		GuestRecords: repos.GuestRecords,
		Users:        repos.Users,
	}
}

// Services is the wiring handed to the HTTP layer.
type Services struct {
	Availability   *AvailabilityService
	Bookings       *BookingService
	Blocks         *BlockService
	Reconciliation *ReconciliationService
	Users          *UserService
	Clock          calendar.Clock
}

func NewServices(stores Stores, clock calendar.Clock, policy config.BookingPolicy) *Services {
	availabilityService := NewAvailabilityService(stores.Blocks, stores.Bookings, clock, policy.HorizonDays)
	references := NewReferenceGenerator(stores.Bookings, clock)
	bookingService := NewBookingService(stores.Catalog, stores.Bookings, availabilityService, references, clock, policy)
	reconciliationService := NewReconciliationService(stores.GuestRecords)

	return &Services{
		Availability:   availabilityService,
		Bookings:       bookingService,
		Blocks:         NewBlockService(stores.Blocks),
		Reconciliation: reconciliationService,
		Users:          NewUserService(stores.Users, reconciliationService),
		Clock:          clock,
	}
}
