package repository

import (
	"beautybook/internal/database"
)

type Repositories struct {
	Catalog      *CatalogRepository
	Blocks       *BlockRepository
	Bookings     *BookingRepository
	GuestRecords *GuestRecordRepository
	Users        *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Catalog:      NewCatalogRepository(db),
		Blocks:       NewBlockRepository(db),
		Bookings:     NewBookingRepository(db),
		GuestRecords: NewGuestRecordRepository(db),
		Users:        NewUserRepository(db),
	}
}
