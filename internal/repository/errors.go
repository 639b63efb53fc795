package repository

import (
	"errors"

	"beautybook/internal/database"

	"github.com/lib/pq"
)

var (
	// ErrSlotTaken means another active booking already holds the slot.
	ErrSlotTaken = errors.New("slot already held by an active booking")
	// ErrDuplicateReference means the booking reference is already in use.
	ErrDuplicateReference = errors.New("booking reference already exists")
	// ErrBlockExists means the slot is already blocked.
	ErrBlockExists = errors.New("calendar block already exists")
	// ErrStaleBooking means the booking changed after it was read.
	ErrStaleBooking = errors.New("booking was modified since it was read")
	// ErrEmailTaken means an account with this email exists.
	ErrEmailTaken = errors.New("email already registered")
)

const uniqueViolation = "23505"

var constraintErrors = map[string]error{
	database.ActiveSlotIndex:      ErrSlotTaken,
	database.BookingReferenceKey:  ErrDuplicateReference,
	database.CalendarBlockSlotKey: ErrBlockExists,
	database.UsersEmailKey:        ErrEmailTaken,
}

// translateError maps unique violations of known constraints to sentinels.
// Anything else is returned unchanged.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	if mapped, ok := constraintErrors[pqErr.Constraint]; ok {
		return mapped
	}
	return err
}
