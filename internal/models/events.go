package models

import "time"

// NATS Event Types
const (
	EventBookingCreated     = "booking.created"
	EventBookingUpdated     = "booking.updated"
	EventBookingCancelled   = "booking.cancelled"
	EventBookingDepositPaid = "booking.deposit_updated"
	EventGuestRecordsLinked = "guest_records.linked"
)

// BookingCreatedEvent represents a booking creation event
type BookingCreatedEvent struct {
	BookingID  int64     `json:"booking_id"`
	Reference  string    `json:"reference"`
	UserID     *int64    `json:"user_id"`
	GuestEmail *string   `json:"guest_email,omitempty"`
	Date       string    `json:"booking_date"`
	TimeSlot   string    `json:"time_slot"`
	Total      string    `json:"total"`
	Deposit    string    `json:"deposit"`
	Timestamp  time.Time `json:"timestamp"`
}

// BookingUpdatedEvent represents an operator edit
type BookingUpdatedEvent struct {
	BookingID int64         `json:"booking_id"`
	Reference string        `json:"reference"`
	Status    BookingStatus `json:"status"`
	Date      string        `json:"booking_date"`
	TimeSlot  string        `json:"time_slot"`
	Total     string        `json:"total"`
	Timestamp time.Time     `json:"timestamp"`
}

// BookingCancelledEvent represents a booking cancellation event
type BookingCancelledEvent struct {
	BookingID  int64     `json:"booking_id"`
	Reference  string    `json:"reference"`
	ByOperator bool      `json:"by_operator"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

// DepositUpdatedEvent represents a change of the deposit flag
type DepositUpdatedEvent struct {
	BookingID int64         `json:"booking_id"`
	Reference string        `json:"reference"`
	Paid      bool          `json:"paid"`
	Status    BookingStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

// GuestRecordsLinkedEvent represents a reconciliation that linked something
type GuestRecordsLinkedEvent struct {
	UserID         int64     `json:"user_id"`
	Email          string    `json:"email"`
	OrdersLinked   int64     `json:"orders_linked"`
	BookingsLinked int64     `json:"bookings_linked"`
	Timestamp      time.Time `json:"timestamp"`
}
