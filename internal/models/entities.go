package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending         BookingStatus = "pending"
	StatusDepositReceived BookingStatus = "deposit_received"
	StatusConfirmed       BookingStatus = "confirmed"
	StatusCompleted       BookingStatus = "completed"
	StatusCancelled       BookingStatus = "cancelled"
)

// OccupyingStatuses is the single definition of which bookings hold a slot.
// SQL filters, the partial unique index and in-memory checks all read it.
var OccupyingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusDepositReceived,
}

var allowedTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:         {StatusDepositReceived, StatusConfirmed, StatusCancelled},
	StatusDepositReceived: {StatusConfirmed, StatusCompleted, StatusCancelled},
	StatusConfirmed:       {StatusCompleted, StatusCancelled},
}

// HoldsSlot reports whether a booking in status s occupies its slot.
func (s BookingStatus) HoldsSlot() bool {
	for _, st := range OccupyingStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition may leave s.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether s -> next is an edge of the state machine.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, st := range allowedTransitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a known status.
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusDepositReceived, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// OccupyingStatusStrings returns OccupyingStatuses for driver arrays.
func OccupyingStatusStrings() []string {
	out := make([]string, len(OccupyingStatuses))
	for i, s := range OccupyingStatuses {
		out[i] = string(s)
	}
	return out
}

// AttendeeCategory names one priced party role.
type AttendeeCategory string

const (
	CategoryBride  AttendeeCategory = "bride"
	CategoryMaid   AttendeeCategory = "maid"
	CategoryMother AttendeeCategory = "mother"
	CategoryOther  AttendeeCategory = "other"
)

// Attendees are the head counts of a booking per category.
type Attendees struct {
	Brides  int `json:"num_brides"`
	Maids   int `json:"num_maids"`
	Mothers int `json:"num_mothers"`
	Others  int `json:"num_others"`
}

// Count returns the head count for category c.
func (a Attendees) Count(c AttendeeCategory) int {
	switch c {
	case CategoryBride:
		return a.Brides
	case CategoryMaid:
		return a.Maids
	case CategoryMother:
		return a.Mothers
	case CategoryOther:
		return a.Others
	}
	return 0
}

// CategoryRule is the rate card entry of a package for one category.
// Nil bounds are not checked; an invalid UnitPrice means "not priced".
type CategoryRule struct {
	Category  AttendeeCategory
	UnitPrice decimal.NullDecimal
	Min       *int
	Max       *int
}

// ServicePackage is a bookable makeup offering.
type ServicePackage struct {
	ID          int64               `json:"id" db:"id"`
	Name        string              `json:"name" db:"name"`
	BridePrice  decimal.NullDecimal `json:"bride_price" db:"bride_price"`
	MaidPrice   decimal.NullDecimal `json:"maid_price" db:"maid_price"`
	MotherPrice decimal.NullDecimal `json:"mother_price" db:"mother_price"`
	OtherPrice  decimal.NullDecimal `json:"other_price" db:"other_price"`
	MinBrides   *int                `json:"min_brides" db:"min_brides"`
	MaxBrides   *int                `json:"max_brides" db:"max_brides"`
	MinMaids    *int                `json:"min_maids" db:"min_maids"`
	MaxMaids    *int                `json:"max_maids" db:"max_maids"`
	MinMothers  *int                `json:"min_mothers" db:"min_mothers"`
	MaxMothers  *int                `json:"max_mothers" db:"max_mothers"`
	MinOthers   *int                `json:"min_others" db:"min_others"`
	MaxOthers   *int                `json:"max_others" db:"max_others"`
	IsActive    bool                `json:"is_active" db:"is_active"`
}

// Rules lists the rate card in a fixed category order.
func (p *ServicePackage) Rules() []CategoryRule {
	return []CategoryRule{
		{Category: CategoryBride, UnitPrice: p.BridePrice, Min: p.MinBrides, Max: p.MaxBrides},
		{Category: CategoryMaid, UnitPrice: p.MaidPrice, Min: p.MinMaids, Max: p.MaxMaids},
		{Category: CategoryMother, UnitPrice: p.MotherPrice, Min: p.MinMothers, Max: p.MaxMothers},
		{Category: CategoryOther, UnitPrice: p.OtherPrice, Min: p.MinOthers, Max: p.MaxOthers},
	}
}

// Location is a transport destination.
type Location struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	TransportCost decimal.Decimal `json:"transport_cost" db:"transport_cost"`
	IsFree        bool            `json:"is_free" db:"is_free"`
	IsActive      bool            `json:"is_active" db:"is_active"`
}

// CalendarBlock marks a single slot unavailable.
type CalendarBlock struct {
	ID        int64     `json:"id" db:"id"`
	Date      time.Time `json:"date" db:"block_date"`
	TimeSlot  string    `json:"time_slot" db:"time_slot"`
	Reason    *string   `json:"reason" db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SlotKey identifies a slot.
type SlotKey struct {
	Date     time.Time
	TimeSlot string
}

// GuestContact is the contact triple of a booking or order without an owner.
type GuestContact struct {
	Email *string `json:"guest_email" db:"guest_email"`
	Name  *string `json:"guest_name" db:"guest_name"`
	Phone *string `json:"guest_phone" db:"guest_phone"`
}

// Complete reports whether all three fields are present and non-empty.
func (g GuestContact) Complete() bool {
	return nonEmpty(g.Email) && nonEmpty(g.Name) && nonEmpty(g.Phone)
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

// Booking is a makeup appointment.
type Booking struct {
	ID            int64           `json:"id" db:"id"`
	Reference     string          `json:"reference" db:"reference"`
	UserID        *int64          `json:"user_id" db:"user_id"`
	Guest         GuestContact    `json:"guest"`
	Date          time.Time       `json:"booking_date" db:"booking_date"`
	TimeSlot      string          `json:"time_slot" db:"time_slot"`
	PackageID     int64           `json:"package_id" db:"package_id"`
	LocationID    int64           `json:"location_id" db:"location_id"`
	Attendees     Attendees       `json:"attendees"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	TransportCost decimal.Decimal `json:"transport_cost" db:"transport_cost"`
	Total         decimal.Decimal `json:"total" db:"total"`
	Deposit       decimal.Decimal `json:"deposit" db:"deposit"`
	DepositPaid   bool            `json:"deposit_paid" db:"deposit_paid"`
	Status        BookingStatus   `json:"status" db:"status"`
	Notes         *string         `json:"notes" db:"notes"`
	AdminNotes    string          `json:"admin_notes" db:"admin_notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
	// Version is bumped by every write; an update only applies to the version it read.
	Version       int64           `json:"-" db:"version"`
}

// Order is a product purchase. Only its ownership is handled here.
type Order struct {
	ID        int64           `json:"id" db:"id"`
	UserID    *int64          `json:"user_id" db:"user_id"`
	Guest     GuestContact    `json:"guest"`
	Total     decimal.Decimal `json:"total" db:"total"`
	Status    string          `json:"status" db:"status"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// User represents a user in the system
type User struct {
	UserID       int64      `json:"user_id" db:"user_id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name" db:"full_name"`
	Phone        *string    `json:"phone" db:"phone"`
	IsOperator   bool       `json:"is_operator" db:"is_operator"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	RegisteredAt time.Time  `json:"registered_at" db:"registered_at"`
	LastLoggedIn *time.Time `json:"last_logged_in" db:"last_logged_in"`
}

// LinkResult counts records re-parented by one reconciliation.
type LinkResult struct {
	OrdersLinked   int64 `json:"orders_linked"`
	BookingsLinked int64 `json:"bookings_linked"`
}
