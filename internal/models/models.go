package models

import (
	"fmt"
	"strings"
	"time"
)

// FlexibleBool - boolean that also accepts strings and numbers
type FlexibleBool bool

// UnmarshalJSON accepts true/false, "true"/"false", 1/0, "yes"/"no", "on"/"off"
func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	switch strings.ToLower(str) {
	case "true", "1", "yes", "on":
		*fb = true
	case "false", "0", "no", "off":
		*fb = false
	default:
		return fmt.Errorf("invalid boolean value: %s", str)
	}
	return nil
}

// Bool returns the plain bool value
func (fb FlexibleBool) Bool() bool {
	return bool(fb)
}

// CreateBookingRequest - public booking form
type CreateBookingRequest struct {
	Date       string  `json:"booking_date" binding:"required,isodate"`
	TimeSlot   string  `json:"time_slot" binding:"required,timeslot"`
	PackageID  int64   `json:"package_id" binding:"required"`
	LocationID int64   `json:"location_id" binding:"required"`
	NumBrides  int     `json:"num_brides" binding:"min=0"`
	NumMaids   int     `json:"num_maids" binding:"min=0"`
	NumMothers int     `json:"num_mothers" binding:"min=0"`
	NumOthers  int     `json:"num_others" binding:"min=0"`
	GuestEmail *string `json:"guest_email" binding:"omitempty,email"`
	GuestName  *string `json:"guest_name"`
	GuestPhone *string `json:"guest_phone"`
	Notes      *string `json:"notes"`
}

// Attendees collects the head counts of the request
func (r *CreateBookingRequest) Attendees() Attendees {
	return Attendees{Brides: r.NumBrides, Maids: r.NumMaids, Mothers: r.NumMothers, Others: r.NumOthers}
}

// UpdateBookingRequest - operator edit; nil fields are left untouched
type UpdateBookingRequest struct {
	Date       *string `json:"booking_date" binding:"omitempty,isodate"`
	TimeSlot   *string `json:"time_slot" binding:"omitempty,timeslot"`
	LocationID *int64  `json:"location_id"`
	NumBrides  *int    `json:"num_brides" binding:"omitempty,min=0"`
	NumMaids   *int    `json:"num_maids" binding:"omitempty,min=0"`
	NumMothers *int    `json:"num_mothers" binding:"omitempty,min=0"`
	NumOthers  *int    `json:"num_others" binding:"omitempty,min=0"`
	Status     *string `json:"status"`
	AdminNote  *string `json:"admin_note"`
}

// CancelBookingRequest - optional reason recorded in the booking notes
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// DepositRequest - operator toggles the deposit flag
type DepositRequest struct {
	Paid *FlexibleBool `json:"paid" binding:"required"`
	Note string        `json:"note"`
}

// BookingResponse - booking as rendered to clients
type BookingResponse struct {
	ID            int64         `json:"id"`
	Reference     string        `json:"reference"`
	Status        BookingStatus `json:"status"`
	Date          string        `json:"booking_date"`
	TimeSlot      string        `json:"time_slot"`
	PackageID     int64         `json:"package_id"`
	LocationID    int64         `json:"location_id"`
	NumBrides     int           `json:"num_brides"`
	NumMaids      int           `json:"num_maids"`
	NumMothers    int           `json:"num_mothers"`
	NumOthers     int           `json:"num_others"`
	Subtotal      string        `json:"subtotal"`
	TransportCost string        `json:"transport_cost"`
	Total         string        `json:"total"`
	Deposit       string        `json:"deposit"`
	DepositPaid   bool          `json:"deposit_paid"`
	UserID        *int64        `json:"user_id"`
	GuestEmail    *string       `json:"guest_email,omitempty"`
	GuestName     *string       `json:"guest_name,omitempty"`
	GuestPhone    *string       `json:"guest_phone,omitempty"`
	Notes         *string       `json:"notes,omitempty"`
	AdminNotes    string        `json:"admin_notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewBookingResponse renders b with money fixed to two places
func NewBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		Reference:     b.Reference,
		Status:        b.Status,
		Date:          b.Date.Format("2006-01-02"),
		TimeSlot:      b.TimeSlot,
		PackageID:     b.PackageID,
		LocationID:    b.LocationID,
		NumBrides:     b.Attendees.Brides,
		NumMaids:      b.Attendees.Maids,
		NumMothers:    b.Attendees.Mothers,
		NumOthers:     b.Attendees.Others,
		Subtotal:      b.Subtotal.StringFixed(2),
		TransportCost: b.TransportCost.StringFixed(2),
		Total:         b.Total.StringFixed(2),
		Deposit:       b.Deposit.StringFixed(2),
		DepositPaid:   b.DepositPaid,
		UserID:        b.UserID,
		GuestEmail:    b.Guest.Email,
		GuestName:     b.Guest.Name,
		GuestPhone:    b.Guest.Phone,
		Notes:         b.Notes,
		AdminNotes:    b.AdminNotes,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// SlotAvailability - one grid slot of a day
type SlotAvailability struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// DayAvailability - all slots of one date
type DayAvailability struct {
	Date      string             `json:"date"`
	Available bool               `json:"available"`
	Slots     []SlotAvailability `json:"slots"`
}

// SlotCheckResponse - answer of the single slot probe
type SlotCheckResponse struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// CreateBlockRequest - operator blocks a slot
type CreateBlockRequest struct {
	Date     string  `json:"date" binding:"required,isodate"`
	TimeSlot string  `json:"time_slot" binding:"required,timeslot"`
	Reason   *string `json:"reason"`
}

// BlockResponse - calendar block as rendered to operators
type BlockResponse struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	TimeSlot  string    `json:"time_slot"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBlockResponse renders b with a plain date
func NewBlockResponse(b *CalendarBlock) BlockResponse {
	return BlockResponse{
		ID:        b.ID,
		Date:      b.Date.Format("2006-01-02"),
		TimeSlot:  b.TimeSlot,
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt,
	}
}

// RegisterUserRequest - account registration
type RegisterUserRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName string  `json:"full_name" binding:"required"`
	Phone    *string `json:"phone"`
}

// LinkGuestRecordsRequest - email the caller asserts is theirs; defaults
// to the account email
type LinkGuestRecordsRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
}

// ErrorResponse - body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}
